package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// MockRankingService captures calls and returns canned pages
type MockRankingService struct {
	NovelPageFunc     func(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error)
	UserPageFunc      func(ctx context.Context, page, size int) (models.Page[models.UserProfile], error)
	AuthorPageFunc    func(ctx context.Context, page, size int, sortType string) (models.Page[models.Author], error)
	BestNovelRankFunc func(ctx context.Context, novelID int) (*models.NovelRank, error)
}

func (m *MockRankingService) NovelPage(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error) {
	if m.NovelPageFunc != nil {
		return m.NovelPageFunc(ctx, page, size, sortType, categoryID)
	}
	return models.PageOf[models.Novel](nil, 0, page, size), nil
}

func (m *MockRankingService) UserPage(ctx context.Context, page, size int) (models.Page[models.UserProfile], error) {
	if m.UserPageFunc != nil {
		return m.UserPageFunc(ctx, page, size)
	}
	return models.PageOf[models.UserProfile](nil, 0, page, size), nil
}

func (m *MockRankingService) AuthorPage(ctx context.Context, page, size int, sortType string) (models.Page[models.Author], error) {
	if m.AuthorPageFunc != nil {
		return m.AuthorPageFunc(ctx, page, size, sortType)
	}
	return models.PageOf[models.Author](nil, 0, page, size), nil
}

func (m *MockRankingService) BestNovelRank(ctx context.Context, novelID int) (*models.NovelRank, error) {
	if m.BestNovelRankFunc != nil {
		return m.BestNovelRankFunc(ctx, novelID)
	}
	return &models.NovelRank{NovelID: novelID}, nil
}

// MockRebuildRunner fakes the rebuild job
type MockRebuildRunner struct {
	RunningValue   bool
	RebuildAllFunc func(ctx context.Context) error
	Started        chan struct{}
}

func (m *MockRebuildRunner) Running() bool { return m.RunningValue }

func (m *MockRebuildRunner) RebuildAll(ctx context.Context) error {
	if m.Started != nil {
		close(m.Started)
	}
	if m.RebuildAllFunc != nil {
		return m.RebuildAllFunc(ctx)
	}
	return nil
}

// MockAnalyticsService returns canned analytics results
type MockAnalyticsService struct {
	DailyActiveUsersFunc   func(ctx context.Context, date time.Time) (*models.DailyActiveUsers, error)
	ReadingActivityFunc    func(ctx context.Context, start, end time.Time, period string) (*models.ReadingActivity, error)
	UserTrendsFunc         func(ctx context.Context, start, end time.Time, period string) (*models.UserTrends, error)
	SummaryFunc            func(ctx context.Context, start, end time.Time, period string) (*models.AnalyticsSummary, error)
	TopContentFunc         func(ctx context.Context, limit int) (*models.TopContent, error)
	PlatformStatisticsFunc func(ctx context.Context) (*models.PlatformStatistics, error)
}

func (m *MockAnalyticsService) DailyActiveUsers(ctx context.Context, date time.Time) (*models.DailyActiveUsers, error) {
	if m.DailyActiveUsersFunc != nil {
		return m.DailyActiveUsersFunc(ctx, date)
	}
	return &models.DailyActiveUsers{Date: date}, nil
}

func (m *MockAnalyticsService) ReadingActivity(ctx context.Context, start, end time.Time, period string) (*models.ReadingActivity, error) {
	if m.ReadingActivityFunc != nil {
		return m.ReadingActivityFunc(ctx, start, end, period)
	}
	return &models.ReadingActivity{}, nil
}

func (m *MockAnalyticsService) UserTrends(ctx context.Context, start, end time.Time, period string) (*models.UserTrends, error) {
	if m.UserTrendsFunc != nil {
		return m.UserTrendsFunc(ctx, start, end, period)
	}
	return &models.UserTrends{}, nil
}

func (m *MockAnalyticsService) Summary(ctx context.Context, start, end time.Time, period string) (*models.AnalyticsSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, start, end, period)
	}
	return &models.AnalyticsSummary{}, nil
}

func (m *MockAnalyticsService) TopContent(ctx context.Context, limit int) (*models.TopContent, error) {
	if m.TopContentFunc != nil {
		return m.TopContentFunc(ctx, limit)
	}
	return &models.TopContent{}, nil
}

func (m *MockAnalyticsService) PlatformStatistics(ctx context.Context) (*models.PlatformStatistics, error) {
	if m.PlatformStatisticsFunc != nil {
		return m.PlatformStatisticsFunc(ctx)
	}
	return &models.PlatformStatistics{}, nil
}

func newTestHandler(rk RankingService, rb RebuildRunner, an AnalyticsService) *Handler {
	if rk == nil {
		rk = &MockRankingService{}
	}
	if rb == nil {
		rb = &MockRebuildRunner{}
	}
	if an == nil {
		an = &MockAnalyticsService{}
	}
	return &Handler{
		logger:    zap.NewNop().Sugar(),
		validator: validator.New(),
		ranking:   rk,
		rebuilder: rb,
		analytics: an,
	}
}
