package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// RankingService is the leaderboard read path consumed by the HTTP layer.
type RankingService interface {
	NovelPage(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error)
	UserPage(ctx context.Context, page, size int) (models.Page[models.UserProfile], error)
	AuthorPage(ctx context.Context, page, size int, sortType string) (models.Page[models.Author], error)
	BestNovelRank(ctx context.Context, novelID int) (*models.NovelRank, error)
}

// RebuildRunner exposes the rebuild job for the operator trigger.
type RebuildRunner interface {
	RebuildAll(ctx context.Context) error
	Running() bool
}

// AnalyticsService is the admin analytics read path.
type AnalyticsService interface {
	DailyActiveUsers(ctx context.Context, date time.Time) (*models.DailyActiveUsers, error)
	ReadingActivity(ctx context.Context, start, end time.Time, period string) (*models.ReadingActivity, error)
	UserTrends(ctx context.Context, start, end time.Time, period string) (*models.UserTrends, error)
	Summary(ctx context.Context, start, end time.Time, period string) (*models.AnalyticsSummary, error)
	TopContent(ctx context.Context, limit int) (*models.TopContent, error)
	PlatformStatistics(ctx context.Context) (*models.PlatformStatistics, error)
}

type Config struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
	Logger   *zap.Logger
	// Services
	Ranking   RankingService
	Rebuilder RebuildRunner
	Analytics AnalyticsService
}

type Handler struct {
	redis     *redis.Client
	pg        *pgxpool.Pool
	logger    *zap.SugaredLogger
	validator *validator.Validate
	ranking   RankingService
	rebuilder RebuildRunner
	analytics AnalyticsService
}

func New(cfg Config) *Handler {
	return &Handler{
		redis:     cfg.Redis,
		pg:        cfg.Postgres,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		ranking:   cfg.Ranking,
		rebuilder: cfg.Rebuilder,
		analytics: cfg.Analytics,
	}
}
