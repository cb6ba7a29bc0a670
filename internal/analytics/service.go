// Package analytics serves the admin dashboard aggregations over the
// local reading-history table, enriched with totals from the content and
// engagement services.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// PgPool defines the interface for the PostgreSQL connection pool.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ContentGateway is the catalog slice the analytics read-path needs.
type ContentGateway interface {
	GetNovelsBatch(ctx context.Context, ids []int) ([]models.Novel, error)
	GetNovelCount(ctx context.Context) (int64, error)
}

// EngagementGateway supplies platform-wide comment/review totals.
type EngagementGateway interface {
	GetCommentStatistics(ctx context.Context) (*models.EngagementStatistics, error)
}

// Service answers the admin analytics queries. All history access is
// read-only aggregation; history writes belong to the history endpoints'
// own service.
type Service struct {
	pg         PgPool
	content    ContentGateway
	engagement EngagementGateway
	logger     *zap.SugaredLogger
}

// NewService wires the analytics read-path. engagement may be nil; the
// platform snapshot then reports zero comment/review totals.
func NewService(pg PgPool, content ContentGateway, engagement EngagementGateway, logger *zap.Logger) *Service {
	return &Service{pg: pg, content: content, engagement: engagement, logger: logger.Sugar()}
}

// DailyActiveUsers reports DAU for the given calendar day (UTC) plus
// rolling 7/30 day windows ending on it, with an hourly breakdown.
func (s *Service) DailyActiveUsers(ctx context.Context, date time.Time) (*models.DailyActiveUsers, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	dau, err := s.countActiveUsers(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	wau, err := s.countActiveUsers(ctx, dayEnd.AddDate(0, 0, -7), dayEnd)
	if err != nil {
		return nil, err
	}
	mau, err := s.countActiveUsers(ctx, dayEnd.AddDate(0, 0, -30), dayEnd)
	if err != nil {
		return nil, err
	}

	rows, err := s.pg.Query(ctx, `
		SELECT extract(hour FROM update_time)::int AS hour,
		       count(DISTINCT user_id) AS active_users,
		       count(*) AS sessions
		FROM history
		WHERE update_time >= $1 AND update_time < $2
		GROUP BY 1
		ORDER BY 1
	`, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query hourly activity: %w", err)
	}
	defer rows.Close()

	var hourly []models.HourlyActivity
	for rows.Next() {
		var h models.HourlyActivity
		if err := rows.Scan(&h.Hour, &h.ActiveUsers, &h.ReadingSessions); err != nil {
			return nil, fmt.Errorf("scan hourly activity: %w", err)
		}
		hourly = append(hourly, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read hourly activity: %w", err)
	}

	return &models.DailyActiveUsers{
		Date:            dayStart,
		DAU:             dau,
		WAU:             wau,
		MAU:             mau,
		HourlyBreakdown: hourly,
	}, nil
}

// ReadingActivity returns a bucketed reading-session trend for the
// window. period is daily, weekly or monthly.
func (s *Service) ReadingActivity(ctx context.Context, start, end time.Time, period string) (*models.ReadingActivity, error) {
	trunc, err := periodTrunc(period)
	if err != nil {
		return nil, err
	}

	rows, err := s.pg.Query(ctx, `
		SELECT date_trunc($1, update_time) AS bucket,
		       count(*) AS sessions,
		       count(DISTINCT user_id) AS active_users
		FROM history
		WHERE update_time >= $2 AND update_time < $3
		GROUP BY bucket
		ORDER BY bucket
	`, trunc, start, end)
	if err != nil {
		return nil, fmt.Errorf("query reading activity: %w", err)
	}
	defer rows.Close()

	var points []models.ActivityPoint
	for rows.Next() {
		var p models.ActivityPoint
		if err := rows.Scan(&p.Date, &p.Sessions, &p.ActiveUsers); err != nil {
			return nil, fmt.Errorf("scan reading activity: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reading activity: %w", err)
	}

	out := &models.ReadingActivity{
		Period:     period,
		StartDate:  start,
		EndDate:    end,
		DataPoints: points,
	}
	out.TotalActivity, out.AverageDaily, out.PeakActivity, out.PeakDate = summarizeActivity(points)
	return out, nil
}

// UserTrends returns a bucketed trend of distinct active users for the
// window. period is daily, weekly or monthly.
func (s *Service) UserTrends(ctx context.Context, start, end time.Time, period string) (*models.UserTrends, error) {
	trunc, err := periodTrunc(period)
	if err != nil {
		return nil, err
	}

	rows, err := s.pg.Query(ctx, `
		SELECT date_trunc($1, update_time) AS bucket,
		       count(DISTINCT user_id) AS active_users,
		       count(*) AS sessions
		FROM history
		WHERE update_time >= $2 AND update_time < $3
		GROUP BY bucket
		ORDER BY bucket
	`, trunc, start, end)
	if err != nil {
		return nil, fmt.Errorf("query user trends: %w", err)
	}
	defer rows.Close()

	var points []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Date, &p.ActiveUsers, &p.Sessions); err != nil {
			return nil, fmt.Errorf("scan user trends: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read user trends: %w", err)
	}

	// Window-wide distinct count; summing the buckets would double-count
	// users active in more than one bucket.
	total, err := s.countActiveUsers(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := &models.UserTrends{
		Period:     period,
		StartDate:  start,
		EndDate:    end,
		DataPoints: points,
		TotalUsers: total,
	}
	var bucketSum int64
	for _, p := range points {
		bucketSum += p.ActiveUsers
		if p.ActiveUsers > out.PeakUsers {
			out.PeakUsers = p.ActiveUsers
			out.PeakDate = p.Date.Format("2006-01-02")
		}
	}
	if len(points) > 0 {
		out.AverageDaily = float64(bucketSum) / float64(len(points))
	}
	return out, nil
}

// Summary returns the windowed key-metrics report. Growth rates compare
// the window against the preceding window of equal length; engagement
// totals degrade to zero when that service is unreachable.
func (s *Service) Summary(ctx context.Context, start, end time.Time, period string) (*models.AnalyticsSummary, error) {
	if _, err := periodTrunc(period); err != nil {
		return nil, err
	}

	current, err := s.windowCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}
	prevStart := start.Add(-end.Sub(start))
	previous, err := s.windowCounts(ctx, prevStart, start)
	if err != nil {
		return nil, err
	}

	out := &models.AnalyticsSummary{
		StartDate:            start,
		EndDate:              end,
		Period:               period,
		ActiveUsers:          current.activeUsers,
		UserGrowthRate:       growthRate(current.activeUsers, previous.activeUsers),
		UniqueNovelsRead:     current.uniqueNovels,
		NovelGrowthRate:      growthRate(current.uniqueNovels, previous.uniqueNovels),
		TotalReadingSessions: current.sessions,
		SessionGrowthRate:    growthRate(current.sessions, previous.sessions),
	}

	if s.engagement != nil {
		if stats, err := s.engagement.GetCommentStatistics(ctx); err != nil {
			s.logger.Warnw("Failed to fetch engagement statistics", "error", err)
		} else {
			out.TotalComments = stats.TotalComments
			out.TotalReviews = stats.TotalReviews
		}
	}
	return out, nil
}

// windowCounts holds one window's history aggregates for the summary.
type windowCounts struct {
	activeUsers  int64
	uniqueNovels int64
	sessions     int64
}

func (s *Service) windowCounts(ctx context.Context, from, to time.Time) (windowCounts, error) {
	var c windowCounts
	err := s.pg.QueryRow(ctx, `
		SELECT count(DISTINCT user_id),
		       count(DISTINCT novel_id),
		       count(*)
		FROM history
		WHERE update_time >= $1 AND update_time < $2
	`, from, to).Scan(&c.activeUsers, &c.uniqueNovels, &c.sessions)
	if err != nil {
		return windowCounts{}, fmt.Errorf("window counts: %w", err)
	}
	return c, nil
}

// growthRate is the percent change against the previous window. An empty
// previous window reports 100% growth when the current one has data, 0%
// when both are empty.
func growthRate(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// TopContent returns the most-read novels per the local history, resolved
// to rich catalog objects in read-count order.
func (s *Service) TopContent(ctx context.Context, limit int) (*models.TopContent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pg.Query(ctx, `
		SELECT novel_id, count(*) AS reads
		FROM history
		GROUP BY novel_id
		ORDER BY reads DESC, novel_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top content: %w", err)
	}
	defer rows.Close()

	var counts []novelReads
	for rows.Next() {
		var c novelReads
		if err := rows.Scan(&c.NovelID, &c.Reads); err != nil {
			return nil, fmt.Errorf("scan top content: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read top content: %w", err)
	}

	top, err := s.resolveTopNovels(ctx, counts)
	if err != nil {
		return nil, err
	}
	return &models.TopContent{GeneratedAt: time.Now().UTC(), TopNovels: top}, nil
}

// PlatformStatistics builds the cross-service dashboard snapshot. Local
// history aggregates are authoritative; upstream totals degrade to zero
// when their service is unreachable.
func (s *Service) PlatformStatistics(ctx context.Context) (*models.PlatformStatistics, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := &models.PlatformStatistics{Timestamp: now}

	var err error
	if out.DailyActiveUsers, err = s.countActiveUsers(ctx, dayStart, now); err != nil {
		return nil, err
	}
	if out.WeeklyActiveUsers, err = s.countActiveUsers(ctx, now.AddDate(0, 0, -7), now); err != nil {
		return nil, err
	}
	if out.MonthlyActiveUsers, err = s.countActiveUsers(ctx, now.AddDate(0, 0, -30), now); err != nil {
		return nil, err
	}
	if err := s.pg.QueryRow(ctx, `SELECT count(*) FROM history`).Scan(&out.TotalReadingSessions); err != nil {
		return nil, fmt.Errorf("count reading sessions: %w", err)
	}
	if err := s.pg.QueryRow(ctx, `SELECT count(DISTINCT novel_id) FROM history`).Scan(&out.UniqueNovelsRead); err != nil {
		return nil, fmt.Errorf("count unique novels: %w", err)
	}

	if total, err := s.content.GetNovelCount(ctx); err != nil {
		s.logger.Warnw("Failed to fetch novel count", "error", err)
	} else {
		out.TotalNovels = total
	}

	if s.engagement != nil {
		if stats, err := s.engagement.GetCommentStatistics(ctx); err != nil {
			s.logger.Warnw("Failed to fetch engagement statistics", "error", err)
		} else {
			out.TotalComments = stats.TotalComments
			out.TotalReviews = stats.TotalReviews
		}
	}
	return out, nil
}

func (s *Service) countActiveUsers(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.pg.QueryRow(ctx, `
		SELECT count(DISTINCT user_id)
		FROM history
		WHERE update_time >= $1 AND update_time < $2
	`, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}

type novelReads struct {
	NovelID int
	Reads   int64
}

// resolveTopNovels batch-resolves history read counts to catalog novels,
// keeping read-count order and silently dropping ids the catalog no
// longer knows.
func (s *Service) resolveTopNovels(ctx context.Context, counts []novelReads) ([]models.TopNovel, error) {
	if len(counts) == 0 {
		return []models.TopNovel{}, nil
	}
	ids := make([]int, len(counts))
	for i, c := range counts {
		ids[i] = c.NovelID
	}
	novels, err := s.content.GetNovelsBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve top novels: %w", err)
	}
	byID := make(map[int]models.Novel, len(novels))
	for _, n := range novels {
		byID[n.ID] = n
	}
	out := make([]models.TopNovel, 0, len(counts))
	for _, c := range counts {
		if n, ok := byID[c.NovelID]; ok {
			out = append(out, models.TopNovel{Novel: n, ReadCount: c.Reads})
		}
	}
	return out, nil
}

// ErrInvalidPeriod is returned when a trend request names an unknown
// bucketing period.
var ErrInvalidPeriod = errors.New("invalid period")

// periodTrunc maps an API period to its date_trunc unit.
func periodTrunc(period string) (string, error) {
	switch period {
	case "", "daily":
		return "day", nil
	case "weekly":
		return "week", nil
	case "monthly":
		return "month", nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidPeriod, period)
	}
}

// summarizeActivity folds trend points into the response's summary
// fields. Daily averages use the point count, not the raw day span, so a
// weekly series averages over weeks.
func summarizeActivity(points []models.ActivityPoint) (total int64, avg float64, peak int64, peakDate string) {
	for _, p := range points {
		total += p.Sessions
		if p.Sessions > peak {
			peak = p.Sessions
			peakDate = p.Date.Format("2006-01-02")
		}
	}
	if len(points) > 0 {
		avg = float64(total) / float64(len(points))
	}
	return total, avg, peak, peakDate
}
