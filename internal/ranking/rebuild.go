package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// expPerLevel is the composite user score base: score = level*expPerLevel +
// currentExp. The formula only orders correctly while currentExp stays
// below expPerLevel; scores at or over the bound are clamped and logged.
const expPerLevel = 1_000_000

// statsFetchConcurrency bounds the gamification batch fan-out. Only the
// fetch is concurrent; every store write stays single-writer per key.
const statsFetchConcurrency = 4

// ErrRebuildInProgress is returned when a rebuild is requested while one
// is still running.
var ErrRebuildInProgress = errors.New("leaderboard rebuild already in progress")

// RebuildConfig bounds the rebuild's upstream fetch loops.
type RebuildConfig struct {
	PageSize       int
	MaxPages       int
	StatsBatchSize int
}

// Rebuilder re-derives every leaderboard from current upstream state and
// replaces the ordered-set contents. The rebuild is replace, not merge: a
// novel removed upstream disappears after the next run.
type Rebuilder struct {
	store        LeaderboardStore
	content      ContentGateway
	users        UserGateway
	gamification GamificationGateway
	cfg          RebuildConfig
	logger       *zap.SugaredLogger
	running      atomic.Bool
}

func NewRebuilder(store LeaderboardStore, content ContentGateway, users UserGateway,
	gamification GamificationGateway, cfg RebuildConfig, logger *zap.Logger) *Rebuilder {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 100
	}
	if cfg.StatsBatchSize <= 0 {
		cfg.StatsBatchSize = 100
	}
	return &Rebuilder{
		store:        store,
		content:      content,
		users:        users,
		gamification: gamification,
		cfg:          cfg,
		logger:       logger.Sugar(),
	}
}

// Running reports whether a rebuild is currently executing.
func (r *Rebuilder) Running() bool {
	return r.running.Load()
}

// RebuildAll runs the novel/author phase and the user phase. The phases
// are independent: a failure in one is logged and does not abort the
// other. The returned error aggregates any phase failures.
func (r *Rebuilder) RebuildAll(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRebuildInProgress
	}
	defer r.running.Store(false)

	start := time.Now()
	r.logger.Infow("Starting leaderboard rebuild")

	novelErr := r.rebuildNovelAndAuthorBoards(ctx)
	if novelErr != nil {
		rebuildRuns.WithLabelValues("novel", "failure").Inc()
		r.logger.Errorw("Novel/author rebuild phase failed", "error", novelErr)
	} else {
		rebuildRuns.WithLabelValues("novel", "success").Inc()
	}

	userErr := r.rebuildUserBoard(ctx)
	if userErr != nil {
		rebuildRuns.WithLabelValues("user", "failure").Inc()
		r.logger.Errorw("User rebuild phase failed", "error", userErr)
	} else {
		rebuildRuns.WithLabelValues("user", "success").Inc()
	}

	rebuildDuration.Observe(time.Since(start).Seconds())
	r.logger.Infow("Finished leaderboard rebuild", "duration", time.Since(start))
	return errors.Join(novelErr, userErr)
}

// rebuildNovelAndAuthorBoards repopulates the novel view/vote boards (all
// and per-category) and, from the same catalog pass, the three author
// aggregate boards.
func (r *Rebuilder) rebuildNovelAndAuthorBoards(ctx context.Context) error {
	novels, err := r.fetchAllNovels(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	r.logger.Infow("Fetched catalog for rebuild", "novels", len(novels))

	authors := foldAuthorStats(novels)

	// Replace semantics: clear before writing. A failure past this point
	// leaves boards partially populated until the next successful run,
	// which is acceptable for derived data.
	if err := r.store.DeleteByPattern(ctx, keyNovelPattern); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, keyAuthorVote, keyAuthorView, keyAuthorNovelNum); err != nil {
		return err
	}

	for _, novel := range novels {
		member := strconv.Itoa(novel.ID)
		if err := r.store.Add(ctx, keyNovelViewAll, member, float64(novel.ViewCnt)); err != nil {
			return err
		}
		if err := r.store.Add(ctx, keyNovelVoteAll, member, float64(novel.VoteCnt)); err != nil {
			return err
		}
		if novel.CategoryID > 0 {
			cat := strconv.Itoa(novel.CategoryID)
			if err := r.store.Add(ctx, novelViewKeyPrefix+cat, member, float64(novel.ViewCnt)); err != nil {
				return err
			}
			if err := r.store.Add(ctx, novelVoteKeyPrefix+cat, member, float64(novel.VoteCnt)); err != nil {
				return err
			}
		}
	}

	for authorID, agg := range authors {
		if err := r.store.Add(ctx, keyAuthorVote, authorID, float64(agg.totalVotes)); err != nil {
			return err
		}
		if err := r.store.Add(ctx, keyAuthorView, authorID, float64(agg.totalViews)); err != nil {
			return err
		}
		if err := r.store.Add(ctx, keyAuthorNovelNum, authorID, float64(agg.novelCount)); err != nil {
			return err
		}
	}

	r.observeBoardSizes(ctx, keyNovelViewAll, keyNovelVoteAll, keyAuthorVote, keyAuthorView, keyAuthorNovelNum)
	r.logger.Infow("Rebuilt novel and author boards", "novels", len(novels), "authors", len(authors))
	return nil
}

// rebuildUserBoard repopulates the user experience board with the
// composite level/exp score.
func (r *Rebuilder) rebuildUserBoard(ctx context.Context) error {
	userIDs, err := r.fetchAllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("fetch user directory: %w", err)
	}
	if len(userIDs) == 0 {
		r.logger.Warnw("No users found for ranking")
		return nil
	}

	stats := r.fetchStatsBatches(ctx, userIDs)
	r.logger.Infow("Fetched gamification stats for rebuild", "users", len(userIDs), "stats", len(stats))

	if err := r.store.Delete(ctx, keyUserExp); err != nil {
		return err
	}
	for _, s := range stats {
		if s.UserID == "" {
			continue
		}
		if err := r.store.Add(ctx, keyUserExp, s.UserID, r.compositeUserScore(s)); err != nil {
			return err
		}
	}

	r.observeBoardSizes(ctx, keyUserExp)
	r.logger.Infow("Rebuilt user board", "members", len(stats))
	return nil
}

// fetchAllNovels paginates the full catalog listing, bounded by MaxPages.
// A page-fetch failure mid-stream halts the loop and keeps what was
// collected; a failure before anything was collected fails the phase.
func (r *Rebuilder) fetchAllNovels(ctx context.Context) ([]models.Novel, error) {
	var all []models.Novel
	for page := 0; page < r.cfg.MaxPages; page++ {
		pageData, err := r.content.GetNovels(ctx, page, r.cfg.PageSize, "createTime", "desc")
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			r.logger.Warnw("Catalog pagination halted early", "page", page, "error", err)
			break
		}
		if len(pageData.Content) == 0 {
			break
		}
		all = append(all, pageData.Content...)
		if !pageData.HasNext {
			break
		}
	}
	return all, nil
}

func (r *Rebuilder) fetchAllUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for page := 0; page < r.cfg.MaxPages; page++ {
		pageData, err := r.users.GetUsers(ctx, page, r.cfg.PageSize, "createTime", "desc")
		if err != nil {
			if len(ids) == 0 {
				return nil, err
			}
			r.logger.Warnw("User pagination halted early", "page", page, "error", err)
			break
		}
		if len(pageData.Content) == 0 {
			break
		}
		for _, u := range pageData.Content {
			if u.UUID != "" {
				ids = append(ids, u.UUID)
			}
		}
		if !pageData.HasNext {
			break
		}
	}
	return ids, nil
}

// fetchStatsBatches fans out the gamification batch calls with bounded
// concurrency. A failed batch is logged and skipped; its users simply
// stay off the board until the next run.
func (r *Rebuilder) fetchStatsBatches(ctx context.Context, userIDs []string) []models.GamificationStats {
	var (
		mu  sync.Mutex
		all []models.GamificationStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsFetchConcurrency)

	for start := 0; start < len(userIDs); start += r.cfg.StatsBatchSize {
		end := start + r.cfg.StatsBatchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		batch := userIDs[start:end]
		offset := start
		g.Go(func() error {
			stats, err := r.gamification.GetBatchUserStats(gctx, batch)
			if err != nil {
				r.logger.Warnw("Failed to fetch gamification stats batch", "offset", offset, "error", err)
				return nil
			}
			mu.Lock()
			all = append(all, stats...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return all
}

func (r *Rebuilder) compositeUserScore(s models.GamificationStats) float64 {
	exp := s.CurrentExp
	if exp >= expPerLevel {
		r.logger.Warnw("Experience exceeds per-level bound, clamping", "userId", s.UserID, "exp", exp)
		exp = expPerLevel - 1
	}
	if exp < 0 {
		exp = 0
	}
	return float64(s.Level)*expPerLevel + float64(exp)
}

func (r *Rebuilder) observeBoardSizes(ctx context.Context, keys ...string) {
	for _, key := range keys {
		n, err := r.store.Card(ctx, key)
		if err != nil {
			continue
		}
		leaderboardSize.WithLabelValues(key).Set(float64(n))
	}
}

// authorAgg accumulates one author's catalog footprint during a rebuild
// pass. It lives only for the duration of the pass.
type authorAgg struct {
	novelCount int
	totalViews int64
	totalVotes int64
}

// foldAuthorStats aggregates every catalog item by author id in one pass.
func foldAuthorStats(novels []models.Novel) map[string]*authorAgg {
	out := make(map[string]*authorAgg)
	for _, n := range novels {
		if n.AuthorID == "" {
			continue
		}
		agg := out[n.AuthorID]
		if agg == nil {
			agg = &authorAgg{}
			out[n.AuthorID] = agg
		}
		agg.novelCount++
		agg.totalViews += n.ViewCnt
		agg.totalVotes += n.VoteCnt
	}
	return out
}
