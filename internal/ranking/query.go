package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// QueryService serves paginated leaderboard slices resolved to rich
// objects, preserving leaderboard order through the resolution step.
type QueryService struct {
	store        LeaderboardStore
	content      ContentGateway
	users        UserGateway
	gamification GamificationGateway
	logger       *zap.SugaredLogger
}

func NewQueryService(store LeaderboardStore, content ContentGateway, users UserGateway,
	gamification GamificationGateway, logger *zap.Logger) *QueryService {
	return &QueryService{
		store:        store,
		content:      content,
		users:        users,
		gamification: gamification,
		logger:       logger.Sugar(),
	}
}

// NovelPage returns one page of a novel leaderboard. sortType selects the
// view or vote board; categoryID > 0 selects a per-category board.
func (q *QueryService) NovelPage(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error) {
	key := novelKey(sortType, categoryID)
	return pageFromBoard(ctx, q.store, key, page, size, q.logger,
		func(ctx context.Context, entries []Entry) ([]models.Novel, error) {
			ids := make([]int, 0, len(entries))
			for _, e := range entries {
				id, err := strconv.Atoi(e.Member)
				if err != nil {
					q.logger.Warnw("Skipping non-numeric novel member", "key", key, "member", e.Member)
					continue
				}
				ids = append(ids, id)
			}
			return q.content.GetNovelsBatch(ctx, ids)
		},
		func(n models.Novel) string { return strconv.Itoa(n.ID) },
	)
}

// UserPage returns one page of the user experience leaderboard. Level and
// current exp are derived back from the stored composite score.
func (q *QueryService) UserPage(ctx context.Context, page, size int) (models.Page[models.UserProfile], error) {
	return pageFromBoard(ctx, q.store, keyUserExp, page, size, q.logger,
		func(ctx context.Context, entries []Entry) ([]models.UserProfile, error) {
			scoreByID := make(map[string]float64, len(entries))
			ids := make([]uuid.UUID, 0, len(entries))
			for _, e := range entries {
				id, err := uuid.Parse(e.Member)
				if err != nil {
					q.logger.Warnw("Skipping malformed user member", "member", e.Member)
					continue
				}
				ids = append(ids, id)
				scoreByID[e.Member] = e.Score
			}
			profiles, err := q.users.GetUsersBatch(ctx, ids)
			if err != nil {
				return nil, err
			}
			for i := range profiles {
				level, exp := splitCompositeScore(scoreByID[profiles[i].UUID])
				profiles[i].Level = level
				profiles[i].CurrentExp = exp
			}
			return profiles, nil
		},
		func(u models.UserProfile) string { return u.UUID },
	)
}

// AuthorPage returns one page of an author leaderboard. The sorted metric
// comes with the range read; the two sibling metrics are filled from the
// other author boards so every row carries all three counts.
func (q *QueryService) AuthorPage(ctx context.Context, page, size int, sortType string) (models.Page[models.Author], error) {
	key := authorKey(sortType)
	return pageFromBoard(ctx, q.store, key, page, size, q.logger,
		func(ctx context.Context, entries []Entry) ([]models.Author, error) {
			scoreByID := make(map[string]float64, len(entries))
			ids := make([]uuid.UUID, 0, len(entries))
			for _, e := range entries {
				id, err := uuid.Parse(e.Member)
				if err != nil {
					q.logger.Warnw("Skipping malformed author member", "member", e.Member)
					continue
				}
				ids = append(ids, id)
				scoreByID[e.Member] = e.Score
			}
			profiles, err := q.users.GetUsersBatch(ctx, ids)
			if err != nil {
				return nil, err
			}
			authors := make([]models.Author, 0, len(profiles))
			for _, p := range profiles {
				authors = append(authors, q.fillAuthorCounts(ctx, models.Author{
					UUID:      p.UUID,
					Username:  p.Username,
					AvatarURL: p.AvatarURL,
				}, sortType, scoreByID[p.UUID]))
			}
			return authors, nil
		},
		func(a models.Author) string { return a.UUID },
	)
}

// fillAuthorCounts sets the sorted metric from the range score and reads
// the remaining metrics from their boards. A missing or failed sibling
// lookup leaves that count at zero rather than failing the page.
func (q *QueryService) fillAuthorCounts(ctx context.Context, a models.Author, sortType string, sorted float64) models.Author {
	switch sortType {
	case SortByView:
		a.TotalViewCnt = int64(sorted)
	case SortByNovelNum:
		a.NovelNum = int(sorted)
	default:
		a.TotalVoteCnt = int64(sorted)
	}
	if sortType != SortByVote {
		if score, ok, err := q.store.Score(ctx, keyAuthorVote, a.UUID); err == nil && ok {
			a.TotalVoteCnt = int64(score)
		}
	}
	if sortType != SortByView {
		if score, ok, err := q.store.Score(ctx, keyAuthorView, a.UUID); err == nil && ok {
			a.TotalViewCnt = int64(score)
		}
	}
	if sortType != SortByNovelNum {
		if score, ok, err := q.store.Score(ctx, keyAuthorNovelNum, a.UUID); err == nil && ok {
			a.NovelNum = int(score)
		}
	}
	return a
}

// BestNovelRank returns the novel's best (numerically smallest) 1-based
// rank across the global and category boards. The novel's existence is
// checked against the catalog first; absence there is an error, absence
// from every board is a valid unranked result. Store failures propagate
// instead of masquerading as "unranked".
func (q *QueryService) BestNovelRank(ctx context.Context, novelID int) (*models.NovelRank, error) {
	novel, err := q.content.GetNovelByID(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("verify novel %d: %w", novelID, err)
	}

	type probe struct {
		key  string
		name string
	}
	probes := []probe{
		{keyNovelViewAll, "All-Time Views Ranking"},
		{keyNovelVoteAll, "All-Time Votes Ranking"},
	}
	if novel.CategoryID > 0 && novel.CategoryName != "" {
		probes = append(probes,
			probe{novelKey(SortByView, novel.CategoryID), novel.CategoryName + " Views Ranking"},
			probe{novelKey(SortByVote, novel.CategoryID), novel.CategoryName + " Votes Ranking"},
		)
	}

	member := strconv.Itoa(novelID)
	best := &models.NovelRank{NovelID: novelID}
	for _, p := range probes {
		rank, ok, err := q.store.ReverseRank(ctx, p.key, member)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		oneBased := rank + 1
		if best.Ranked && oneBased >= best.Rank {
			continue
		}
		score, _, err := q.store.Score(ctx, p.key, member)
		if err != nil {
			return nil, err
		}
		best.Ranked = true
		best.Rank = oneBased
		best.Score = score
		best.RankingType = p.name
	}
	return best, nil
}

// splitCompositeScore inverts the rebuild's level*expPerLevel+exp formula.
func splitCompositeScore(score float64) (level, exp int) {
	if score <= 0 {
		return 0, 0
	}
	level = int(score) / expPerLevel
	exp = int(score) % expPerLevel
	return level, exp
}

// pageFromBoard reads one descending-rank slice, batch-resolves the
// members to rich objects and re-applies the leaderboard order. Members
// the upstream no longer recognizes are silently dropped; a resolution
// failure degrades to an empty item list with the true total, never an
// error. Store failures do propagate.
func pageFromBoard[T any](ctx context.Context, store LeaderboardStore, key string, page, size int,
	logger *zap.SugaredLogger,
	resolve func(ctx context.Context, entries []Entry) ([]T, error),
	memberOf func(T) string) (models.Page[T], error) {

	offset := int64(page) * int64(size)
	total, err := store.Card(ctx, key)
	if err != nil {
		return models.Page[T]{}, err
	}
	if offset >= total {
		return models.PageOf[T](nil, total, page, size), nil
	}

	entries, err := store.ReverseRangeWithScores(ctx, key, offset, offset+int64(size)-1)
	if err != nil {
		return models.Page[T]{}, err
	}
	if len(entries) == 0 {
		return models.PageOf[T](nil, total, page, size), nil
	}

	resolved, err := resolve(ctx, entries)
	if err != nil {
		// Leaderboard reads favor availability over completeness.
		logger.Warnw("Batch resolution failed, serving empty page", "key", key, "error", err)
		return models.PageOf[T](nil, total, page, size), nil
	}

	byMember := make(map[string]T, len(resolved))
	for _, item := range resolved {
		byMember[memberOf(item)] = item
	}

	ordered := make([]T, 0, len(entries))
	for _, e := range entries {
		if item, ok := byMember[e.Member]; ok {
			ordered = append(ordered, item)
		} else {
			resolveDropped.Inc()
		}
	}
	return models.PageOf(ordered, total, page, size), nil
}
