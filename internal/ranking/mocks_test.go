package ranking

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// memStore is an in-memory LeaderboardStore for tests. Ties keep member
// insertion order, mirroring the backing store's undefined-but-stable tie
// behavior.
type memStore struct {
	mu     sync.Mutex
	boards map[string][]Entry
}

func newMemStore() *memStore {
	return &memStore{boards: make(map[string][]Entry)}
}

func (s *memStore) Add(ctx context.Context, key, member string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.boards[key]
	for i := range board {
		if board[i].Member == member {
			board[i].Score = score
			return nil
		}
	}
	s.boards[key] = append(board, Entry{Member: member, Score: score})
	return nil
}

func (s *memStore) sortedDesc(key string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := make([]Entry, len(s.boards[key]))
	copy(board, s.boards[key])
	sort.SliceStable(board, func(i, j int) bool { return board[i].Score > board[j].Score })
	return board
}

func (s *memStore) Card(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.boards[key])), nil
}

func (s *memStore) ReverseRank(ctx context.Context, key, member string) (int64, bool, error) {
	for i, e := range s.sortedDesc(key) {
		if e.Member == member {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

func (s *memStore) Score(ctx context.Context, key, member string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.boards[key] {
		if e.Member == member {
			return e.Score, true, nil
		}
	}
	return 0, false, nil
}

func (s *memStore) ReverseRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Entry, error) {
	board := s.sortedDesc(key)
	if start < 0 {
		start = 0
	}
	if start >= int64(len(board)) {
		return nil, nil
	}
	if stop >= int64(len(board)) {
		stop = int64(len(board)) - 1
	}
	return board[start : stop+1], nil
}

func (s *memStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.boards, key)
	}
	return nil
}

func (s *memStore) DeleteByPattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.boards {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.boards, key)
		}
	}
	return nil
}

// snapshot returns member->score for assertions.
func (s *memStore) snapshot(key string) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.boards[key]))
	for _, e := range s.boards[key] {
		out[e.Member] = e.Score
	}
	return out
}

// failingStore returns a store error from every operation.
type failingStore struct{}

var errStoreDown = errors.Join(ErrStoreUnavailable, errors.New("connection refused"))

func (failingStore) Add(ctx context.Context, key, member string, score float64) error {
	return errStoreDown
}
func (failingStore) Card(ctx context.Context, key string) (int64, error) { return 0, errStoreDown }
func (failingStore) ReverseRank(ctx context.Context, key, member string) (int64, bool, error) {
	return 0, false, errStoreDown
}
func (failingStore) Score(ctx context.Context, key, member string) (float64, bool, error) {
	return 0, false, errStoreDown
}
func (failingStore) ReverseRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Entry, error) {
	return nil, errStoreDown
}
func (failingStore) Delete(ctx context.Context, keys ...string) error          { return errStoreDown }
func (failingStore) DeleteByPattern(ctx context.Context, pattern string) error { return errStoreDown }

// MockContentGateway
type MockContentGateway struct {
	GetNovelsFunc      func(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.Novel], error)
	GetNovelByIDFunc   func(ctx context.Context, id int) (*models.Novel, error)
	GetNovelsBatchFunc func(ctx context.Context, ids []int) ([]models.Novel, error)
}

func (m *MockContentGateway) GetNovels(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.Novel], error) {
	if m.GetNovelsFunc != nil {
		return m.GetNovelsFunc(ctx, page, size, sortBy, sortOrder)
	}
	return models.Page[models.Novel]{}, nil
}

func (m *MockContentGateway) GetNovelByID(ctx context.Context, id int) (*models.Novel, error) {
	if m.GetNovelByIDFunc != nil {
		return m.GetNovelByIDFunc(ctx, id)
	}
	return &models.Novel{ID: id}, nil
}

func (m *MockContentGateway) GetNovelsBatch(ctx context.Context, ids []int) ([]models.Novel, error) {
	if m.GetNovelsBatchFunc != nil {
		return m.GetNovelsBatchFunc(ctx, ids)
	}
	novels := make([]models.Novel, 0, len(ids))
	for _, id := range ids {
		novels = append(novels, models.Novel{ID: id})
	}
	return novels, nil
}

// MockUserGateway
type MockUserGateway struct {
	GetUsersFunc      func(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.UserProfile], error)
	GetUsersBatchFunc func(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error)
}

func (m *MockUserGateway) GetUsers(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.UserProfile], error) {
	if m.GetUsersFunc != nil {
		return m.GetUsersFunc(ctx, page, size, sortBy, sortOrder)
	}
	return models.Page[models.UserProfile]{}, nil
}

func (m *MockUserGateway) GetUsersBatch(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error) {
	if m.GetUsersBatchFunc != nil {
		return m.GetUsersBatchFunc(ctx, ids)
	}
	profiles := make([]models.UserProfile, 0, len(ids))
	for _, id := range ids {
		profiles = append(profiles, models.UserProfile{UUID: id.String()})
	}
	return profiles, nil
}

// MockGamificationGateway
type MockGamificationGateway struct {
	GetBatchUserStatsFunc func(ctx context.Context, userIDs []string) ([]models.GamificationStats, error)
}

func (m *MockGamificationGateway) GetBatchUserStats(ctx context.Context, userIDs []string) ([]models.GamificationStats, error) {
	if m.GetBatchUserStatsFunc != nil {
		return m.GetBatchUserStatsFunc(ctx, userIDs)
	}
	return nil, nil
}

// singlePage builds a one-page listing response for gateway mocks.
func singlePage[T any](items []T) func(page int) (models.Page[T], error) {
	return func(page int) (models.Page[T], error) {
		if page > 0 {
			return models.PageOf[T](nil, int64(len(items)), page, len(items)), nil
		}
		return models.PageOf(items, int64(len(items)), 0, len(items)+1), nil
	}
}
