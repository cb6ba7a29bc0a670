// Package ranking implements the leaderboard subsystem: the ordered-set
// store abstraction, the periodic full rebuild that derives every
// leaderboard from upstream state, and the read path that serves paginated
// slices resolved back to rich objects.
package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable marks a failure to reach the ordered-set store.
// It is deliberately distinct from member absence: absence is a valid
// state, a store failure is retryable.
var ErrStoreUnavailable = errors.New("leaderboard store unavailable")

// Entry is one (member, score) pair of a leaderboard.
type Entry struct {
	Member string
	Score  float64
}

// LeaderboardStore abstracts the external ordered-set service. Rank
// indices are 0-based and all range reads are in descending score order.
type LeaderboardStore interface {
	// Add upserts a member; an existing member gets its score overwritten.
	Add(ctx context.Context, key, member string, score float64) error
	// Card returns the member count of a leaderboard.
	Card(ctx context.Context, key string) (int64, error)
	// ReverseRank returns the member's 0-based descending rank.
	// ok is false when the member is not on the board.
	ReverseRank(ctx context.Context, key, member string) (rank int64, ok bool, err error)
	// Score returns the member's current score. ok is false when absent.
	Score(ctx context.Context, key, member string) (score float64, ok bool, err error)
	// ReverseRangeWithScores returns scored members for the descending
	// rank interval [start, stop], both inclusive.
	ReverseRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Entry, error)
	// Delete removes whole leaderboards.
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes every leaderboard whose key matches the
	// glob pattern.
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RedisStore is the production LeaderboardStore on Redis sorted sets.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Add(ctx context.Context, key, member string, score float64) error {
	if err := s.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("%w: zadd %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *RedisStore) Card(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: zcard %s: %v", ErrStoreUnavailable, key, err)
	}
	return n, nil
}

func (s *RedisStore) ReverseRank(ctx context.Context, key, member string) (int64, bool, error) {
	rank, err := s.rdb.ZRevRank(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: zrevrank %s: %v", ErrStoreUnavailable, key, err)
	}
	return rank, true, nil
}

func (s *RedisStore) Score(ctx context.Context, key, member string) (float64, bool, error) {
	score, err := s.rdb.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: zscore %s: %v", ErrStoreUnavailable, key, err)
	}
	return score, true, nil
}

func (s *RedisStore) ReverseRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Entry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: zrevrangewithscores %s: %v", ErrStoreUnavailable, key, err)
	}
	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{Member: member, Score: z.Score})
	}
	return entries, nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := s.rdb.Scan(ctx, 0, pattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %v", ErrStoreUnavailable, pattern, err)
	}
	return s.Delete(ctx, keys...)
}
