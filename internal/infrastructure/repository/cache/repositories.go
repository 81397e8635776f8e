package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	basecache "github.com/riskibarqy/dota-coach/internal/platform/cache"
)

// DigestRepository caches match and player reads in front of the
// persistent store. Writes invalidate the affected match so re-imports
// are visible immediately.
type DigestRepository struct {
	next  digest.Repository
	cache *basecache.Store
}

func NewDigestRepository(next digest.Repository, cache *basecache.Store) *DigestRepository {
	return &DigestRepository{next: next, cache: cache}
}

func matchKey(matchID int64) string {
	return "digest:match:" + strconv.FormatInt(matchID, 10)
}

func (r *DigestRepository) UpsertMatch(ctx context.Context, match digest.MatchDigest) error {
	if err := r.next.UpsertMatch(ctx, match); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, matchKey(match.MatchID))
	return nil
}

func (r *DigestRepository) GetMatch(ctx context.Context, matchID int64) (digest.MatchDigest, bool, error) {
	key := matchKey(matchID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedMatch{value: item, exists: exists}, nil
	})
	if err != nil {
		return digest.MatchDigest{}, false, err
	}

	cached, _ := v.(cachedMatch)
	return cached.value, cached.exists, nil
}

type cachedMatch struct {
	value  digest.MatchDigest
	exists bool
}

func (r *DigestRepository) ReplacePlayers(ctx context.Context, matchID int64, players []digest.PlayerDigest) error {
	if err := r.next.ReplacePlayers(ctx, matchID, players); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, matchKey(matchID))
	return nil
}

func (r *DigestRepository) ListPlayersByMatch(ctx context.Context, matchID int64) ([]digest.PlayerDigest, error) {
	key := matchKey(matchID) + ":players"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListPlayersByMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return append([]digest.PlayerDigest(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]digest.PlayerDigest)
	return append([]digest.PlayerDigest(nil), items...), nil
}

func (r *DigestRepository) GetPlayer(ctx context.Context, matchID, playerSlot int64) (digest.PlayerDigest, bool, error) {
	key := matchKey(matchID) + ":player:" + strconv.FormatInt(playerSlot, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetPlayer(ctx, matchID, playerSlot)
		if err != nil {
			return nil, err
		}
		return cachedPlayer{value: item, exists: exists}, nil
	})
	if err != nil {
		return digest.PlayerDigest{}, false, err
	}

	cached, _ := v.(cachedPlayer)
	return cached.value, cached.exists, nil
}

type cachedPlayer struct {
	value  digest.PlayerDigest
	exists bool
}

// ListRecentByAccount always hits the store. The rollup depends on
// seeing writes from the import that triggered it.
func (r *DigestRepository) ListRecentByAccount(ctx context.Context, accountID int64, limit int) ([]digest.PlayerMatch, error) {
	return r.next.ListRecentByAccount(ctx, accountID, limit)
}

// StatisticsRepository caches the per-user dashboard read. Upserts
// refresh the cached value in place rather than just dropping it, so a
// dashboard read right after a recompute sees the new rollup.
type StatisticsRepository struct {
	next  statistics.Repository
	cache *basecache.Store
}

func NewStatisticsRepository(next statistics.Repository, cache *basecache.Store) *StatisticsRepository {
	return &StatisticsRepository{next: next, cache: cache}
}

func statsKey(userID string) string {
	return "statistics:user:" + userID
}

func (r *StatisticsRepository) Upsert(ctx context.Context, stats statistics.UserStatistics) error {
	if err := r.next.Upsert(ctx, stats); err != nil {
		return err
	}
	r.cache.Set(ctx, statsKey(stats.UserID), cachedStatistics{value: stats, exists: true})
	return nil
}

func (r *StatisticsRepository) GetByUserID(ctx context.Context, userID string) (statistics.UserStatistics, bool, error) {
	key := statsKey(userID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return cachedStatistics{value: item, exists: exists}, nil
	})
	if err != nil {
		return statistics.UserStatistics{}, false, err
	}

	cached, _ := v.(cachedStatistics)
	return cached.value, cached.exists, nil
}

type cachedStatistics struct {
	value  statistics.UserStatistics
	exists bool
}
