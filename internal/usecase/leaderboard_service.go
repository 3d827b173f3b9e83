package usecase

import (
	"context"
	"fmt"

	"github.com/loolazoola/epl-sub001/internal/domain/user"
	"github.com/loolazoola/epl-sub001/internal/platform/cache"
	"github.com/loolazoola/epl-sub001/internal/platform/logging"
)

const (
	leaderboardCachePrefix = "leaderboard:"
	defaultLeaderboardSize = 50
	maxLeaderboardSize     = 500
)

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int    `json:"total_points"`
}

type LeaderboardService struct {
	users  user.Repository
	cache  *cache.Store
	logger *logging.Logger
}

func NewLeaderboardService(users user.Repository, store *cache.Store, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeaderboardService{
		users:  users,
		cache:  store,
		logger: logger,
	}
}

// Leaderboard returns users ranked by total points. Ties on points are
// broken by earlier updated_at, so the ordering is a total order and
// ranks are dense positions.
func (s *LeaderboardService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Leaderboard")
	defer span.End()

	if s.users == nil {
		return nil, fmt.Errorf("%w: user repository is not configured", ErrDependencyUnavailable)
	}

	if limit < 1 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	load := func(ctx context.Context) (any, error) {
		ranked, err := s.users.ListRanked(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list ranked users: %w", err)
		}

		entries := make([]LeaderboardEntry, 0, len(ranked))
		for i, u := range ranked {
			entries = append(entries, LeaderboardEntry{
				Rank:        i + 1,
				UserID:      u.ID,
				DisplayName: u.DisplayName,
				TotalPoints: u.TotalPoints,
			})
		}
		return entries, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]LeaderboardEntry), nil
	}

	key := fmt.Sprintf("%s%d", leaderboardCachePrefix, limit)
	value, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return nil, err
	}

	entries, ok := value.([]LeaderboardEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache value type %T", value)
	}
	return entries, nil
}

// Invalidate drops cached standings. Called after a processing run so
// freshly awarded points become visible without waiting out the TTL.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, leaderboardCachePrefix)
}
