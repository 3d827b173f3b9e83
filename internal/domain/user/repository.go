package user

import (
	"context"
	"time"
)

// Repository exposes user aggregate persistence.
type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	// AddPoints increments total_points by delta and advances updated_at.
	// The increment must be additive relative to the stored value, never a
	// blind overwrite, so concurrent awards to the same user compose.
	AddPoints(ctx context.Context, userID string, delta int, at time.Time) error
	// ListRanked returns users ordered by total_points descending, then
	// updated_at ascending (earlier award wins ties), then id.
	ListRanked(ctx context.Context, limit int) ([]User, error)
}
