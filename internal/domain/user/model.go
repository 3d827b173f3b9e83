package user

import "time"

// User carries the aggregate points a player has earned across all their
// processed predictions. UpdatedAt advances on every award and is the
// deterministic leaderboard tie-break: at equal points the earlier UpdatedAt
// ranks higher.
type User struct {
	ID          string
	DisplayName string
	TotalPoints int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
