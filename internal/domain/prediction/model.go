package prediction

import "time"

const (
	MinScore = 0
	MaxScore = 20
)

// Prediction is one user's predicted score for one match. At most one exists
// per (UserID, MatchID). Once Processed is set, PointsEarned is final.
type Prediction struct {
	ID            int64
	UserID        string
	MatchID       int64
	PredictedHome int
	PredictedAway int
	PointsEarned  int
	Processed     bool
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
