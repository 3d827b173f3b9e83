package prediction

import (
	"context"
	"time"
)

// Counts aggregates prediction totals for status reporting.
type Counts struct {
	Total         int
	Processed     int
	Unprocessed   int
	PointsAwarded int
}

// Repository exposes prediction persistence. (UserID, MatchID) is unique.
type Repository interface {
	ListUnprocessedByMatch(ctx context.Context, matchID int64) ([]Prediction, error)
	// Settle marks a prediction processed with the awarded points and credits
	// the user's total in one atomic step: either both writes land or neither
	// does, so a failed credit never leaves a claimed-but-uncredited row. The
	// claim succeeds only when the row is still unprocessed at write time and
	// returns false when another run already claimed it. This is the exclusive
	// claim that keeps scoring at-most-once across concurrent runs.
	Settle(ctx context.Context, predictionID int64, userID string, points int, processedAt time.Time) (bool, error)
	Counts(ctx context.Context) (Counts, error)
}
