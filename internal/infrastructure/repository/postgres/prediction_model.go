package postgres

import (
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
)

type predictionTableModel struct {
	ID            int64      `db:"id"`
	UserID        string     `db:"user_id"`
	MatchID       int64      `db:"match_id"`
	PredictedHome int        `db:"predicted_home_score"`
	PredictedAway int        `db:"predicted_away_score"`
	PointsEarned  int        `db:"points_earned"`
	Processed     bool       `db:"processed"`
	ProcessedAt   *time.Time `db:"processed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (m predictionTableModel) toDomain() prediction.Prediction {
	return prediction.Prediction{
		ID:            m.ID,
		UserID:        m.UserID,
		MatchID:       m.MatchID,
		PredictedHome: m.PredictedHome,
		PredictedAway: m.PredictedAway,
		PointsEarned:  m.PointsEarned,
		Processed:     m.Processed,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
