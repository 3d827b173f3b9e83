package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
	qb "github.com/loolazoola/epl-sub001/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListUnprocessedByMatch(ctx context.Context, matchID int64) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("processed", false),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select unprocessed predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select unprocessed predictions match_id=%d: %w", matchID, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Settle claims one prediction and credits the user inside a single
// transaction. The processed=false guard makes the claim a compare-and-set:
// only one caller ever claims a given prediction, so points are awarded at
// most once no matter how many runs race. Rolling the credit into the same
// transaction means a failed credit releases the claim for a later run.
func (r *PredictionRepository) Settle(ctx context.Context, predictionID int64, userID string, points int, processedAt time.Time) (bool, error) {
	claimQuery, claimArgs, err := qb.Update("predictions").
		Set("points_earned", points).
		Set("processed", true).
		Set("processed_at", processedAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", predictionID),
			qb.Eq("processed", false),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim prediction query: %w", err)
	}
	creditQuery, creditArgs, err := buildAddPointsSQL(userID, points, processedAt)
	if err != nil {
		return false, fmt.Errorf("build credit user points query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin settle prediction id=%d: %w", predictionID, err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, claimQuery, claimArgs...)
	if err != nil {
		return false, fmt.Errorf("claim prediction id=%d: %w", predictionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim prediction id=%d rows affected: %w", predictionID, err)
	}
	if affected == 0 {
		return false, nil
	}

	result, err = tx.ExecContext(ctx, creditQuery, creditArgs...)
	if err != nil {
		return false, fmt.Errorf("credit user_id=%s for prediction id=%d: %w", userID, predictionID, err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("credit user_id=%s rows affected: %w", userID, err)
	}
	if affected == 0 {
		return false, fmt.Errorf("credit user_id=%s for prediction id=%d: user not found", userID, predictionID)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit settle prediction id=%d: %w", predictionID, err)
	}
	return true, nil
}

func (r *PredictionRepository) Counts(ctx context.Context) (prediction.Counts, error) {
	query, args, err := qb.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE processed) AS processed",
		"COUNT(*) FILTER (WHERE NOT processed) AS unprocessed",
		"COALESCE(SUM(points_earned) FILTER (WHERE processed), 0) AS points_awarded",
	).From("predictions").ToSQL()
	if err != nil {
		return prediction.Counts{}, fmt.Errorf("build count predictions query: %w", err)
	}

	var row struct {
		Total         int `db:"total"`
		Processed     int `db:"processed"`
		Unprocessed   int `db:"unprocessed"`
		PointsAwarded int `db:"points_awarded"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return prediction.Counts{}, fmt.Errorf("count predictions: %w", err)
	}

	return prediction.Counts{
		Total:         row.Total,
		Processed:     row.Processed,
		Unprocessed:   row.Unprocessed,
		PointsAwarded: row.PointsAwarded,
	}, nil
}
