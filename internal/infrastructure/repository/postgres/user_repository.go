package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/loolazoola/epl-sub001/internal/domain/user"
	qb "github.com/loolazoola/epl-sub001/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build select user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("select user id=%s: %w", userID, err)
	}

	return row.toDomain(), true, nil
}

// buildAddPointsSQL is shared with PredictionRepository.Settle so the
// transactional credit issues exactly the statement AddPoints does.
func buildAddPointsSQL(userID string, delta int, at time.Time) (string, []any, error) {
	return qb.Update("users").
		SetExpr("total_points", "total_points + ?", delta).
		Set("updated_at", at).
		Where(qb.Eq("id", userID)).
		ToSQL()
}

// AddPoints applies a relative increment so concurrent awards for the
// same user never overwrite each other.
func (r *UserRepository) AddPoints(ctx context.Context, userID string, delta int, at time.Time) error {
	query, args, err := buildAddPointsSQL(userID, delta, at)
	if err != nil {
		return fmt.Errorf("build add user points query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("add points user_id=%s: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add points user_id=%s rows affected: %w", userID, err)
	}
	if affected == 0 {
		return fmt.Errorf("add points user_id=%s: user not found", userID)
	}
	return nil
}

func (r *UserRepository) ListRanked(ctx context.Context, limit int) ([]user.User, error) {
	query, args, err := qb.Select("*").From("users").
		OrderBy("total_points DESC", "updated_at ASC", "id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ranked users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ranked users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
