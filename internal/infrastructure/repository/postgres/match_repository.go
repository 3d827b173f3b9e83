package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
	qb "github.com/loolazoola/epl-sub001/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("external_id", externalID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by external id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by external id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) Insert(ctx context.Context, m match.Match) (match.Match, error) {
	query, args, err := qb.InsertInto("matches").
		Columns("external_id", "home_team", "away_team", "home_score", "away_score", "status", "kickoff_at", "gameweek", "season").
		Values(m.ExternalID, m.HomeTeam, m.AwayTeam, m.HomeScore, m.AwayScore, m.Status, m.KickoffAt, m.Gameweek, m.Season).
		Suffix("RETURNING id, created_at, updated_at").
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return match.Match{}, fmt.Errorf("insert match external_id=%d: %w", m.ExternalID, err)
	}
	return m, nil
}

func (r *MatchRepository) Update(ctx context.Context, m match.Match) error {
	query, args, err := qb.Update("matches").
		Set("home_team", m.HomeTeam).
		Set("away_team", m.AwayTeam).
		Set("home_score", m.HomeScore).
		Set("away_score", m.AwayScore).
		Set("status", m.Status).
		Set("kickoff_at", m.KickoffAt).
		Set("gameweek", m.Gameweek).
		Set("season", m.Season).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", m.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match id=%d: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("status", status)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by status query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by status: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) ListFinishedWithUnprocessed(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("status", match.StatusFinished),
			qb.Expr("EXISTS (SELECT 1 FROM predictions WHERE predictions.match_id = matches.id AND predictions.processed = false)"),
		).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finished matches with unprocessed predictions query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select finished matches with unprocessed predictions: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) Counts(ctx context.Context) (match.Counts, error) {
	query, args, err := qb.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE status = 'FINISHED') AS finished",
	).From("matches").ToSQL()
	if err != nil {
		return match.Counts{}, fmt.Errorf("build count matches query: %w", err)
	}

	var row struct {
		Total    int `db:"total"`
		Finished int `db:"finished"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return match.Counts{}, fmt.Errorf("count matches: %w", err)
	}

	return match.Counts{Total: row.Total, Finished: row.Finished}, nil
}
