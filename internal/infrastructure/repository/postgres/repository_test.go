package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestMatchRepository_GetByExternalID_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery(`SELECT \* FROM matches WHERE external_id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := repo.GetByExternalID(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_Insert_ReturnsGeneratedFields(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	kickoff := time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO matches \(external_id, home_team, away_team, home_score, away_score, status, kickoff_at, gameweek, season\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9\) RETURNING id, created_at, updated_at`).
		WithArgs(int64(101), "Arsenal", "Chelsea", nil, nil, match.StatusTimed, kickoff, 1, "2026/27").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	inserted, err := repo.Insert(context.Background(), match.Match{
		ExternalID: 101,
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		Status:     match.StatusTimed,
		KickoffAt:  kickoff,
		Gameweek:   1,
		Season:     "2026/27",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), inserted.ID)
	assert.Equal(t, now, inserted.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_ListFinishedWithUnprocessed(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	kickoff := time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "external_id", "home_team", "away_team", "home_score", "away_score",
		"status", "kickoff_at", "gameweek", "season", "created_at", "updated_at",
	}).AddRow(int64(1), int64(101), "Arsenal", "Chelsea", 2, 1, match.StatusFinished, kickoff, 1, "2026/27", kickoff, kickoff)

	mock.ExpectQuery(`SELECT \* FROM matches WHERE status = \$1 AND EXISTS \(SELECT 1 FROM predictions WHERE predictions\.match_id = matches\.id AND predictions\.processed = false\) ORDER BY kickoff_at, id`).
		WithArgs(match.StatusFinished).
		WillReturnRows(rows)

	matches, err := repo.ListFinishedWithUnprocessed(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(101), matches[0].ExternalID)
	require.NotNil(t, matches[0].HomeScore)
	assert.Equal(t, 2, *matches[0].HomeScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

const (
	settleClaimQuery  = `UPDATE predictions SET points_earned = \$1, processed = \$2, processed_at = \$3, updated_at = NOW\(\) WHERE id = \$4 AND processed = \$5`
	settleCreditQuery = `UPDATE users SET total_points = total_points \+ \$1, updated_at = \$2 WHERE id = \$3`
)

func TestPredictionRepository_Settle_ClaimsAndCreditsInOneTransaction(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	processedAt := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(settleClaimQuery).
		WithArgs(5, true, processedAt, int64(10), false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(settleCreditQuery).
		WithArgs(5, processedAt, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	settled, err := repo.Settle(context.Background(), 10, "alice", 5, processedAt)
	require.NoError(t, err)
	assert.True(t, settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_Settle_FirstClaimWins(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	processedAt := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)

	// The claim matches zero rows, so no credit is attempted and the
	// transaction rolls back.
	mock.ExpectBegin()
	mock.ExpectExec(settleClaimQuery).
		WithArgs(5, true, processedAt, int64(10), false).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	settled, err := repo.Settle(context.Background(), 10, "alice", 5, processedAt)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_Settle_FailedCreditReleasesClaim(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	processedAt := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(settleClaimQuery).
		WithArgs(5, true, processedAt, int64(10), false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(settleCreditQuery).
		WithArgs(5, processedAt, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	settled, err := repo.Settle(context.Background(), 10, "ghost", 5, processedAt)
	require.Error(t, err)
	assert.False(t, settled)
	assert.Contains(t, err.Error(), "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_Counts(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, COUNT\(\*\) FILTER \(WHERE processed\) AS processed, COUNT\(\*\) FILTER \(WHERE NOT processed\) AS unprocessed, COALESCE\(SUM\(points_earned\) FILTER \(WHERE processed\), 0\) AS points_awarded FROM predictions`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "processed", "unprocessed", "points_awarded"}).AddRow(30, 12, 18, 47))

	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, counts.Total)
	assert.Equal(t, 12, counts.Processed)
	assert.Equal(t, 18, counts.Unprocessed)
	assert.Equal(t, 47, counts.PointsAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AddPoints_IsAdditive(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	at := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE users SET total_points = total_points \+ \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(5, at, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddPoints(context.Background(), "alice", 5, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AddPoints_UnknownUser(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	at := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE users SET total_points = total_points \+ \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(5, at, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AddPoints(context.Background(), "ghost", 5, at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListRanked_OrdersByPointsThenUpdatedAt(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "display_name", "total_points", "created_at", "updated_at"}).
		AddRow("alice", "Alice", 12, now, now.Add(-time.Hour)).
		AddRow("bob", "Bob", 12, now, now)

	mock.ExpectQuery(`SELECT \* FROM users ORDER BY total_points DESC, updated_at ASC, id ASC LIMIT 50`).
		WillReturnRows(rows)

	ranked, err := repo.ListRanked(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "alice", ranked[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
