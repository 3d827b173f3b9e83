package postgres

import (
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
)

type matchTableModel struct {
	ID         int64     `db:"id"`
	ExternalID int64     `db:"external_id"`
	HomeTeam   string    `db:"home_team"`
	AwayTeam   string    `db:"away_team"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	Status     string    `db:"status"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Gameweek   int       `db:"gameweek"`
	Season     string    `db:"season"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		Status:     m.Status,
		KickoffAt:  m.KickoffAt,
		Gameweek:   m.Gameweek,
		Season:     m.Season,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
