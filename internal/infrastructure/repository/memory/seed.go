package memory

import (
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
	"github.com/loolazoola/epl-sub001/internal/domain/user"
)

// Seed data for running the service without Postgres, mainly for local
// development and smoke tests.

func SeedUsers() []user.User {
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return []user.User{
		{ID: "demo-alice", DisplayName: "Alice", CreatedAt: created, UpdatedAt: created},
		{ID: "demo-bob", DisplayName: "Bob", CreatedAt: created, UpdatedAt: created},
		{ID: "demo-carol", DisplayName: "Carol", CreatedAt: created, UpdatedAt: created},
	}
}

func SeedMatches() []match.Match {
	two, one := 2, 1
	return []match.Match{
		{
			ID:         1,
			ExternalID: 537851,
			HomeTeam:   "Arsenal",
			AwayTeam:   "Chelsea",
			HomeScore:  &two,
			AwayScore:  &one,
			Status:     match.StatusFinished,
			KickoffAt:  time.Date(2026, 8, 15, 14, 0, 0, 0, time.UTC),
			Gameweek:   1,
			Season:     "2026/27",
		},
		{
			ID:         2,
			ExternalID: 537852,
			HomeTeam:   "Liverpool",
			AwayTeam:   "Everton",
			Status:     match.StatusTimed,
			KickoffAt:  time.Date(2026, 8, 16, 16, 30, 0, 0, time.UTC),
			Gameweek:   1,
			Season:     "2026/27",
		},
	}
}

func SeedPredictions() []prediction.Prediction {
	created := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	return []prediction.Prediction{
		{ID: 1, UserID: "demo-alice", MatchID: 1, PredictedHome: 2, PredictedAway: 1, CreatedAt: created, UpdatedAt: created},
		{ID: 2, UserID: "demo-bob", MatchID: 1, PredictedHome: 1, PredictedAway: 0, CreatedAt: created, UpdatedAt: created},
		{ID: 3, UserID: "demo-carol", MatchID: 1, PredictedHome: 0, PredictedAway: 2, CreatedAt: created, UpdatedAt: created},
	}
}
