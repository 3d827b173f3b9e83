package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
	"github.com/loolazoola/epl-sub001/internal/domain/user"
)

func TestPredictionRepository_SettleIsExclusive(t *testing.T) {
	t.Parallel()

	users := NewUserRepository([]user.User{{ID: "alice"}})
	repo := NewPredictionRepository(users, []prediction.Prediction{
		{ID: 1, UserID: "alice", MatchID: 1},
	})

	const workers = 16
	var settles atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			settled, err := repo.Settle(context.Background(), 1, "alice", 5, time.Now().UTC())
			if err != nil {
				t.Errorf("Settle error: %v", err)
				return
			}
			if settled {
				settles.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := settles.Load(); got != 1 {
		t.Fatalf("expected exactly one successful settle, got=%d", got)
	}

	counts, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if counts.Processed != 1 || counts.PointsAwarded != 5 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	u, found, err := users.GetByID(context.Background(), "alice")
	if err != nil || !found {
		t.Fatalf("GetByID found=%v err=%v", found, err)
	}
	if u.TotalPoints != 5 {
		t.Fatalf("expected the credit to land exactly once, got=%d", u.TotalPoints)
	}
}

func TestPredictionRepository_SettleRollsBackOnFailedCredit(t *testing.T) {
	t.Parallel()

	// No "alice" in the user store, so the credit fails.
	users := NewUserRepository(nil)
	repo := NewPredictionRepository(users, []prediction.Prediction{
		{ID: 1, UserID: "alice", MatchID: 1},
	})

	if _, err := repo.Settle(context.Background(), 1, "alice", 5, time.Now().UTC()); err == nil {
		t.Fatal("expected settle to fail for unknown user")
	}

	counts, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if counts.Processed != 0 || counts.Unprocessed != 1 {
		t.Fatalf("failed credit must leave the prediction unclaimed: %+v", counts)
	}
}

func TestMatchRepository_ListFinishedWithUnprocessed(t *testing.T) {
	t.Parallel()

	users := NewUserRepository(SeedUsers())
	predictions := NewPredictionRepository(users, SeedPredictions())
	matches := NewMatchRepository(predictions, SeedMatches())
	ctx := context.Background()

	pending, err := matches.ListFinishedWithUnprocessed(ctx)
	if err != nil {
		t.Fatalf("ListFinishedWithUnprocessed error: %v", err)
	}
	if len(pending) != 1 || pending[0].ExternalID != 537851 {
		t.Fatalf("expected the finished seeded match, got=%+v", pending)
	}

	// Settle every prediction; the match must drop off the pending list.
	for _, p := range SeedPredictions() {
		if _, err := predictions.Settle(ctx, p.ID, p.UserID, 0, time.Now().UTC()); err != nil {
			t.Fatalf("Settle error: %v", err)
		}
	}

	pending, err = matches.ListFinishedWithUnprocessed(ctx)
	if err != nil {
		t.Fatalf("ListFinishedWithUnprocessed error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending matches, got=%+v", pending)
	}
}

func TestMatchRepository_InsertAssignsIDs(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(nil, nil)
	inserted, err := repo.Insert(context.Background(), match.Match{ExternalID: 9, HomeTeam: "Leeds", AwayTeam: "Fulham", Status: match.StatusTimed})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if inserted.ID == 0 || inserted.CreatedAt.IsZero() {
		t.Fatalf("expected generated fields, got=%+v", inserted)
	}

	got, found, err := repo.GetByExternalID(context.Background(), 9)
	if err != nil || !found {
		t.Fatalf("GetByExternalID found=%v err=%v", found, err)
	}
	if got.ID != inserted.ID {
		t.Fatalf("unexpected match: %+v", got)
	}
}

func TestMatchRepository_InsertRejectsDuplicateExternalID(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(nil, nil)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, match.Match{ExternalID: 101, HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: match.StatusTimed}); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := repo.Insert(ctx, match.Match{ExternalID: 101, HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: match.StatusTimed}); err == nil {
		t.Fatal("expected duplicate external id to be rejected")
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if counts.Total != 1 {
		t.Fatalf("expected a single stored match, got=%d", counts.Total)
	}
}

func TestUserRepository_ListRankedBreaksTiesByEarlierUpdate(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)
	repo := NewUserRepository([]user.User{
		{ID: "late", TotalPoints: 10, UpdatedAt: base.Add(time.Hour)},
		{ID: "early", TotalPoints: 10, UpdatedAt: base},
		{ID: "leader", TotalPoints: 20, UpdatedAt: base.Add(2 * time.Hour)},
	})

	ranked, err := repo.ListRanked(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRanked error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 users, got=%d", len(ranked))
	}
	if ranked[0].ID != "leader" || ranked[1].ID != "early" || ranked[2].ID != "late" {
		t.Fatalf("unexpected ordering: %v, %v, %v", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestUserRepository_AddPointsAccumulates(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(SeedUsers())
	ctx := context.Background()
	at := time.Date(2026, 8, 15, 17, 0, 0, 0, time.UTC)

	if err := repo.AddPoints(ctx, "demo-alice", 5, at); err != nil {
		t.Fatalf("AddPoints error: %v", err)
	}
	if err := repo.AddPoints(ctx, "demo-alice", 2, at.Add(time.Minute)); err != nil {
		t.Fatalf("AddPoints error: %v", err)
	}

	u, found, err := repo.GetByID(ctx, "demo-alice")
	if err != nil || !found {
		t.Fatalf("GetByID found=%v err=%v", found, err)
	}
	if u.TotalPoints != 7 {
		t.Fatalf("expected 7 points, got=%d", u.TotalPoints)
	}
	if !u.UpdatedAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("updated_at not advanced: %s", u.UpdatedAt)
	}

	if err := repo.AddPoints(ctx, "ghost", 1, at); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
