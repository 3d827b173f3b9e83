package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
)

type PredictionRepository struct {
	mu     sync.Mutex
	byID   map[int64]prediction.Prediction
	nextID int64

	users *UserRepository
}

// NewPredictionRepository builds an in-memory prediction store. The user
// repository receives the settled credits, mirroring the SQL transaction
// that spans both tables.
func NewPredictionRepository(users *UserRepository, seed []prediction.Prediction) *PredictionRepository {
	r := &PredictionRepository{byID: make(map[int64]prediction.Prediction), users: users}
	for _, p := range seed {
		if p.ID <= 0 {
			r.nextID++
			p.ID = r.nextID
		} else if p.ID > r.nextID {
			r.nextID = p.ID
		}
		r.byID[p.ID] = p
	}
	return r
}

func (r *PredictionRepository) ListUnprocessedByMatch(_ context.Context, matchID int64) ([]prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.byID {
		if p.MatchID == matchID && !p.Processed {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Settle is the same compare-and-set-then-credit the SQL transaction
// performs: the claim succeeds only while processed is still false, and a
// failed credit restores the row so a later run can settle it.
func (r *PredictionRepository) Settle(ctx context.Context, predictionID int64, userID string, points int, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	p, ok := r.byID[predictionID]
	if !ok || p.Processed {
		r.mu.Unlock()
		return false, nil
	}

	before := p
	p.Processed = true
	p.PointsEarned = points
	p.ProcessedAt = &processedAt
	p.UpdatedAt = time.Now().UTC()
	r.byID[predictionID] = p
	r.mu.Unlock()

	if r.users != nil {
		if err := r.users.AddPoints(ctx, userID, points, processedAt); err != nil {
			r.mu.Lock()
			r.byID[predictionID] = before
			r.mu.Unlock()
			return false, fmt.Errorf("credit user_id=%s for prediction id=%d: %w", userID, predictionID, err)
		}
	}
	return true, nil
}

func (r *PredictionRepository) Counts(_ context.Context) (prediction.Counts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := prediction.Counts{Total: len(r.byID)}
	for _, p := range r.byID {
		if p.Processed {
			counts.Processed++
			counts.PointsAwarded += p.PointsEarned
		} else {
			counts.Unprocessed++
		}
	}
	return counts, nil
}
