package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
)

type MatchRepository struct {
	mu     sync.RWMutex
	byID   map[int64]match.Match
	nextID int64

	predictions *PredictionRepository
}

// NewMatchRepository builds an in-memory match store. The prediction
// repository is consulted for the finished-with-unprocessed listing so
// the two stores answer consistently, mirroring the SQL join.
func NewMatchRepository(predictions *PredictionRepository, seed []match.Match) *MatchRepository {
	r := &MatchRepository{
		byID:        make(map[int64]match.Match),
		predictions: predictions,
	}
	for _, m := range seed {
		if m.ID <= 0 {
			r.nextID++
			m.ID = r.nextID
		} else if m.ID > r.nextID {
			r.nextID = m.ID
		}
		r.byID[m.ID] = m
	}
	return r
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if m.ExternalID == externalID {
			return m, true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) Insert(_ context.Context, m match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Same uniqueness the SQL store enforces with its external_id constraint.
	for _, existing := range r.byID {
		if existing.ExternalID == m.ExternalID {
			return match.Match{}, fmt.Errorf("insert match external_id=%d: duplicate external id", m.ExternalID)
		}
	}

	r.nextID++
	m.ID = r.nextID
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	r.byID[m.ID] = m
	return m, nil
}

func (r *MatchRepository) Update(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[m.ID]
	if !ok {
		return nil
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	r.byID[m.ID] = m
	return nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, status string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.byID {
		if m.Status == status {
			out = append(out, m)
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) ListFinishedWithUnprocessed(ctx context.Context) ([]match.Match, error) {
	r.mu.RLock()
	finished := make([]match.Match, 0)
	for _, m := range r.byID {
		if m.Status == match.StatusFinished {
			finished = append(finished, m)
		}
	}
	r.mu.RUnlock()

	out := make([]match.Match, 0, len(finished))
	for _, m := range finished {
		if r.predictions == nil {
			continue
		}
		pending, err := r.predictions.ListUnprocessedByMatch(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if len(pending) > 0 {
			out = append(out, m)
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) Counts(_ context.Context) (match.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := match.Counts{Total: len(r.byID)}
	for _, m := range r.byID {
		if m.Status == match.StatusFinished {
			counts.Finished++
		}
	}
	return counts, nil
}

func sortMatches(items []match.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
			return items[i].KickoffAt.Before(items[j].KickoffAt)
		}
		return items[i].ID < items[j].ID
	})
}
