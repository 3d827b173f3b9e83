package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/user"
)

type UserRepository struct {
	mu   sync.RWMutex
	byID map[string]user.User
}

func NewUserRepository(seed []user.User) *UserRepository {
	r := &UserRepository{byID: make(map[string]user.User)}
	for _, u := range seed {
		r.byID[u.ID] = u
	}
	return r
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[userID]
	return u, ok, nil
}

func (r *UserRepository) AddPoints(_ context.Context, userID string, delta int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return fmt.Errorf("add points user_id=%s: user not found", userID)
	}

	u.TotalPoints += delta
	u.UpdatedAt = at
	r.byID[userID] = u
	return nil
}

func (r *UserRepository) ListRanked(_ context.Context, limit int) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
