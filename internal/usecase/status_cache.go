package usecase

import (
	"sync"
	"time"
)

// StatusSnapshot is a point-in-time copy of run counters. It is an
// observability shortcut only; the repositories stay authoritative.
type StatusSnapshot struct {
	SyncRuns            int        `json:"sync_runs"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	LastSyncNew         int        `json:"last_sync_new"`
	LastSyncUpdated     int        `json:"last_sync_updated"`
	LastSyncUnchanged   int        `json:"last_sync_unchanged"`
	LastSyncErrors      int        `json:"last_sync_errors"`
	ProcessingRuns      int        `json:"processing_runs"`
	LastProcessingAt    *time.Time `json:"last_processing_at,omitempty"`
	LastMatchesScored   int        `json:"last_matches_scored"`
	LastPredictions     int        `json:"last_predictions_processed"`
	LastPointsAwarded   int        `json:"last_points_awarded"`
	LastProcessingFails int        `json:"last_processing_errors"`
}

// StatusCache holds process-local counters updated after each sync or
// processing run. It is initialized empty and reset only by restart.
type StatusCache struct {
	mu   sync.RWMutex
	snap StatusSnapshot
}

func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

func (c *StatusCache) RecordSync(result SyncResult, at time.Time) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	at = at.UTC()
	c.snap.SyncRuns++
	c.snap.LastSyncAt = &at
	c.snap.LastSyncNew = result.NewMatches
	c.snap.LastSyncUpdated = result.UpdatedMatches
	c.snap.LastSyncUnchanged = result.UnchangedCount
	c.snap.LastSyncErrors = len(result.Errors)
}

func (c *StatusCache) RecordProcessing(result ProcessingResult, at time.Time) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	at = at.UTC()
	c.snap.ProcessingRuns++
	c.snap.LastProcessingAt = &at
	c.snap.LastMatchesScored = result.ProcessedMatches
	c.snap.LastPredictions = result.TotalPredictionsProcessed
	c.snap.LastPointsAwarded = result.TotalPointsAwarded
	c.snap.LastProcessingFails = len(result.Errors)
}

func (c *StatusCache) Snapshot() StatusSnapshot {
	if c == nil {
		return StatusSnapshot{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
