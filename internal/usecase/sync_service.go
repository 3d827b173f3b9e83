package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
	"github.com/loolazoola/epl-sub001/internal/platform/logging"
)

// MatchDataProvider is the boundary to the external football-data feed.
type MatchDataProvider interface {
	FetchMatches(ctx context.Context, window DateWindow) ([]ExternalMatch, error)
}

// DateWindow optionally bounds a feed fetch. Zero values mean unbounded.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// ExternalMatch is a single feed entry before reconciliation.
type ExternalMatch struct {
	ExternalID int64
	HomeTeam   string
	AwayTeam   string
	HomeScore  *int
	AwayScore  *int
	Status     string
	KickoffAt  time.Time
	Gameweek   int
	Season     string
}

type SyncInput struct {
	DateFrom time.Time
	DateTo   time.Time
}

type SyncResult struct {
	RunID          string      `json:"run_id"`
	TotalMatches   int         `json:"total_matches"`
	NewMatches     int         `json:"new_matches"`
	UpdatedMatches int         `json:"updated_matches"`
	UnchangedCount int         `json:"unchanged_count"`
	SkippedCount   int         `json:"skipped_count"`
	Errors         []ItemError `json:"errors"`
	DurationMs     int64       `json:"duration_ms"`
}

// ItemError reports one failed item inside an otherwise successful run.
type ItemError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

type MatchSyncConfig struct {
	Enabled bool
}

type MatchSyncService struct {
	provider MatchDataProvider
	matches  match.Repository
	status   *StatusCache
	cfg      MatchSyncConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewMatchSyncService(
	provider MatchDataProvider,
	matches match.Repository,
	status *StatusCache,
	cfg MatchSyncConfig,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchSyncService{
		provider: provider,
		matches:  matches,
		status:   status,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncMatchData fetches a window of feed matches and reconciles them into
// the match repository. Item-level failures are collected in the result;
// the run fails outright only when no data could be retrieved at all.
func (s *MatchSyncService) SyncMatchData(ctx context.Context, input SyncInput) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.SyncMatchData")
	defer span.End()

	start := s.now()
	result := SyncResult{RunID: uuid.NewString()}

	if !s.cfg.Enabled || s.provider == nil {
		s.logger.WarnContext(ctx, "skip match sync: feed is not configured", "run_id", result.RunID)
		result.Errors = append(result.Errors, ItemError{
			Key:     "config",
			Message: "match data feed is not configured",
		})
		result.DurationMs = s.now().Sub(start).Milliseconds()
		s.recordRun(result, start)
		return result, nil
	}
	if s.matches == nil {
		return SyncResult{}, fmt.Errorf("%w: match repository is not configured", ErrDependencyUnavailable)
	}

	entries, err := s.provider.FetchMatches(ctx, DateWindow{From: input.DateFrom, To: input.DateTo})
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch matches from feed: %w", err)
	}

	result.TotalMatches = len(entries)
	for _, entry := range entries {
		key := fmt.Sprintf("external_id=%d", entry.ExternalID)

		if err := validateFeedEntry(entry); err != nil {
			result.SkippedCount++
			result.Errors = append(result.Errors, ItemError{Key: key, Message: err.Error()})
			s.logger.WarnContext(ctx, "skip malformed feed entry", "run_id", result.RunID, "key", key, "error", err)
			continue
		}

		outcome, err := s.reconcile(ctx, entry)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Key: key, Message: err.Error()})
			s.logger.ErrorContext(ctx, "reconcile feed entry", "run_id", result.RunID, "key", key, "error", err)
			continue
		}

		switch outcome {
		case reconcileInserted:
			result.NewMatches++
		case reconcileUpdated:
			result.UpdatedMatches++
		default:
			result.UnchangedCount++
		}
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	s.recordRun(result, start)

	s.logger.InfoContext(ctx, "match sync finished",
		"run_id", result.RunID,
		"total", result.TotalMatches,
		"new", result.NewMatches,
		"updated", result.UpdatedMatches,
		"unchanged", result.UnchangedCount,
		"errors", len(result.Errors),
	)
	return result, nil
}

type reconcileOutcome int

const (
	reconcileUnchanged reconcileOutcome = iota
	reconcileInserted
	reconcileUpdated
)

func (s *MatchSyncService) reconcile(ctx context.Context, entry ExternalMatch) (reconcileOutcome, error) {
	incoming := feedEntryToMatch(entry)

	existing, found, err := s.matches.GetByExternalID(ctx, entry.ExternalID)
	if err != nil {
		return reconcileUnchanged, fmt.Errorf("look up match: %w", err)
	}

	if !found {
		if _, err := s.matches.Insert(ctx, incoming); err != nil {
			return reconcileUnchanged, fmt.Errorf("insert match: %w", err)
		}
		return reconcileInserted, nil
	}

	if !existing.DiffersFrom(incoming) {
		return reconcileUnchanged, nil
	}

	// Final results are settled once a match is FINISHED; predictions may
	// already have been scored against them. A divergent resend is ignored,
	// never applied.
	if match.IsFinishedStatus(existing.Status) {
		s.logger.WarnContext(ctx, "ignoring divergent feed resend for finished match",
			"external_id", entry.ExternalID,
			"match_id", existing.ID,
		)
		return reconcileUnchanged, nil
	}

	incoming.ID = existing.ID
	incoming.CreatedAt = existing.CreatedAt
	if err := s.matches.Update(ctx, incoming); err != nil {
		return reconcileUnchanged, fmt.Errorf("update match: %w", err)
	}
	return reconcileUpdated, nil
}

func (s *MatchSyncService) recordRun(result SyncResult, at time.Time) {
	if s.status == nil {
		return
	}
	s.status.RecordSync(result, at)
}

func validateFeedEntry(entry ExternalMatch) error {
	if entry.ExternalID <= 0 {
		return fmt.Errorf("%w: missing external id", ErrInvalidInput)
	}
	if strings.TrimSpace(entry.HomeTeam) == "" || strings.TrimSpace(entry.AwayTeam) == "" {
		return fmt.Errorf("%w: missing team names", ErrInvalidInput)
	}
	if entry.HomeScore != nil && *entry.HomeScore < 0 {
		return fmt.Errorf("%w: negative home score", ErrInvalidInput)
	}
	if entry.AwayScore != nil && *entry.AwayScore < 0 {
		return fmt.Errorf("%w: negative away score", ErrInvalidInput)
	}
	if match.IsFinishedStatus(entry.Status) && (entry.HomeScore == nil || entry.AwayScore == nil) {
		return fmt.Errorf("%w: finished match without full-time score", ErrInvalidInput)
	}
	return nil
}

func feedEntryToMatch(entry ExternalMatch) match.Match {
	return match.Match{
		ExternalID: entry.ExternalID,
		HomeTeam:   strings.TrimSpace(entry.HomeTeam),
		AwayTeam:   strings.TrimSpace(entry.AwayTeam),
		HomeScore:  entry.HomeScore,
		AwayScore:  entry.AwayScore,
		Status:     match.NormalizeStatus(entry.Status),
		KickoffAt:  entry.KickoffAt,
		Gameweek:   entry.Gameweek,
		Season:     entry.Season,
	}
}
