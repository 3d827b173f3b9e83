package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/loolazoola/epl-sub001/internal/domain/match"
	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
	"github.com/loolazoola/epl-sub001/internal/domain/scoring"
	"github.com/loolazoola/epl-sub001/internal/platform/logging"
)

type ProcessingResult struct {
	RunID                     string      `json:"run_id"`
	ProcessedMatches          int         `json:"processed_matches"`
	TotalPredictionsProcessed int         `json:"total_predictions_processed"`
	TotalPointsAwarded        int         `json:"total_points_awarded"`
	WorkerCount               int         `json:"worker_count"`
	Errors                    []ItemError `json:"errors"`
	DurationMs                int64       `json:"duration_ms"`
}

// ProcessingStats reports repository-backed counts for status callers.
type ProcessingStats struct {
	TotalMatches           int `json:"total_matches"`
	FinishedMatches        int `json:"finished_matches"`
	ProcessedPredictions   int `json:"processed_predictions"`
	UnprocessedPredictions int `json:"unprocessed_predictions"`
	TotalPointsAwarded     int `json:"total_points_awarded"`
}

type ScoreProcessingConfig struct {
	MaxWorkers int
}

type ScoreProcessingService struct {
	matches     match.Repository
	predictions prediction.Repository
	status      *StatusCache
	cfg         ScoreProcessingConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewScoreProcessingService(
	matches match.Repository,
	predictions prediction.Repository,
	status *StatusCache,
	cfg ScoreProcessingConfig,
	logger *logging.Logger,
) *ScoreProcessingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoreProcessingService{
		matches:     matches,
		predictions: predictions,
		status:      status,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

type matchScoringOutcome struct {
	matchKey             string
	predictionsProcessed int
	pointsAwarded        int
	errors               []ItemError
}

// ProcessAllFinishedMatches scores every unprocessed prediction on every
// finished match. Each prediction is settled through a conditional claim
// that credits the user in the same atomic write, so re-invoking the
// operation, including concurrently, never awards points twice and never
// leaves a claimed prediction without its credit.
func (s *ScoreProcessingService) ProcessAllFinishedMatches(ctx context.Context) (ProcessingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreProcessingService.ProcessAllFinishedMatches")
	defer span.End()

	if s.matches == nil || s.predictions == nil {
		return ProcessingResult{}, fmt.Errorf("%w: score processing is not fully configured", ErrDependencyUnavailable)
	}

	start := s.now()
	result := ProcessingResult{RunID: uuid.NewString()}

	pending, err := s.matches.ListFinishedWithUnprocessed(ctx)
	if err != nil {
		return ProcessingResult{}, fmt.Errorf("list finished matches with unprocessed predictions: %w", err)
	}

	workerCount := normalizeWorkerCount(s.cfg.MaxWorkers, len(pending))
	result.WorkerCount = workerCount
	if len(pending) == 0 {
		result.DurationMs = s.now().Sub(start).Milliseconds()
		s.recordRun(result, start)
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ProcessingResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make(chan matchScoringOutcome, len(pending))

	var processedMatches atomic.Int32
	var predictionsProcessed atomic.Int32
	var pointsAwarded atomic.Int32

	var workers sync.WaitGroup
	for _, m := range pending {
		m := m
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome := s.scoreMatch(ctx, m)
			if outcome.predictionsProcessed > 0 {
				processedMatches.Add(1)
			}
			predictionsProcessed.Add(int32(outcome.predictionsProcessed))
			pointsAwarded.Add(int32(outcome.pointsAwarded))
			outcomes <- outcome
		}); err != nil {
			workers.Done()
			return ProcessingResult{}, fmt.Errorf("submit match to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(outcomes)

	collected := make([]matchScoringOutcome, 0, len(pending))
	for outcome := range outcomes {
		collected = append(collected, outcome)
	}
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].matchKey < collected[j].matchKey
	})
	for _, outcome := range collected {
		result.Errors = append(result.Errors, outcome.errors...)
	}

	result.ProcessedMatches = int(processedMatches.Load())
	result.TotalPredictionsProcessed = int(predictionsProcessed.Load())
	result.TotalPointsAwarded = int(pointsAwarded.Load())
	result.DurationMs = s.now().Sub(start).Milliseconds()
	s.recordRun(result, start)

	s.logger.InfoContext(ctx, "score processing finished",
		"run_id", result.RunID,
		"matches", result.ProcessedMatches,
		"predictions", result.TotalPredictionsProcessed,
		"points", result.TotalPointsAwarded,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (s *ScoreProcessingService) scoreMatch(ctx context.Context, m match.Match) matchScoringOutcome {
	outcome := matchScoringOutcome{matchKey: fmt.Sprintf("match_id=%d", m.ID)}

	if !m.HasFinalScore() {
		outcome.errors = append(outcome.errors, ItemError{
			Key:     outcome.matchKey,
			Message: "finished match has no full-time score",
		})
		return outcome
	}
	finalHome, finalAway := *m.HomeScore, *m.AwayScore

	unprocessed, err := s.predictions.ListUnprocessedByMatch(ctx, m.ID)
	if err != nil {
		outcome.errors = append(outcome.errors, ItemError{
			Key:     outcome.matchKey,
			Message: fmt.Sprintf("list unprocessed predictions: %v", err),
		})
		return outcome
	}

	for _, p := range unprocessed {
		award := scoring.CalculatePoints(p.PredictedHome, p.PredictedAway, finalHome, finalAway)

		settled, err := s.predictions.Settle(ctx, p.ID, p.UserID, award.Points, s.now().UTC())
		if err != nil {
			outcome.errors = append(outcome.errors, ItemError{
				Key:     fmt.Sprintf("prediction_id=%d", p.ID),
				Message: fmt.Sprintf("settle prediction: %v", err),
			})
			s.logger.ErrorContext(ctx, "settle prediction failed",
				"match_id", m.ID, "prediction_id", p.ID, "user_id", p.UserID, "error", err)
			continue
		}
		if !settled {
			// Another run already scored this prediction.
			continue
		}

		outcome.predictionsProcessed++
		outcome.pointsAwarded += award.Points
	}

	return outcome
}

func (s *ScoreProcessingService) GetProcessingStats(ctx context.Context) (ProcessingStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreProcessingService.GetProcessingStats")
	defer span.End()

	if s.matches == nil || s.predictions == nil {
		return ProcessingStats{}, fmt.Errorf("%w: score processing is not fully configured", ErrDependencyUnavailable)
	}

	matchCounts, err := s.matches.Counts(ctx)
	if err != nil {
		return ProcessingStats{}, fmt.Errorf("count matches: %w", err)
	}
	predictionCounts, err := s.predictions.Counts(ctx)
	if err != nil {
		return ProcessingStats{}, fmt.Errorf("count predictions: %w", err)
	}

	return ProcessingStats{
		TotalMatches:           matchCounts.Total,
		FinishedMatches:        matchCounts.Finished,
		ProcessedPredictions:   predictionCounts.Processed,
		UnprocessedPredictions: predictionCounts.Unprocessed,
		TotalPointsAwarded:     predictionCounts.PointsAwarded,
	}, nil
}

func (s *ScoreProcessingService) HasUnprocessedMatches(ctx context.Context) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreProcessingService.HasUnprocessedMatches")
	defer span.End()

	if s.matches == nil {
		return false, fmt.Errorf("%w: score processing is not fully configured", ErrDependencyUnavailable)
	}

	pending, err := s.matches.ListFinishedWithUnprocessed(ctx)
	if err != nil {
		return false, fmt.Errorf("list finished matches with unprocessed predictions: %w", err)
	}
	return len(pending) > 0, nil
}

func (s *ScoreProcessingService) recordRun(result ProcessingResult, at time.Time) {
	if s.status == nil {
		return
	}
	s.status.RecordProcessing(result, at)
}

func normalizeWorkerCount(requested, tasks int) int {
	const defaultWorkers = 4
	const maxWorkers = 16

	workers := requested
	if workers < 1 {
		workers = defaultWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if tasks > 0 && workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
