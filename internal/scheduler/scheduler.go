package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/loolazoola/epl-sub001/external/alerting"
	"github.com/loolazoola/epl-sub001/internal/platform/logging"
	"github.com/loolazoola/epl-sub001/internal/usecase"
)

const jobTimeout = 5 * time.Minute

// Notifier receives alerts for runs that finished with errors.
type Notifier interface {
	Enabled() bool
	NotifyRun(ctx context.Context, alert alerting.RunAlert) error
}

type Config struct {
	Enabled         bool
	SyncInterval    time.Duration
	ProcessInterval time.Duration
}

// Host runs the periodic sync and score-processing jobs in-process. It
// is an alternative to triggering the internal job endpoints externally
// and stays disabled unless configured.
type Host struct {
	scheduler          gocron.Scheduler
	syncService        *usecase.MatchSyncService
	processingService  *usecase.ScoreProcessingService
	leaderboardService *usecase.LeaderboardService
	notifier           Notifier
	cfg                Config
	logger             *logging.Logger
}

func NewHost(
	syncService *usecase.MatchSyncService,
	processingService *usecase.ScoreProcessingService,
	leaderboardService *usecase.LeaderboardService,
	notifier Notifier,
	cfg Config,
	logger *logging.Logger,
) (*Host, error) {
	if logger == nil {
		logger = logging.Default()
	}

	host := &Host{
		syncService:        syncService,
		processingService:  processingService,
		leaderboardService: leaderboardService,
		notifier:           notifier,
		cfg:                cfg,
		logger:             logger,
	}
	if !cfg.Enabled {
		return host, nil
	}

	if cfg.SyncInterval <= 0 || cfg.ProcessInterval <= 0 {
		return nil, fmt.Errorf("scheduler intervals must be > 0")
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	host.scheduler = sched

	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.SyncInterval),
		gocron.NewTask(host.runSyncJob),
	); err != nil {
		return nil, fmt.Errorf("register sync job: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.ProcessInterval),
		gocron.NewTask(host.runProcessingJob),
	); err != nil {
		return nil, fmt.Errorf("register processing job: %w", err)
	}

	return host, nil
}

func (h *Host) Start() {
	if h.scheduler == nil {
		h.logger.Info("scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
		return
	}

	h.scheduler.Start()
	h.logger.Info("scheduler started",
		"sync_interval", h.cfg.SyncInterval.String(),
		"process_interval", h.cfg.ProcessInterval.String(),
	)
}

func (h *Host) Stop() error {
	if h.scheduler == nil {
		return nil
	}
	return h.scheduler.Shutdown()
}

func (h *Host) runSyncJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := h.syncService.SyncMatchData(ctx, usecase.SyncInput{})
	if err != nil {
		h.logger.ErrorContext(ctx, "scheduled match sync failed", "error", err)
		h.notify(ctx, alerting.RunAlert{
			Kind:       "match_sync",
			ErrorCount: 1,
			Details:    []string{err.Error()},
		})
		return
	}

	h.logger.InfoContext(ctx, "scheduled match sync finished",
		"run_id", result.RunID,
		"total", result.TotalMatches,
		"new", result.NewMatches,
		"updated", result.UpdatedMatches,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors),
	)
	if len(result.Errors) > 0 {
		h.notify(ctx, alerting.RunAlert{
			Kind:       "match_sync",
			RunID:      result.RunID,
			ErrorCount: len(result.Errors),
			Details:    itemErrorDetails(result.Errors),
		})
	}
}

func (h *Host) runProcessingJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := h.processingService.ProcessAllFinishedMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "scheduled score processing failed", "error", err)
		h.notify(ctx, alerting.RunAlert{
			Kind:       "score_processing",
			ErrorCount: 1,
			Details:    []string{err.Error()},
		})
		return
	}

	if h.leaderboardService != nil && result.TotalPredictionsProcessed > 0 {
		h.leaderboardService.Invalidate(ctx)
	}

	h.logger.InfoContext(ctx, "scheduled score processing finished",
		"run_id", result.RunID,
		"matches", result.ProcessedMatches,
		"predictions", result.TotalPredictionsProcessed,
		"points", result.TotalPointsAwarded,
		"errors", len(result.Errors),
	)
	if len(result.Errors) > 0 {
		h.notify(ctx, alerting.RunAlert{
			Kind:       "score_processing",
			RunID:      result.RunID,
			ErrorCount: len(result.Errors),
			Details:    itemErrorDetails(result.Errors),
		})
	}
}

func (h *Host) notify(ctx context.Context, alert alerting.RunAlert) {
	if h.notifier == nil || !h.notifier.Enabled() {
		return
	}
	if err := h.notifier.NotifyRun(ctx, alert); err != nil {
		h.logger.WarnContext(ctx, "run alert delivery failed", "kind", alert.Kind, "error", err)
	}
}

// Bounded so a pathological run cannot post an unbounded payload.
func itemErrorDetails(errs []usecase.ItemError) []string {
	const maxDetails = 20

	out := make([]string, 0, len(errs))
	for _, item := range errs {
		if len(out) == maxDetails {
			break
		}
		out = append(out, item.Key+": "+item.Message)
	}
	return out
}
