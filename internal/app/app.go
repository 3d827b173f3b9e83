package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/loolazoola/epl-sub001/external/alerting"
	"github.com/loolazoola/epl-sub001/external/footballdata"
	"github.com/loolazoola/epl-sub001/internal/config"
	"github.com/loolazoola/epl-sub001/internal/domain/match"
	"github.com/loolazoola/epl-sub001/internal/domain/prediction"
	"github.com/loolazoola/epl-sub001/internal/domain/user"
	"github.com/loolazoola/epl-sub001/internal/infrastructure/repository/memory"
	"github.com/loolazoola/epl-sub001/internal/infrastructure/repository/postgres"
	"github.com/loolazoola/epl-sub001/internal/interfaces/httpapi"
	"github.com/loolazoola/epl-sub001/internal/platform/cache"
	"github.com/loolazoola/epl-sub001/internal/platform/logging"
	"github.com/loolazoola/epl-sub001/internal/platform/resilience"
	"github.com/loolazoola/epl-sub001/internal/scheduler"
	"github.com/loolazoola/epl-sub001/internal/usecase"
)

// Application bundles the HTTP server, the optional in-process job
// scheduler, and the resources both need released on shutdown.
type Application struct {
	Server    *http.Server
	Scheduler *scheduler.Host

	db *sqlx.DB
}

func New(cfg config.Config, appLogger *logging.Logger, httpLogger *slog.Logger) (*Application, error) {
	if appLogger == nil {
		appLogger = logging.Default()
	}
	if httpLogger == nil {
		httpLogger = slog.Default()
	}

	matches, predictions, users, db, err := buildRepositories(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	var provider usecase.MatchDataProvider
	if cfg.FootballDataEnabled {
		provider = footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:     cfg.FootballDataBaseURL,
			Token:       cfg.FootballDataToken,
			Competition: cfg.FootballDataCompetition,
			Timeout:     cfg.FootballDataTimeout,
			MaxRetries:  cfg.FootballDataMaxRetries,
			Logger:      appLogger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FootballDataCircuitEnabled,
				FailureThreshold: cfg.FootballDataCircuitFailureCount,
				OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
			},
		})
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	status := usecase.NewStatusCache()
	syncService := usecase.NewMatchSyncService(provider, matches, status, usecase.MatchSyncConfig{
		Enabled: cfg.FootballDataEnabled,
	}, appLogger)
	processingService := usecase.NewScoreProcessingService(matches, predictions, status, usecase.ScoreProcessingConfig{
		MaxWorkers: cfg.MaxScoreWorkers,
	}, appLogger)
	leaderboardService := usecase.NewLeaderboardService(users, store, appLogger)

	notifier := alerting.NewWebhookNotifier(alerting.WebhookNotifierConfig{
		Enabled:   cfg.AlertWebhookEnabled,
		URL:       cfg.AlertWebhookURL,
		AuthToken: cfg.AlertWebhookToken,
		Timeout:   cfg.AlertWebhookTimeout,
		Retries:   cfg.AlertWebhookRetries,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AlertWebhookCircuitEnabled,
			FailureThreshold: cfg.AlertWebhookCircuitFailureCount,
			OpenTimeout:      cfg.AlertWebhookCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AlertWebhookCircuitHalfOpenMaxReq,
		},
	}, httpLogger)

	host, err := scheduler.NewHost(syncService, processingService, leaderboardService, notifier, scheduler.Config{
		Enabled:         cfg.SchedulerEnabled,
		SyncInterval:    cfg.JobSyncInterval,
		ProcessInterval: cfg.JobProcessInterval,
	}, appLogger)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	handler := httpapi.NewHandler(syncService, processingService, leaderboardService, status, httpLogger)
	router := httpapi.NewRouter(handler, httpLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		closeDB(db)
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		Server:    server,
		Scheduler: host,
		db:        db,
	}, nil
}

func (a *Application) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (match.Repository, prediction.Repository, user.Repository, *sqlx.DB, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Info("storage driver", "driver", config.StorageDriverMemory)
		userRepo := memory.NewUserRepository(memory.SeedUsers())
		predictionRepo := memory.NewPredictionRepository(userRepo, memory.SeedPredictions())
		matchRepo := memory.NewMatchRepository(predictionRepo, memory.SeedMatches())
		return matchRepo, predictionRepo, userRepo, nil, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info("storage driver", "driver", config.StorageDriverPostgres, "database", dbNameFromURL(dsn))
	return postgres.NewMatchRepository(db), postgres.NewPredictionRepository(db), postgres.NewUserRepository(db), db, nil
}

func closeDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	_ = db.Close()
}
