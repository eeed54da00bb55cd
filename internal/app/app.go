package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/sports-scoreboard/external/espn"
	"github.com/riskibarqy/sports-scoreboard/internal/config"
	"github.com/riskibarqy/sports-scoreboard/internal/interfaces/httpapi"
	"github.com/riskibarqy/sports-scoreboard/internal/observability"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/query"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/resilience"
	"github.com/riskibarqy/sports-scoreboard/internal/usecase"
)

// App holds the wired HTTP server and the query cache backing it.
type App struct {
	Server     *http.Server
	Scoreboard *usecase.ScoreboardService

	cfg    config.Config
	cache  *query.Cache
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	cache, err := query.NewCache(query.Config{
		Workers:    cfg.QueryWorkers,
		MaxEntries: cfg.QueryMaxEntries,
		Logger:     logger,
		Meter:      observability.Meter(),
	})
	if err != nil {
		return nil, fmt.Errorf("build query cache: %w", err)
	}

	espnClient := espn.NewClient(espn.ClientConfig{
		BaseURL: cfg.ESPNBaseURL,
		Timeout: cfg.ESPNTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	scoreboardSvc := usecase.NewScoreboardService(espnClient, cache, usecase.ScoreboardConfig{
		ScoreboardStaleTime: cfg.QueryScoreboardStaleTime,
		SummaryStaleTime:    cfg.QuerySummaryStaleTime,
		Retry:               cfg.QueryMaxRetries,
		Logger:              logger.Named("scoreboard"),
	})

	handler := httpapi.NewHandler(scoreboardSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Scoreboard: scoreboardSvc,
		cfg:        cfg,
		cache:      cache,
		logger:     logger,
	}, nil
}

// Warmup prefetches today's scoreboards when enabled. Failures are logged and
// left in the cache for the first request to retry.
func (a *App) Warmup(ctx context.Context) {
	if !a.cfg.PrefetchEnabled {
		a.logger.Info("scoreboard prefetch disabled", "reason", "PREFETCH_ENABLED=false")
		return
	}
	if err := a.Scoreboard.Prefetch(ctx); err != nil {
		a.logger.WarnContext(ctx, "scoreboard prefetch failed", "error", err)
	}
}

// Close releases the background fetch workers.
func (a *App) Close() {
	a.cache.Close()
}
