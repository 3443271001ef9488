package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/yungbote/langbridge-backend/internal/config"
	httpapi "github.com/yungbote/langbridge-backend/internal/http"
	httpH "github.com/yungbote/langbridge-backend/internal/http/handlers"
	"github.com/yungbote/langbridge-backend/internal/modules/curation"
	"github.com/yungbote/langbridge-backend/internal/observability"
	"github.com/yungbote/langbridge-backend/internal/platform/envutil"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Config   *config.Config
	Pipeline *curation.Pipeline
	Metrics  *observability.Metrics
	Server   *httpapi.Server

	otelShutdown func(context.Context) error
	draining     atomic.Bool
}

// New loads configuration from the environment and wires the service.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.NewWithOptions(cfg.Env, logger.Options{
		Level:           cfg.LogLevel,
		DisableRedacted: !envutil.Bool("LOG_REDACTION_ENABLED", true),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return build(ctx, cfg, log)
}

// initTracing is swapped in tests; the real provider is process-global.
var initTracing = observability.InitOTel

func build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	otelShutdown := initTracing(ctx, log, cfg.Env, cfg.Telemetry)
	metrics := observability.NewMetrics()

	engine, err := NewEngine(cfg.LLM)
	if err != nil {
		if serr := otelShutdown(ctx); serr != nil {
			log.Warn("otel shutdown failed", "error", serr)
		}
		log.Sync()
		return nil, fmt.Errorf("init llm engine: %w", err)
	}
	log.Info("llm engine ready",
		"engine", cfg.LLM.Engine,
		"base_url", cfg.LLM.BaseURL,
		"model", cfg.LLM.Model,
		"max_retries", cfg.LLM.MaxRetries,
		"has_credentials", cfg.LLM.APIKey != "",
	)
	if cfg.LLM.Engine == config.EngineDisabled {
		log.Warn("llm upstream disabled; every response will use synthesized resources")
	}

	pipeline := curation.NewPipeline(
		curation.ConfigFrom(cfg),
		instrumentEngine(cfg.LLM.Model, engine, metrics),
		curation.NewSynthesizer(nil),
		log,
		curation.WithObserver(metrics),
	)

	a := &App{
		Log:          log,
		Config:       cfg,
		Pipeline:     pipeline,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}
	a.Server = httpapi.NewServer(httpapi.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
	}, httpapi.RouterConfig{
		Log:             log,
		ServiceName:     cfg.Telemetry.ServiceName,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		Metrics:         metrics,
		CurationHandler: httpH.NewCurationHandler(log, pipeline),
		PathwayHandler:  httpH.NewPathwayHandler(curation.Pathway),
		HealthHandler:   httpH.NewHealthHandler(a.ready),
	})
	return a, nil
}

// ready stays true with a disabled upstream: synthesized resources are still a valid answer.
func (a *App) ready() (bool, string) {
	if a.draining.Load() {
		return false, "shutting down"
	}
	return true, ""
}

// Run serves until ctx is cancelled, then drains in-flight requests within the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http server listening", "addr", a.Server.Addr())
		errCh <- a.Server.Run()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("shutting down")
		return a.Close()
	case err := <-errCh:
		_ = a.Close()
		return err
	}
}

func (a *App) Close() error {
	timeout := a.Config.HTTP.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	a.draining.Store(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := a.Server.Shutdown(shutdownCtx)
	if a.otelShutdown != nil {
		if oerr := a.otelShutdown(shutdownCtx); oerr != nil {
			a.Log.Warn("otel shutdown failed", "error", oerr)
		}
	}
	a.Log.Sync()
	return err
}
