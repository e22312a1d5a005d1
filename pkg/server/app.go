package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/labstack/echo/v4"

	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	scheduler  *usecase.Scheduler
	settler    *usecase.Settler
	pub        domrepo.Publisher
	redisCache *cache.RedisCache
	chClient   *pkgch.Client
	l          *applogger.Logger

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	settler *usecase.Settler,
	pub domrepo.Publisher,
	redisCache *cache.RedisCache,
	chClient *pkgch.Client,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:        cfg,
		handler:    handler,
		scheduler:  scheduler,
		settler:    settler,
		pub:        pub,
		redisCache: redisCache,
		chClient:   chClient,
		l:          l,
	}
}

// Run starts the application and blocks until interrupted. The scheduler
// and settlement loops stop on cancellation but their in-flight pass runs
// to completion before the process exits.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.l),
		xhttp.WithMetricsPath(metricsPath),
	)
	a.httpServer.Echo().GET("/health", a.health)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.supervise(ctx, "scheduler", a.scheduler.Run)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.supervise(ctx, "settlement", a.settler.Run)
	}()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("engine started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Engine.Symbols),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	wg.Wait()
	return a.shutdown()
}

// supervise runs a background loop and logs if it ever returns before
// cancellation.
func (a *App) supervise(ctx context.Context, name string, run func(context.Context)) {
	run(ctx)
	if ctx.Err() == nil {
		a.l.Error("background loop exited unexpectedly", applogger.String("loop", name))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}

// health checks infrastructure dependencies.
func (a *App) health(c echo.Context) error {
	ctx := c.Request().Context()
	status := map[string]string{"status": "ok"}

	if err := a.redisCache.Client().Ping(ctx).Err(); err != nil {
		status["status"] = "degraded"
		status["redis"] = err.Error()
	}
	if a.chClient != nil {
		if err := a.chClient.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["clickhouse"] = err.Error()
		}
	}

	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
