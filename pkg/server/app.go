package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SignalFuse/internal/domain/repository"
	"SignalFuse/internal/usecase"
	"SignalFuse/pkg/config"
	xhttp "SignalFuse/pkg/http"
	pkgkafka "SignalFuse/pkg/kafka"
	applogger "SignalFuse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	collector  *usecase.PriceCollector
	store      repository.AnalysisStore
	producer   *pkgkafka.Producer
	cacheClose func() error
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. The collector,
// store, producer, and cache closer may be nil when their backing
// infrastructure is disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.PriceCollector,
	store repository.AnalysisStore,
	producer *pkgkafka.Producer,
	cacheClose func() error,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		handler:    handler,
		collector:  collector,
		store:      store,
		producer:   producer,
		cacheClose: cacheClose,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.logger.Error("price collector error", applogger.Error(err))
			}
		}()
		a.logger.Info("price collector started", applogger.Strings("symbols", a.cfg.Binance.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.String("environment", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.logger.Warn("price collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("analysis store close error", applogger.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.cacheClose != nil {
		if err := a.cacheClose(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}
	a.logger.RemoveCollector()

	a.logger.Info("shutdown complete")
	return nil
}
