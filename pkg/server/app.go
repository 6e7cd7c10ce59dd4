package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"FxPilot/internal/usecase"
	"FxPilot/pkg/config"
	xhttp "FxPilot/pkg/http"
	pkgkafka "FxPilot/pkg/kafka"
	applogger "FxPilot/pkg/logger"
)

// App encapsulates the entire application lifecycle. Optional components are
// nil when their feature is disabled in config.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	autopilot  *usecase.Autopilot
	monitor    *usecase.Monitor
	collector  *usecase.TickCollector
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler

	wg sync.WaitGroup
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	autopilot *usecase.Autopilot,
	monitor *usecase.Monitor,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		autopilot:  autopilot,
		monitor:    monitor,
		collector:  collector,
		consumer:   consumer,
		kh:         kh,
	}
}

// Run starts the application and blocks until interrupted or the HTTP server
// fails.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.autopilot.Run(ctx); err != nil {
			a.log.Error("autopilot error", applogger.Error(err))
		}
	}()
	a.log.Info("autopilot supervisor started",
		applogger.Strings("symbols", a.cfg.Autopilot.Symbols),
		applogger.Duration("interval", a.cfg.Autopilot.Interval),
	)

	if a.monitor != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.monitor.Start(ctx)
		}()
	}

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("tick collector error", applogger.Error(err))
			}
		}()
		a.log.Info("tick collector started")
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(ctx); err != nil {
			a.log.Error("kafka consumer error", applogger.Error(err))
		} else {
			a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
		}
	}

	serveErr := a.httpServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case s := <-sigCh:
		a.log.Info("shutdown signal received", applogger.String("signal", s.String()))
	case err := <-serveErr:
		if err != nil {
			a.log.Error("http server error", applogger.Error(err))
			runErr = err
		}
	}

	cancel()
	a.shutdown()
	return runErr
}

// shutdown stops inbound traffic first, then waits for background loops.
func (a *App) shutdown() {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() { a.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.log.Warn("background loops did not stop in time")
	}

	a.log.Info("shutdown complete")
}
