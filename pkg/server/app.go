package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	models "PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	"PairPull/internal/usecase"
	pkgch "PairPull/pkg/clickhouse"
	"PairPull/pkg/config"
	xhttp "PairPull/pkg/http"
	pkgkafka "PairPull/pkg/kafka"
	applogger "PairPull/pkg/logger"
	"PairPull/pkg/queue"
)

// App encapsulates the entire application lifecycle: the daily trading
// cycle scheduler, the read-only HTTP API, the journal ingest consumer,
// and the optional quote monitor.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	lifecycle *usecase.Lifecycle
	monitor   *usecase.QuoteMonitor
	consumer  *pkgkafka.Consumer
	handlers  []pkgkafka.MessageHandler
	journal   drepo.Journal
	chClient  *pkgch.Client
	alerts    *queue.RedisQueue

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler

	cycleMu sync.Mutex
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	lifecycle *usecase.Lifecycle,
	monitor *usecase.QuoteMonitor,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	journal drepo.Journal,
	chClient *pkgch.Client,
	alerts *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		lifecycle: lifecycle,
		monitor:   monitor,
		consumer:  consumer,
		handlers:  handlers,
		journal:   journal,
		chClient:  chClient,
		alerts:    alerts,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted or, in run-once
// mode, until the single cycle completes.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start consumers if configured (journal backend "kafka" ingests the
	// published events back into ClickHouse so reads stay in one place).
	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
			l.Info("kafka consumer handler registered", applogger.String("topic", h.Topic()))
		}
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
	}

	// Start incident queue (producer+consumer; workers drain alerts)
	if a.alerts != nil {
		if err := a.alerts.Start(); err != nil {
			l.Warn("alert queue start error", applogger.Error(err))
		}
	}

	// Start quote monitor
	if a.monitor != nil {
		if err := a.monitor.Start(ctx); err != nil {
			l.Warn("quote monitor start error", applogger.Error(err))
		} else {
			l.Info("quote monitor started",
				applogger.String("lead", a.cfg.Strategy.Lead),
				applogger.String("lag", a.cfg.Strategy.Lag))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Scheduler.RunOnce {
		a.runCycle(ctx)
		l.Info("run-once cycle complete")
		return a.shutdown(ctx)
	}

	go a.schedule(ctx)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// schedule runs the trading cycle immediately and then on every tick.
func (a *App) schedule(ctx context.Context) {
	a.runCycle(ctx)

	ticker := time.NewTicker(a.cfg.Scheduler.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runCycle(ctx)
		}
	}
}

// runCycle executes one cycle. Overlapping runs are skipped rather than
// queued: two concurrent cycles could each open a position.
func (a *App) runCycle(ctx context.Context) {
	if !a.cycleMu.TryLock() {
		a.logger.Warn("cycle still running, skipping tick")
		return
	}
	defer a.cycleMu.Unlock()

	res, err := a.lifecycle.RunCycle(ctx)
	a.reportIncident(ctx, res)
	if err != nil {
		a.logger.Error("cycle error",
			applogger.String("action", res.Action),
			applogger.String("reason", res.Reason),
			applogger.Error(err))
		return
	}
	a.logger.Info("cycle complete",
		applogger.String("action", res.Action),
		applogger.String("state", string(res.State)),
		applogger.Bool("signal", res.Signal))
}

// reportIncident pushes inconsistent outcomes onto the alert queue.
func (a *App) reportIncident(ctx context.Context, res usecase.CycleResult) {
	if a.alerts == nil || res.State != models.StateInconsistent {
		return
	}
	inc := usecase.Incident{Date: res.Date, State: string(res.State), Reason: res.Reason}
	if err := a.alerts.Enqueue(ctx, "incident", inc); err != nil {
		a.logger.Warn("alert enqueue error", applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Stop quote monitor
	if a.monitor != nil {
		if err := a.monitor.Stop(); err != nil {
			l.Warn("quote monitor stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop alert queue
	if a.alerts != nil {
		if err := a.alerts.Stop(shutdownCtx); err != nil {
			l.Warn("alert queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close journal (flushes the publisher for the kafka backend)
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			l.Warn("journal close error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
