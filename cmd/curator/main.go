package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/robfig/cron/v3"

	"github.com/qepting91/reddit-curator/internal/collector"
	"github.com/qepting91/reddit-curator/internal/config"
	"github.com/qepting91/reddit-curator/internal/dashboard"
	"github.com/qepting91/reddit-curator/internal/delivery"
	"github.com/qepting91/reddit-curator/internal/health"
	"github.com/qepting91/reddit-curator/internal/history"
	"github.com/qepting91/reddit-curator/internal/ingest"
	"github.com/qepting91/reddit-curator/internal/metrics"
	"github.com/qepting91/reddit-curator/internal/runner"
)

type cli struct {
	Run    runCmd    `cmd:"" help:"Execute one selection cycle and exit."`
	Serve  serveCmd  `cmd:"" help:"Run on the configured schedule with metrics and dashboard."`
	Health healthCmd `cmd:"" help:"Print the store health status."`
}

type app struct {
	cfg *config.Config
	log *slog.Logger
}

type (
	runCmd    struct{}
	serveCmd  struct{}
	healthCmd struct{}
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration failed", "err", err)
		os.Exit(1)
	}
	if len(cfg.Sources) == 0 {
		if sources, err := ingest.LoadSources(cfg.SourcesFile); err == nil {
			cfg.Sources = sources
		}
	}

	kctx := kong.Parse(&cli{},
		kong.Name("curator"),
		kong.Description("Picks one reddit image post per cycle and publishes it to a telegram channel."),
	)
	if err := kctx.Run(&app{cfg: cfg, log: logger}); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func (c *runCmd) Run(a *app) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, store, err := buildRunner(a)
	if err != nil {
		return err
	}
	defer store.Close()

	return r.Run(ctx)
}

func (c *serveCmd) Run(a *app) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, store, err := buildRunner(a)
	if err != nil {
		return err
	}
	defer store.Close()

	met := r.Metrics()
	go func() {
		a.log.Info("metrics listening", "port", a.cfg.MetricsPort)
		if err := met.ListenAndServe(ctx, a.cfg.MetricsPort); err != nil {
			a.log.Error("metrics server failed", "err", err)
		}
	}()
	go func() {
		a.log.Info("dashboard listening", "port", a.cfg.DashboardPort)
		if err := dashboard.ListenAndServe(ctx, store, a.cfg.DashboardPort); err != nil {
			a.log.Error("dashboard failed", "err", err)
		}
	}()

	sched := cron.New()
	_, err = sched.AddFunc(a.cfg.Schedule, func() {
		// A failed run is logged and waits for the next trigger; it
		// never takes the process down.
		if err := r.Run(ctx); err != nil {
			a.log.Error("run failed", "err", err)
			met.RunErrors.Inc()
		}
	})
	if err != nil {
		return fmt.Errorf("bad schedule %q: %w", a.cfg.Schedule, err)
	}

	a.log.Info("scheduler started", "schedule", a.cfg.Schedule,
		"sources", len(a.cfg.Sources), "collector", a.cfg.CollectorMode)
	sched.Start()

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	stopCtx := sched.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		a.log.Warn("gave up waiting for the running job")
	}
	return nil
}

func (c *healthCmd) Run(a *app) error {
	store, err := history.OpenSQLite(a.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	report := health.Evaluate(context.Background(), store, time.Now())
	fmt.Printf("%s: %s\n", report.Status, report.Reason)
	if report.Status == health.Unhealthy {
		return fmt.Errorf("store unhealthy")
	}
	return nil
}

func buildRunner(a *app) (*runner.Runner, history.Store, error) {
	store, err := history.OpenSQLite(a.cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history store: %w", err)
	}

	col, err := collector.New(a.cfg)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("initializing collector: %w", err)
	}
	a.log.Info("collector initialized", "mode", a.cfg.CollectorMode)

	sink := delivery.NewTelegramSink(a.cfg.TelegramToken, a.cfg.TelegramChat)
	met := metrics.New()

	return runner.New(a.cfg, a.log, store, col, sink, met, nil), store, nil
}
