package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/optionswing/config"
	"github.com/alejandrodnm/optionswing/internal/adapters/alpaca"
	"github.com/alejandrodnm/optionswing/internal/adapters/notify"
	"github.com/alejandrodnm/optionswing/internal/adapters/storage"
	"github.com/alejandrodnm/optionswing/internal/engine"
	"github.com/alejandrodnm/optionswing/internal/options"
	"github.com/alejandrodnm/optionswing/internal/ports"
	"github.com/alejandrodnm/optionswing/internal/universe"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one trade+risk cycle, print tables and exit")
	dryRun := flag.Bool("dry-run", false, "log intended orders without submitting them")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("optionswing starting",
		"config", *configPath,
		"trade_interval", cfg.TradeInterval(),
		"risk_interval", cfg.RiskInterval(),
		"dry_run", *dryRun,
		"once", *once,
	)

	client := alpaca.NewClient(cfg.API.KeyID, cfg.API.SecretKey, cfg.API.TradingBase, cfg.API.DataBase)

	var journal ports.Journal
	if !*dryRun {
		j, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer j.Close()
		journal = j
	}

	console := notify.NewConsole()
	var notifier ports.Notifier = notify.NewDiscord(cfg.Notify.WebhookURL)
	if *once || *dryRun {
		notifier = console
	}

	engCfg := engine.Config{
		RiskPerTrade:  cfg.Trading.RiskPerTrade,
		StopLossPct:   cfg.Trading.StopLossPct,
		TradeInterval: cfg.TradeInterval(),
		RiskInterval:  cfg.RiskInterval(),
		Universe: universe.Config{
			TopN:          cfg.Universe.TopN,
			MinPrice:      cfg.Universe.MinPrice,
			MaxPrice:      cfg.Universe.MaxPrice,
			MinVolume:     cfg.Universe.MinVolume,
			MaxBarAgeDays: cfg.Universe.MaxBarAgeDays,
			Exchanges:     cfg.Universe.Exchanges,
		},
		Options: options.Config{
			MinDaysToExpiry: cfg.Options.MinDaysToExpiry,
			MinPrice:        cfg.Options.MinPrice,
			MinVolume:       cfg.Options.MinVolume,
		},
		UniverseRefreshAt: cfg.Schedule.UniverseRefresh,
		DailySummaryAt:    cfg.Schedule.DailySummary,
		DryRun:            *dryRun,
	}

	e := engine.New(engCfg, client, client, journal, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		runOnce(ctx, e, client, console)
		return
	}

	if err := e.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	// Última notificación antes de salir, con un contexto fresco porque el
	// del loop ya está cancelado.
	if err := notifier.Notify(context.Background(), "🛑 optionswing stopped"); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	slog.Info("optionswing stopped cleanly")
}

func runOnce(ctx context.Context, e *engine.Engine, client *alpaca.Client, console *notify.Console) {
	if err := e.RunOnce(ctx); err != nil {
		slog.Error("cycle failed", "err", err)
		os.Exit(1)
	}

	console.PrintUniverse(e.UniverseCandidates())

	positions, err := client.ListPositions(ctx)
	if err != nil {
		slog.Warn("failed to list positions", "err", err)
		return
	}
	console.PrintPositions(positions)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
