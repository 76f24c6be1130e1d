package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"jobradar/internal/config"
	"jobradar/internal/export"
	"jobradar/internal/model"
	"jobradar/internal/notify"
	"jobradar/internal/run"
	"jobradar/internal/scrape"
	"jobradar/internal/secrets"
	"jobradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Periodic job-listing radar",
	Long:  "JobRadar scrapes configured job boards on a schedule, dedups what it has already seen, and sends you a digest of new listings.",
	// Default to `start` so invoking the binary directly runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openStore opens the SQLite store behind a file lock so two processes never
// share the database. The returned release func unlocks and closes.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, func(), error) {
	lock := flock.New(cfg.Storage.DBPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, nil, fmt.Errorf("acquiring database lock: %w", err)
	}
	if !locked {
		return nil, nil, fmt.Errorf("database %s is in use by another jobradar process", cfg.Storage.DBPath)
	}

	s, err := store.NewSQLiteStore(cfg.Storage.DBPath, logger)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}

	release := func() {
		s.Close()
		lock.Unlock()
	}
	return s, release, nil
}

// smtpPassword resolves the SMTP password from keychain or environment.
// A missing password is not fatal here; the email channel fails closed.
func smtpPassword(cfg *config.Config, logger *slog.Logger) string {
	if !cfg.Notification.Email.Enabled {
		return ""
	}
	account := secrets.SMTPAccount(cfg.Notification.Email.Sender, cfg.Notification.Email.SMTPHost)
	pw, err := secrets.GetSMTPPassword(account)
	if err != nil {
		logger.Warn("smtp password not available", "error", err)
		return ""
	}
	return pw
}

// buildDispatcher wires the notification channels: email primary when
// enabled, log output otherwise; telegram rides along as secondary.
func buildDispatcher(cfg *config.Config, logger *slog.Logger) *notify.Dispatcher {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var primary notify.Channel
	var secondary []notify.Channel

	if cfg.Notification.Email.Enabled {
		primary = notify.NewEmailChannel(cfg.Notification.Email, smtpPassword(cfg, logger), logger)
		secondary = append(secondary, notify.NewLogChannel(logger))
	} else {
		primary = notify.NewLogChannel(logger)
	}

	if cfg.Notification.Telegram.Enabled {
		secondary = append(secondary, notify.NewTelegramChannel(cfg.Notification.Telegram, httpClient, logger))
	}

	logger.Info("dispatcher configured", "primary", primary.Name(), "secondary", len(secondary))
	return notify.NewDispatcher(primary, secondary, logger)
}

// newOrchestrator assembles the scrape client, adapters, dispatcher and
// exporter into a ready-to-run pipeline.
func newOrchestrator(cfg *config.Config, s model.Store, logger *slog.Logger) (*run.Orchestrator, error) {
	client := scrape.NewClient(cfg.Scrapers.RateLimit, cfg.Scrapers.MaxRetries, cfg.Scrapers.RespectRobots, logger)

	adapters := scrape.Build(cfg.Scrapers.Enabled, client, cfg.Scrapers, logger)
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no usable sources in scrapers.enabled (known: %v)", scrape.Available())
	}

	var exporter run.Exporter
	if cfg.Export.CSVEnabled {
		exporter = export.NewCSVExporter(cfg.Export.CSVPath)
	}

	opts := run.Options{
		Keywords:  cfg.Search.Keywords,
		Locations: cfg.Search.Locations,
		Tags:      cfg.Search.Tags,
		Timeout:   cfg.Scrapers.Timeout,
		Parallel:  cfg.Scrapers.Parallel,
		Export:    exporter,
	}
	return run.New(s, adapters, buildDispatcher(cfg, logger), opts, logger), nil
}
