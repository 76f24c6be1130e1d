package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobradar engine.
type Config struct {
	Search       SearchConfig
	Scrapers     ScraperConfig
	Scheduler    SchedulerConfig
	Notification NotificationConfig
	Storage      StorageConfig
	Export       ExportConfig
}

// SearchConfig holds the static search space. Keywords persisted via the
// CLI are merged in at run time, not here.
type SearchConfig struct {
	Keywords  []string
	Locations []string
	Tags      []string
}

// BoardConfig describes one company board for the adapters that fetch
// whole boards rather than running a query (greenhouse, lever).
type BoardConfig struct {
	Name  string `yaml:"name"`
	ATS   string `yaml:"ats"`
	Token string `yaml:"token"`
}

// ScraperConfig controls the shared HTTP discipline and which adapters run.
type ScraperConfig struct {
	Enabled       []string
	Boards        []BoardConfig
	RateLimit     time.Duration // base inter-request delay, jittered per request
	MaxRetries    int
	Timeout       time.Duration // per search call; a hung source is cut off here
	RespectRobots bool
	Parallel      bool // one goroutine per adapter when set
}

// SchedulerConfig controls the recurring run loop.
type SchedulerConfig struct {
	Interval time.Duration // parsed from fractional interval_hours
}

// NotificationConfig wires the delivery channels. Email is the primary
// channel; telegram is additive and never blocks the primary verdict.
type NotificationConfig struct {
	Email    EmailConfig
	Telegram TelegramConfig
}

// EmailConfig holds SMTP digest settings. The password comes from the OS
// keychain or the JOBRADAR_SMTP_PASSWORD env var, never from the file.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Sender     string   `yaml:"sender"`
	Recipients []string `yaml:"recipients"`
	SMTPHost   string   `yaml:"smtp_host"`
	SMTPPort   int      `yaml:"smtp_port"`
	SendEmpty  bool     `yaml:"send_empty"`
}

// TelegramConfig holds the optional secondary channel settings.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`   // expanded from env by Load
	ChatID  string `yaml:"chat_id"` // expanded from env by Load
}

// StorageConfig locates the fingerprint database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// ExportConfig controls the optional per-run CSV dump.
type ExportConfig struct {
	CSVEnabled bool   `yaml:"csv_enabled"`
	CSVPath    string `yaml:"csv_path"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as
// strings, interval as fractional hours).
type rawConfig struct {
	Search       rawSearchConfig    `yaml:"search"`
	Scrapers     rawScraperConfig   `yaml:"scrapers"`
	Scheduler    rawSchedulerConfig `yaml:"scheduler"`
	Notification NotificationConfig `yaml:"notification"`
	Storage      StorageConfig      `yaml:"storage"`
	Export       ExportConfig       `yaml:"export"`
}

type rawSearchConfig struct {
	Keywords  []string `yaml:"keywords"`
	Locations []string `yaml:"locations"`
	Tags      []string `yaml:"tags"`
}

type rawScraperConfig struct {
	Enabled       []string      `yaml:"enabled"`
	Boards        []BoardConfig `yaml:"boards"`
	RateLimit     string        `yaml:"rate_limit"`
	MaxRetries    int           `yaml:"max_retries"`
	Timeout       string        `yaml:"timeout"`
	RespectRobots *bool         `yaml:"respect_robots"`
	Parallel      bool          `yaml:"parallel"`
}

type rawSchedulerConfig struct {
	IntervalHours float64 `yaml:"interval_hours"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	rateLimit := 3 * time.Second
	if raw.Scrapers.RateLimit != "" {
		rateLimit, err = time.ParseDuration(raw.Scrapers.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("parse scrapers.rate_limit %q: %w", raw.Scrapers.RateLimit, err)
		}
	}

	timeout := 90 * time.Second
	if raw.Scrapers.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Scrapers.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse scrapers.timeout %q: %w", raw.Scrapers.Timeout, err)
		}
	}

	maxRetries := raw.Scrapers.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	respectRobots := true
	if raw.Scrapers.RespectRobots != nil {
		respectRobots = *raw.Scrapers.RespectRobots
	}

	intervalHours := raw.Scheduler.IntervalHours
	if intervalHours == 0 {
		intervalHours = 3
	}
	interval := time.Duration(intervalHours * float64(time.Hour))

	locations := raw.Search.Locations
	if len(locations) == 0 {
		// Sentinel meaning "remote/any"; adapters treat it as no filter.
		locations = []string{"Remote"}
	}

	dbPath := raw.Storage.DBPath
	if dbPath == "" {
		dbPath = "jobs.db"
	}

	csvPath := raw.Export.CSVPath
	if csvPath == "" {
		csvPath = "exports/jobs.csv"
	}

	cfg := &Config{
		Search: SearchConfig{
			Keywords:  raw.Search.Keywords,
			Locations: locations,
			Tags:      raw.Search.Tags,
		},
		Scrapers: ScraperConfig{
			Enabled:       raw.Scrapers.Enabled,
			Boards:        raw.Scrapers.Boards,
			RateLimit:     rateLimit,
			MaxRetries:    maxRetries,
			Timeout:       timeout,
			RespectRobots: respectRobots,
			Parallel:      raw.Scrapers.Parallel,
		},
		Scheduler:    SchedulerConfig{Interval: interval},
		Notification: raw.Notification,
		Storage:      StorageConfig{DBPath: dbPath},
		Export:       ExportConfig{CSVEnabled: raw.Export.CSVEnabled, CSVPath: csvPath},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Search.Keywords) == 0 {
		return fmt.Errorf("search.keywords must list at least one keyword")
	}
	if len(cfg.Scrapers.Enabled) == 0 {
		return fmt.Errorf("scrapers.enabled must list at least one source")
	}
	if cfg.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval_hours must be positive, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Scrapers.Timeout <= 0 {
		return fmt.Errorf("scrapers.timeout must be positive, got %v", cfg.Scrapers.Timeout)
	}
	if cfg.Notification.Email.Enabled {
		if cfg.Notification.Email.Sender == "" {
			return fmt.Errorf("notification.email.sender is required when email is enabled")
		}
		if len(cfg.Notification.Email.Recipients) == 0 {
			return fmt.Errorf("notification.email.recipients is required when email is enabled")
		}
		if cfg.Notification.Email.SMTPHost == "" {
			return fmt.Errorf("notification.email.smtp_host is required when email is enabled")
		}
	}
	return nil
}
