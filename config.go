package curator

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/viant/curator/internal/logging"
	"github.com/viant/curator/policy"
	"github.com/viant/curator/service/verifier/anthropic"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// Catalog kinds.
const (
	CatalogFS       = "fs"
	CatalogPostgres = "postgres"
)

// Notifier kinds.
const (
	NotifierLog     = "log"
	NotifierCommand = "command"
	NotifierNone    = "none"
)

// Config is a serialisable representation of the engine configuration. It is
// loaded from YAML and environment variables; zero values inherit the
// env-default tags.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Verifier VerifierConfig `yaml:"verifier"`
	Runner   RunnerConfig   `yaml:"runner"`
	Policy   policy.Config  `yaml:"policy"`
	Notifier NotifierConfig `yaml:"notifier"`
	Log      logging.Config `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// StoreConfig selects where engine records are persisted.
type StoreConfig struct {
	Kind string `yaml:"kind" env:"CURATOR_STORE_KIND" env-default:"sqlite"`
	// URL is the afs base URL of the fs store.
	URL  string `yaml:"url" env:"CURATOR_STORE_URL"`
	// Path is the sqlite database file.
	Path string `yaml:"path" env:"CURATOR_STORE_PATH" env-default:"curator.db"`
}

// CatalogConfig selects the topic catalog: an afs base URL for fs, a
// connection string for postgres.
type CatalogConfig struct {
	Kind         string `yaml:"kind" env:"CURATOR_CATALOG_KIND" env-default:"fs"`
	URL          string `yaml:"url" env:"CURATOR_CATALOG_URL" env-default:"topics"`
	DSN          string `yaml:"dsn" env:"CURATOR_CATALOG_DSN"`
	EnsureSchema bool   `yaml:"ensure_schema" env:"CURATOR_CATALOG_ENSURE_SCHEMA"`
}

// VerifierConfig configures the verification service.
type VerifierConfig struct {
	anthropic.Config `yaml:",inline"`
	Timeout          time.Duration `yaml:"timeout" env:"CURATOR_VERIFIER_TIMEOUT" env-default:"90s"`
}

// RunnerConfig configures run pacing. ReviewConcurrency bounds parallel
// on-demand reviews. The poll intervals bound how late a serving process
// notices runs and schedule edits made by another process.
type RunnerConfig struct {
	TickDelay            time.Duration `yaml:"tick_delay" env:"CURATOR_RUNNER_TICK_DELAY" env-default:"2s"`
	RetryDelay           time.Duration `yaml:"retry_delay" env:"CURATOR_RUNNER_RETRY_DELAY" env-default:"10s"`
	PollInterval         time.Duration `yaml:"poll_interval" env:"CURATOR_RUNNER_POLL_INTERVAL" env-default:"5s"`
	SchedulePollInterval time.Duration `yaml:"schedule_poll_interval" env:"CURATOR_RUNNER_SCHEDULE_POLL_INTERVAL" env-default:"1m"`
	ReviewConcurrency    int           `yaml:"review_concurrency" env:"CURATOR_RUNNER_REVIEW_CONCURRENCY" env-default:"2"`
}

// NotifierConfig configures completion notifications.
type NotifierConfig struct {
	Kind    string        `yaml:"kind" env:"CURATOR_NOTIFIER_KIND" env-default:"log"`
	Command string        `yaml:"command" env:"CURATOR_NOTIFIER_COMMAND"`
	Timeout time.Duration `yaml:"timeout" env:"CURATOR_NOTIFIER_TIMEOUT" env-default:"30s"`
	Async   bool          `yaml:"async" env:"CURATOR_NOTIFIER_ASYNC" env-default:"true"`
}

// TracingConfig configures the OpenTelemetry stdout exporter.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled" env:"CURATOR_TRACING_ENABLED"`
	File    string `yaml:"file" env:"CURATOR_TRACING_FILE"`
}

// DefaultConfig returns a Config populated with the default values.
func DefaultConfig() *Config {
	return &Config{
		Store:    StoreConfig{Kind: StoreSQLite, Path: "curator.db"},
		Catalog:  CatalogConfig{Kind: CatalogFS, URL: "topics"},
		Verifier: VerifierConfig{Config: anthropic.Config{Model: "claude-sonnet-4-5", MaxTokens: 4096}, Timeout: 90 * time.Second},
		Runner: RunnerConfig{
			TickDelay:            2 * time.Second,
			RetryDelay:           10 * time.Second,
			PollInterval:         5 * time.Second,
			SchedulePollInterval: time.Minute,
			ReviewConcurrency:    2,
		},
		Policy:   policy.Config{Supplemental: policy.ModeOff, MinConfidence: "low"},
		Notifier: NotifierConfig{Kind: NotifierLog, Timeout: 30 * time.Second, Async: true},
		Log:      logging.Config{Level: "info", Format: "json"},
	}
}

// LoadConfig reads configuration from the YAML file at path and the
// environment. Priority: ENV > YAML > defaults. An empty path loads from the
// environment only.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	switch c.Store.Kind {
	case StoreMemory:
	case StoreFS:
		if c.Store.URL == "" {
			errs = append(errs, errors.New("store.url is required for the fs store"))
		}
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.kind %q", c.Store.Kind))
	}
	switch c.Catalog.Kind {
	case CatalogFS:
		if c.Catalog.URL == "" {
			errs = append(errs, errors.New("catalog.url is required for the fs catalog"))
		}
	case CatalogPostgres:
		if c.Catalog.DSN == "" {
			errs = append(errs, errors.New("catalog.dsn is required for the postgres catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported catalog.kind %q", c.Catalog.Kind))
	}
	switch c.Notifier.Kind {
	case NotifierLog, NotifierCommand, NotifierNone:
	default:
		errs = append(errs, fmt.Errorf("unsupported notifier.kind %q", c.Notifier.Kind))
	}
	if c.Runner.TickDelay < 0 {
		errs = append(errs, errors.New("runner.tick_delay must be >= 0"))
	}
	if c.Runner.ReviewConcurrency <= 0 {
		errs = append(errs, errors.New("runner.review_concurrency must be > 0"))
	}
	if c.Verifier.Timeout <= 0 {
		errs = append(errs, errors.New("verifier.timeout must be > 0"))
	}
	if _, err := policy.FromConfig(&c.Policy); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}
	return errors.Join(errs...)
}
