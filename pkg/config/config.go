package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration. It is constructed once in main and
// threaded explicitly into every component; there is no global settings object.
type Config struct {
	Service  ServiceConfig  `koanf:"service"`
	Database DatabaseConfig `koanf:"database"`
	Logger   LoggerConfig   `koanf:"logger"`
	Events   EventsConfig   `koanf:"events"`
	Dedup    DedupConfig    `koanf:"dedup"`
	Deletion DeletionConfig `koanf:"deletion"`
	Language LanguageConfig `koanf:"language"`
	Storage  StorageConfig  `koanf:"storage"`
}

// ServiceConfig contains service metadata.
type ServiceConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"` // dev, staging, production
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Database        string        `koanf:"database"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxConnections  int           `koanf:"max_connections"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level       string `koanf:"level"` // debug, info, warn, error
	Development bool   `koanf:"development"`
}

// EventsConfig selects and configures the event bus.
type EventsConfig struct {
	// NATSURL is empty when only the in-memory bus should be used.
	NATSURL string `koanf:"nats_url"`
	Stream  string `koanf:"stream"`
}

// DedupConfig holds duplicate-detection thresholds.
type DedupConfig struct {
	// FuzzyThreshold is the minimum filename similarity ratio (0-100) for two
	// files to join the same fuzzy group.
	FuzzyThreshold int `koanf:"fuzzy_threshold"`

	// AutoApproveDelta is the quality-score difference at or above which the
	// worse copies may be recommended for automatic deletion.
	AutoApproveDelta int `koanf:"auto_approve_delta"`

	// ManualReviewDelta is the quality-score difference below which a group is
	// always sent to manual review.
	ManualReviewDelta int `koanf:"manual_review_delta"`

	// DetectInterval is how often the background detection sweep runs.
	DetectInterval time.Duration `koanf:"detect_interval"`
}

// DeletionConfig holds the staged-deletion lifecycle settings.
type DeletionConfig struct {
	// RetentionDays is how long an unapproved staged deletion is kept before
	// the expiry sweep removes it permanently.
	RetentionDays int `koanf:"retention_days"`

	// StagingRoots are candidate roots for the staging area, tried in order.
	StagingRoots []string `koanf:"staging_roots"`

	// StagingSubdirs are the recognized per-media-type directory names; other
	// media types fall back to "other".
	StagingSubdirs []string `koanf:"staging_subdirs"`

	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// LanguageConfig governs the language-concern heuristics.
type LanguageConfig struct {
	RequireEnglishAudio  bool `koanf:"require_english_audio"`
	ForeignFilmHeuristic bool `koanf:"foreign_film_heuristic"`
}

// StorageConfig configures path resolution against the NAS share.
type StorageConfig struct {
	// ShareRoot is the root the inventory records paths under (e.g. /volume1).
	ShareRoot string `koanf:"share_root"`

	// MountPath is where the share is mounted locally (e.g. /mnt/nas-media).
	MountPath string `koanf:"mount_path"`

	// DevFallbackPath optionally maps share paths under a local directory for
	// development machines.
	DevFallbackPath string `koanf:"dev_fallback_path"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "mediavault",
			Environment: "production",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "mediavault",
			Password:        "mediavault_dev",
			Database:        "mediavault",
			SSLMode:         "disable",
			MaxConnections:  25,
			MaxConnLifetime: time.Hour,
		},
		Logger: LoggerConfig{
			Level:       "info",
			Development: false,
		},
		Events: EventsConfig{
			Stream: "MEDIAVAULT",
		},
		Dedup: DedupConfig{
			FuzzyThreshold:    85,
			AutoApproveDelta:  50,
			ManualReviewDelta: 20,
			DetectInterval:    time.Hour,
		},
		Deletion: DeletionConfig{
			RetentionDays:  30,
			StagingRoots:   []string{"/volume1/video/duplicates_before_purge"},
			StagingSubdirs: []string{"movies", "tv", "documentaries"},
			SweepInterval:  24 * time.Hour,
		},
		Language: LanguageConfig{
			RequireEnglishAudio:  true,
			ForeignFilmHeuristic: true,
		},
		Storage: StorageConfig{
			ShareRoot: "/volume1",
			MountPath: "/mnt/nas-media",
		},
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Dedup.FuzzyThreshold < 0 || c.Dedup.FuzzyThreshold > 100 {
		return fmt.Errorf("dedup.fuzzy_threshold must be in [0,100], got %d", c.Dedup.FuzzyThreshold)
	}
	if c.Dedup.ManualReviewDelta > c.Dedup.AutoApproveDelta {
		return fmt.Errorf("dedup.manual_review_delta (%d) must not exceed dedup.auto_approve_delta (%d)",
			c.Dedup.ManualReviewDelta, c.Dedup.AutoApproveDelta)
	}
	if c.Deletion.RetentionDays < 1 {
		return fmt.Errorf("deletion.retention_days must be positive, got %d", c.Deletion.RetentionDays)
	}
	if len(c.Deletion.StagingRoots) == 0 {
		return fmt.Errorf("deletion.staging_roots must not be empty")
	}
	return nil
}

// RetentionWindow returns the retention period as a duration.
func (c *DeletionConfig) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Load builds the configuration from defaults, an optional YAML file and
// MEDIAVAULT_-prefixed environment variables, in that order of precedence.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range configPaths(configPath) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	const prefix = "MEDIAVAULT_"
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		// MEDIAVAULT_DATABASE_HOST -> database.host
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, prefix), "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func configPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}

	paths := []string{
		"config.yaml",
		"mediavault.yaml",
		filepath.Join("configs", "mediavault.yaml"),
	}
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		paths = append([]string{configPath}, paths...)
	}
	return paths
}
