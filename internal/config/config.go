// Package config loads the pipeline's configuration from a YAML file with
// environment-variable interpolation into a single immutable value,
// constructed once at process start (spec §9 Design Notes: no global
// singleton, no lru_cache-style memoized getter).
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database       DatabaseConfig       `yaml:"database"`
	Extraction     ExtractionConfig     `yaml:"extraction"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Alerting       AlertingConfig       `yaml:"alerting"`
	Lineage        LineageConfig        `yaml:"lineage"`
	Retention      RetentionConfig      `yaml:"retention"`
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxIdleTime  string `yaml:"max_idle_time"`
}

type ExtractionConfig struct {
	Hour           int    `yaml:"hour"`
	Minute         int    `yaml:"minute"`
	Timezone       string `yaml:"timezone"`
	DryRunDefault  bool   `yaml:"dry_run_default"`
	RawDataRoot    string `yaml:"raw_data_root"`
}

type ReconciliationConfig struct {
	VolumeTolerancePercent int  `yaml:"volume_tolerance_percent"`
	AlertOnMismatch        bool `yaml:"alert_on_mismatch"`
	AlertOnSchedulerMiss   bool `yaml:"alert_on_scheduler_miss"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type AlertingConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
}

type LineageConfig struct {
	Enabled              bool   `yaml:"enabled"`
	TrackPipelineVersion bool   `yaml:"track_pipeline_version"`
	PipelineVersion      string `yaml:"pipeline_version"`
}

type RetentionConfig struct {
	RawDays int `yaml:"raw_days"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 15,
			MaxIdleConns: 5,
			MaxIdleTime:  "5m",
		},
		Extraction: ExtractionConfig{
			Hour:        9,
			Minute:      15,
			Timezone:    "America/Sao_Paulo",
			RawDataRoot: "data/raw",
		},
		Reconciliation: ReconciliationConfig{
			VolumeTolerancePercent: 10,
			AlertOnMismatch:        true,
			AlertOnSchedulerMiss:   true,
		},
		Alerting: AlertingConfig{
			Telegram: TelegramConfig{Enabled: true},
			Email:    EmailConfig{Enabled: false, SMTPPort: 587, From: "alerts@projetus.com"},
		},
		Lineage: LineageConfig{
			Enabled:              true,
			TrackPipelineVersion: true,
			PipelineVersion:      "dev",
		},
	}
}

// Load reads .env (if present), then the YAML file at path, interpolates
// ${VAR} placeholders against the process environment, and validates the
// result. It is called exactly once, in main, and the returned value is
// passed explicitly from then on.
func Load(path string) (Config, error) {
	// godotenv.Load is a no-op (non-fatal) when .env doesn't exist, mirroring
	// the original's load_dotenv() called unconditionally at import time.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	interpolated := substituteEnv(string(raw))

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnv replaces every ${NAME} occurrence in the raw YAML text with
// the corresponding environment variable, before the document is parsed.
// Operating on raw text (rather than walking the decoded tree) mirrors the
// original's recursive substitute_env_vars over an already-dict/list/str
// result, generalized to a single text pass since Go's YAML decode step
// happens after, not before, interpolation. Unresolved placeholders are
// left verbatim — the core MUST NOT silently fall back (spec §6.2).
func substituteEnv(text string) string {
	return envVarPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func validate(cfg Config) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if _, err := time.LoadLocation(cfg.Extraction.Timezone); err != nil {
		return fmt.Errorf("extraction.timezone %q: %w", cfg.Extraction.Timezone, err)
	}
	if cfg.Extraction.Hour < 0 || cfg.Extraction.Hour > 23 {
		return fmt.Errorf("extraction.hour %d out of range", cfg.Extraction.Hour)
	}
	if cfg.Extraction.Minute < 0 || cfg.Extraction.Minute > 59 {
		return fmt.Errorf("extraction.minute %d out of range", cfg.Extraction.Minute)
	}
	if cfg.Reconciliation.VolumeTolerancePercent < 0 || cfg.Reconciliation.VolumeTolerancePercent > 100 {
		return fmt.Errorf("reconciliation.volume_tolerance_percent %d out of range", cfg.Reconciliation.VolumeTolerancePercent)
	}
	return nil
}
