// Package config loads LogLens configuration from the environment, with an
// optional YAML file named by LOGLENS_CONFIG. Environment variables win over
// the file; the file wins over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kondababu77/loglens/internal/engine/learning"
	"github.com/kondababu77/loglens/internal/engine/threshold"
)

// Config holds all LogLens configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Decoder   DecoderConfig   `yaml:"decoder"`
	Engine    EngineConfig    `yaml:"engine"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig selects where raw batches come from.
type SourceConfig struct {
	Provider     string `yaml:"provider"`      // "file", "stdin", or "http"
	URL          string `yaml:"url"`           // http provider only
	Token        string `yaml:"token"`         // http provider only
	PollInterval string `yaml:"poll_interval"` // http provider only, Go duration
}

// DecoderConfig holds decode-stage settings.
type DecoderConfig struct {
	MaxInputBytes int `yaml:"max_input_bytes"` // 0 = decoder default
}

// EngineConfig holds the adaptive core's tunables.
type EngineConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Alpha        float64 `yaml:"alpha"`
	Warmup       int     `yaml:"warmup"`
	PatternCap   int     `yaml:"pattern_cap"`
}

// OutputConfig holds report destination settings.
type OutputConfig struct {
	Format     string `yaml:"format"` // "stdout", "file", or "webhook"
	Pretty     bool   `yaml:"pretty"`
	Path       string `yaml:"path"`        // file format only
	WebhookURL string `yaml:"webhook_url"` // webhook format only
}

// TelemetryConfig holds the Prometheus exposition settings.
// An empty Addr disables the metrics listener.
type TelemetryConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration: defaults, then the optional YAML file, then
// environment overrides.
func Load() (Config, error) {
	cfg := Config{
		Source: SourceConfig{Provider: "file"},
		Engine: EngineConfig{
			LearningRate: 0.1,
			Alpha:        learning.DefaultAlpha,
			Warmup:       learning.DefaultWarmup,
			PatternCap:   learning.DefaultPatternCap,
		},
		Output:  OutputConfig{Format: "stdout"},
		Logging: LoggingConfig{Level: "info"},
	}

	if path := os.Getenv("LOGLENS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.Source.Provider = getenv("LOGLENS_SOURCE", cfg.Source.Provider)
	cfg.Source.URL = getenv("LOGLENS_SOURCE_URL", cfg.Source.URL)
	cfg.Source.Token = getenv("LOGLENS_SOURCE_TOKEN", cfg.Source.Token)
	cfg.Source.PollInterval = getenv("LOGLENS_SOURCE_POLL_INTERVAL", cfg.Source.PollInterval)
	cfg.Decoder.MaxInputBytes = getenvInt("LOGLENS_MAX_INPUT_BYTES", cfg.Decoder.MaxInputBytes)
	cfg.Engine.LearningRate = getenvFloat("LOGLENS_LEARNING_RATE", cfg.Engine.LearningRate)
	cfg.Engine.Alpha = getenvFloat("LOGLENS_ALPHA", cfg.Engine.Alpha)
	cfg.Engine.Warmup = getenvInt("LOGLENS_WARMUP", cfg.Engine.Warmup)
	cfg.Engine.PatternCap = getenvInt("LOGLENS_PATTERN_CAP", cfg.Engine.PatternCap)
	cfg.Output.Format = getenv("LOGLENS_OUTPUT", cfg.Output.Format)
	cfg.Output.Pretty = getenvBool("LOGLENS_OUTPUT_PRETTY", cfg.Output.Pretty)
	cfg.Output.Path = getenv("LOGLENS_OUTPUT_PATH", cfg.Output.Path)
	cfg.Output.WebhookURL = getenv("LOGLENS_WEBHOOK_URL", cfg.Output.WebhookURL)
	cfg.Telemetry.Addr = getenv("LOGLENS_METRICS_ADDR", cfg.Telemetry.Addr)
	cfg.Logging.Level = getenv("LOGLENS_LOG_LEVEL", cfg.Logging.Level)

	return cfg, nil
}

// Validate rejects configuration the core cannot run with. These are
// operator errors, fatal at startup.
func (c Config) Validate() error {
	if c.Decoder.MaxInputBytes < 0 {
		return fmt.Errorf("config: max_input_bytes %d is negative", c.Decoder.MaxInputBytes)
	}
	switch c.Output.Format {
	case "stdout":
	case "file":
		if c.Output.Path == "" {
			return fmt.Errorf("config: file output requires a path")
		}
	case "webhook":
		if c.Output.WebhookURL == "" {
			return fmt.Errorf("config: webhook output requires a url")
		}
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}
	if err := c.ThresholdConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.LearningConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ThresholdConfig builds the optimizer configuration: stock rules with the
// configured starting learning rate.
func (c Config) ThresholdConfig() threshold.Config {
	tc := threshold.DefaultConfig()
	tc.LearningRate = c.Engine.LearningRate
	return tc
}

// LearningConfig builds the continual-learning configuration.
func (c Config) LearningConfig() learning.Config {
	return learning.Config{
		Alpha:      c.Engine.Alpha,
		Warmup:     c.Engine.Warmup,
		PatternCap: c.Engine.PatternCap,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
