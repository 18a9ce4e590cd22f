// Package config loads the fitkit configuration from a YAML file and
// environment variables. Components never read the environment directly;
// everything flows through Config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in ModelConfig.Provider.
const (
	ProviderScripted = "scripted"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderBedrock  = "bedrock"
)

// ModelConfig selects and tunes the chat model backing the agents.
type ModelConfig struct {
	// Provider is one of scripted, openai, gemini, bedrock.
	Provider string `yaml:"provider"`
	// Name is the provider-specific model identifier.
	Name string `yaml:"name"`
	// APIKey authenticates against openai or gemini.
	APIKey string `yaml:"api_key"`
	// Region selects the AWS region for bedrock.
	Region      string  `yaml:"region"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// RedisConfig configures the optional Redis-backed session memory.
type RedisConfig struct {
	// Addr is host:port; empty disables Redis and falls back to
	// in-process memory.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// TTLSeconds bounds session lifetime (0 means no expiry).
	TTLSeconds int `yaml:"ttl_seconds"`
}

// ServerConfig configures the websocket chat server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MetricsPath serves Prometheus metrics (default /metrics).
	MetricsPath string `yaml:"metrics_path"`
}

// ObservabilityConfig configures logging and tracing.
type ObservabilityConfig struct {
	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is console (tint) or json.
	LogFormat string `yaml:"log_format"`
	// TraceExporter is none, stdout, or otlp.
	TraceExporter string `yaml:"trace_exporter"`
	// OTLPEndpoint is the gRPC collector endpoint for the otlp exporter.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Config is the root configuration.
type Config struct {
	Model         ModelConfig         `yaml:"model"`
	Redis         RedisConfig         `yaml:"redis"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
	// MaxHandoffs bounds supervisor delegation (default 10).
	MaxHandoffs int `yaml:"max_handoffs"`
	// MaxSteps bounds each specialist's tool loop (default 10).
	MaxSteps int `yaml:"max_steps"`
}

// Default returns the configuration used when no file or environment
// overrides are present: a scripted model and console logging, so the
// demos run with zero external dependencies.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    ProviderScripted,
			Name:        "gpt-4o-mini",
			Temperature: 0.1,
			MaxTokens:   1000,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsPath: "/metrics",
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogFormat:     "console",
			TraceExporter: "none",
		},
		MaxHandoffs: 10,
		MaxSteps:    10,
	}
}

// Load reads the configuration: defaults, then the YAML file at path
// (skipped when path is empty or the file does not exist), then
// FITKIT_* environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays FITKIT_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString(&cfg.Model.Provider, "FITKIT_MODEL_PROVIDER")
	setString(&cfg.Model.Name, "FITKIT_MODEL_NAME")
	setString(&cfg.Model.APIKey, "FITKIT_API_KEY")
	// Conventional provider keys still work.
	if cfg.Model.APIKey == "" {
		switch cfg.Model.Provider {
		case ProviderOpenAI:
			setString(&cfg.Model.APIKey, "OPENAI_API_KEY")
		case ProviderGemini:
			setString(&cfg.Model.APIKey, "GEMINI_API_KEY")
		}
	}
	setString(&cfg.Model.Region, "FITKIT_AWS_REGION")
	setFloat(&cfg.Model.Temperature, "FITKIT_MODEL_TEMPERATURE")
	setInt(&cfg.Model.MaxTokens, "FITKIT_MODEL_MAX_TOKENS")

	setString(&cfg.Redis.Addr, "FITKIT_REDIS_ADDR")
	setString(&cfg.Redis.Password, "FITKIT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FITKIT_REDIS_DB")

	setString(&cfg.Server.Addr, "FITKIT_SERVER_ADDR")

	setString(&cfg.Observability.LogLevel, "FITKIT_LOG_LEVEL")
	setString(&cfg.Observability.LogFormat, "FITKIT_LOG_FORMAT")
	setString(&cfg.Observability.TraceExporter, "FITKIT_TRACE_EXPORTER")
	setString(&cfg.Observability.OTLPEndpoint, "FITKIT_OTLP_ENDPOINT")

	setInt(&cfg.MaxHandoffs, "FITKIT_MAX_HANDOFFS")
	setInt(&cfg.MaxSteps, "FITKIT_MAX_STEPS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Validate checks provider names, ranges, and required credentials.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderScripted, ProviderBedrock:
	case ProviderOpenAI, ProviderGemini:
		if c.Model.APIKey == "" {
			return fmt.Errorf("%s provider requires an API key", c.Model.Provider)
		}
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Model.Temperature)
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.MaxHandoffs <= 0 {
		return fmt.Errorf("max_handoffs must be positive")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive")
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Observability.LogLevel)
	}
	switch c.Observability.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Observability.LogFormat)
	}
	switch c.Observability.TraceExporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown trace exporter %q", c.Observability.TraceExporter)
	}
	if c.Observability.TraceExporter == "otlp" && c.Observability.OTLPEndpoint == "" {
		return fmt.Errorf("otlp trace exporter requires otlp_endpoint")
	}
	return nil
}

// Redacted returns a copy safe for logging, with credentials masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Model.APIKey != "" {
		out.Model.APIKey = "***"
	}
	if out.Redis.Password != "" {
		out.Redis.Password = "***"
	}
	return out
}
