// Package common provides shared utilities for Sage
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Sage
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	Advisor     AdvisorConfig `toml:"advisor"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Gemini       GeminiConfig       `toml:"gemini"`
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// IsDemoKey reports whether the Alpha Vantage key is the shared demo key.
// Demo keys carry a severely limited request quota, so statement endpoints
// are disabled for them.
func (c *AlphaVantageConfig) IsDemoKey() bool {
	key := strings.TrimSpace(c.APIKey)
	return key == "" || strings.EqualFold(key, "demo")
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// AdvisorConfig holds orchestration tunables.
type AdvisorConfig struct {
	HistoryEntries  int  `toml:"history_entries"`  // entries rendered into prompts
	AnalysisTokens  int  `toml:"analysis_tokens"`  // generator budget, full context path
	FallbackTokens  int  `toml:"fallback_tokens"`  // generator budget, quote-only path
	SyntheticQuotes bool `toml:"synthetic_quotes"` // generate quotes for unknown symbols
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co/query",
				APIKey:    "demo",
				RateLimit: 1,
				Timeout:   "10s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Advisor: AdvisorConfig{
			HistoryEntries: 5,
			AnalysisTokens: 1200,
			FallbackTokens: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SAGE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SAGE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SAGE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SAGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := ResolveAPIKey("alphavantage"); key != "" {
		config.Clients.AlphaVantage.APIKey = key
	}
	if key := ResolveAPIKey("gemini"); key != "" {
		config.Clients.Gemini.APIKey = key
	}
}

// ResolveAPIKey resolves an API key from the environment. Returns the empty
// string when no matching variable is set.
func ResolveAPIKey(name string) string {
	keyToEnvMapping := map[string][]string{
		"alphavantage": {"ALPHA_VANTAGE_API_KEY", "SAGE_ALPHAVANTAGE_API_KEY"},
		"gemini":       {"GEMINI_API_KEY", "SAGE_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	for _, envVarName := range keyToEnvMapping[name] {
		if envValue := os.Getenv(envVarName); envValue != "" {
			return envValue
		}
	}
	return ""
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
