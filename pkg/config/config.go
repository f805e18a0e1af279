// Package config loads repograde configuration from TOML, YAML, or JSON
// files, with environment fallbacks for credentials.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for repograde.
type Config struct {
	// GitHub API access
	GitHub GitHubConfig `koanf:"github"`

	// Narrative generation settings
	LLM LLMConfig `koanf:"llm"`

	// Scan behavior
	Scan ScanConfig `koanf:"scan"`

	// HTTP server settings
	Server ServerConfig `koanf:"server"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// GitHubConfig holds source-hosting API settings. Token is optional; public
// repositories work without one under a tighter rate limit.
type GitHubConfig struct {
	Token   string `koanf:"token"`
	BaseURL string `koanf:"base_url"`
}

// LLMConfig holds text-generation settings. An empty APIKey disables the
// narrative call entirely; scans then use the deterministic fallback.
type LLMConfig struct {
	APIKey    string `koanf:"api_key"`
	Model     string `koanf:"model"`
	BaseURL   string `koanf:"base_url"`
	MaxTokens int    `koanf:"max_tokens"`
}

// ScanConfig bounds a scan run.
type ScanConfig struct {
	// TimeoutSeconds is the overall scan deadline. Zero disables it.
	TimeoutSeconds int `koanf:"timeout_seconds"`
	// Concurrency is how many file-content fetches run in parallel.
	Concurrency int `koanf:"concurrency"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// OutputConfig controls CLI output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults. Credentials come
// from the environment when not set in a file.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Token: os.Getenv("GITHUB_TOKEN"),
		},
		LLM: LLMConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			Model:     "gpt-4o-mini",
			MaxTokens: 1000,
		},
		Scan: ScanConfig{
			TimeoutSeconds: 120,
			Concurrency:    8,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Timeout returns the scan deadline as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Scan.TimeoutSeconds) * time.Second
}

// Load loads configuration from a file, layered over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"repograde.toml",
		"repograde.yaml",
		"repograde.yml",
		"repograde.json",
		".repograde.toml",
		".repograde.yaml",
		".repograde.yml",
		".repograde.json",
	}

	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
