package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the semdex tool.
type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Analyze   AnalyzeConfig   `yaml:"analyze"`
	Query     QueryConfig     `yaml:"query"`
	Ask       AskConfig       `yaml:"ask"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"log"`
}

// ProjectConfig names the analyzed project.
type ProjectConfig struct {
	Name string `yaml:"name"` // empty means basename of the root directory
}

// AnalyzeConfig controls file discovery and parsing.
type AnalyzeConfig struct {
	Includes         []string `yaml:"includes"`
	Excludes         []string `yaml:"excludes"` // merged with the built-in ignore set
	MaxFileSizeMB    int      `yaml:"max_file_size_mb"`
	Workers          int      `yaml:"workers"` // 0 means NumCPU
	RespectGitignore bool     `yaml:"respect_gitignore"`
}

// QueryConfig controls result ranking output.
type QueryConfig struct {
	MaxResults int `yaml:"max_results"`
}

// AskConfig controls the retrieval-augmented answer pipeline.
type AskConfig struct {
	Provider     string `yaml:"provider"` // "dummy", "openai", "ollama"
	Model        string `yaml:"model"`
	APIKeyEnv    string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL      string `yaml:"base_url"`
	TopK         int    `yaml:"top_k"`
	ContextChars int    `yaml:"context_chars"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"` // "mock", "openai", "ollama"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name: "",
		},
		Analyze: AnalyzeConfig{
			Includes:         []string{"**/*.py"},
			Excludes:         []string{},
			MaxFileSizeMB:    10,
			Workers:          0,
			RespectGitignore: true,
		},
		Query: QueryConfig{
			MaxResults: 10,
		},
		Ask: AskConfig{
			Provider:     "dummy",
			Model:        "",
			APIKeyEnv:    "OPENAI_API_KEY",
			BaseURL:      "",
			TopK:         5,
			ContextChars: 4000,
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			Provider:  "mock",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 256,
			BatchSize: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// MaxFileSizeBytes converts the configured MB threshold to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Analyze.MaxFileSizeMB) * 1024 * 1024
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semdex.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try semdex.yaml in the directory
	path := filepath.Join(dir, "semdex.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .semdex/config.yaml
	path = filepath.Join(dir, ".semdex", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".semdex", "index.db")
}

// EnsureDataDir ensures the .semdex directory exists.
func EnsureDataDir(dir string) error {
	dataDir := filepath.Join(dir, ".semdex")
	return os.MkdirAll(dataDir, 0755)
}
