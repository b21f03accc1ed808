package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/linkgraph/internal/core/model"
)

type ServerConfig struct {
	Port         string   `toml:"port" validate:"required,numeric"`
	CORSOrigins  []string `toml:"cors_origins"`
	GraphLimit   int      `toml:"graph_limit" validate:"gte=0"`
	TopN         int      `toml:"top_n" validate:"gte=0"`
	RetainGraphs int      `toml:"retain_graphs" validate:"gte=1"`
	MaxUploadMB  int      `toml:"max_upload_mb" validate:"gte=1"`
}

type InferenceConfig struct {
	model.InferenceSettings
	ExhaustiveFuzzyLimit int `toml:"exhaustive_fuzzy_limit" validate:"gte=0"`
}

type MetricsConfig struct {
	TimeoutSeconds     int     `toml:"timeout_seconds" validate:"gte=0"`
	CommunityAlgorithm string  `toml:"community_algorithm" validate:"omitempty,oneof=modularity louvain label_propagation lpa"`
	Resolution         float64 `toml:"resolution" validate:"gte=0"`
	MaxIterations      int     `toml:"max_iterations" validate:"gte=0"`
}

// Timeout returns the metrics budget; zero disables it.
func (m MetricsConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

type LLMConfig struct {
	Provider string `toml:"provider" validate:"omitempty,oneof=openai gemini claude ollama none"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	Enabled   bool   `toml:"enabled"`
	URI       string `toml:"uri" validate:"required_if=Enabled true"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	BatchSize int    `toml:"batch_size" validate:"gte=0"`
}

type Prompts struct {
	Filter        string `toml:"filter"`
	CommunityName string `toml:"community_name"`
}

type LogConfig struct {
	Mode string `toml:"mode"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Inference InferenceConfig `toml:"inference"`
	Metrics   MetricsConfig   `toml:"metrics"`
	LLM       LLMConfig       `toml:"llm"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Prompts   Prompts         `toml:"prompts"`
	Log       LogConfig       `toml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
			GraphLimit:   1000,
			TopN:         10,
			RetainGraphs: 5,
			MaxUploadMB:  20,
		},
		Inference: InferenceConfig{
			InferenceSettings:    model.DefaultInferenceSettings(),
			ExhaustiveFuzzyLimit: 500,
		},
		Metrics: MetricsConfig{
			TimeoutSeconds:     30,
			CommunityAlgorithm: "modularity",
			Resolution:         1.0,
			MaxIterations:      100,
		},
		LLM: LLMConfig{Provider: "none"},
		Memgraph: MemgraphConfig{
			URI:       "bolt://localhost:7687",
			BatchSize: 500,
		},
		Prompts: Prompts{
			Filter:        DefaultFilterPrompt,
			CommunityName: DefaultCommunityNamePrompt,
		},
		Log: LogConfig{Mode: "development"},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load that falls back to Default when the file does not
// exist. The returned bool reports whether the file was found.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
		c.Memgraph.Enabled = true
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
}

// Validate checks ranges of every section, including the inference defaults.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Inference.InferenceSettings.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
