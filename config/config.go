package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/kbtools/pdf-ingest/types"
)

type Config struct {
	Port           string          `mapstructure:"port"`
	OpenAIAPIKey   string          `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey   string          `mapstructure:"GEMINI_API_KEY"`
	WeaviateAPIKey string          `mapstructure:"WEAVIATE_APIKEY"`
	Embedding      EmbeddingConfig `mapstructure:"embedding"`
	Index          IndexConfig     `mapstructure:"index"`
	Chunking       ChunkingConfig  `mapstructure:"chunking"`
	Batch          BatchConfig     `mapstructure:"batch"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // "openai" or "gemini"
	BaseURL  string `mapstructure:"base_url"` // OpenAI-compatible endpoint override
	Model    string `mapstructure:"model"`
}

type IndexConfig struct {
	Host      string `mapstructure:"host"`
	Index     string `mapstructure:"name"`
	Namespace string `mapstructure:"namespace"`
}

type ChunkingConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
	Overlap   int `mapstructure:"overlap"`
}

type BatchConfig struct {
	BatchSize     int     `mapstructure:"batch_size"`
	BatchDelayMS  int     `mapstructure:"batch_delay_ms"`
	ProgressSplit float64 `mapstructure:"progress_split"`
	ClearSettleMS int     `mapstructure:"clear_settle_ms"`
}

// LoadConfig reads an optional yaml config file and the environment. Secrets
// come from the environment only; every policy knob has a default.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("index.host", "http://localhost:8080")
	v.SetDefault("index.name", "PdfResource")
	v.SetDefault("chunking.chunk_size", 1000)
	v.SetDefault("chunking.overlap", 200)
	v.SetDefault("batch.batch_size", 50)
	v.SetDefault("batch.batch_delay_ms", 500)
	v.SetDefault("batch.progress_split", 0.5)
	v.SetDefault("batch.clear_settle_ms", 2000)

	v.AutomaticEnv()
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// ChunkingConfig converts the file representation into pipeline options.
func (c *Config) ChunkingOptions() types.ChunkingConfig {
	return types.ChunkingConfig{
		ChunkSize: c.Chunking.ChunkSize,
		Overlap:   c.Chunking.Overlap,
	}
}

// BatchOptions converts the file representation into pipeline options.
func (c *Config) BatchOptions() types.BatchConfig {
	return types.BatchConfig{
		BatchSize:       c.Batch.BatchSize,
		BatchDelay:      time.Duration(c.Batch.BatchDelayMS) * time.Millisecond,
		ProgressSplit:   c.Batch.ProgressSplit,
		ClearSettleWait: time.Duration(c.Batch.ClearSettleMS) * time.Millisecond,
	}
}
