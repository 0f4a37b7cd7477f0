package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	LLM      LLMConfig      `yaml:"llm"`
	OCR      OCRConfig      `yaml:"ocr"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig selects the object storage backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // "local" or "minio"
	Local   LocalConfig `yaml:"local"`
	MinIO   MinIOConfig `yaml:"minio"`
}

// LocalConfig holds settings for the filesystem backend.
type LocalConfig struct {
	Root string `yaml:"root"`
}

// MinIOConfig holds settings for the MinIO backend.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// LLMConfig holds settings for the summarization provider.
type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OCRConfig holds settings for the image text recognition engine.
type OCRConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Workers int    `yaml:"workers"` // max concurrent recognitions (default: 2)
}

// PipelineConfig holds extraction run settings.
type PipelineConfig struct {
	RunTimeout   time.Duration `yaml:"run_timeout"`   // per-run wall clock bound
	StaleAfter   time.Duration `yaml:"stale_after"`   // processing age before the reaper fails a run
	ReapSchedule string        `yaml:"reap_schedule"` // cron expression for the sweep
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "local",
			Local:   LocalConfig{Root: "data/objects"},
			MinIO:   MinIOConfig{Bucket: "docvault"},
		},
		LLM: LLMConfig{Model: "gpt-4o-mini"},
		OCR: OCRConfig{Model: "gemini-2.0-flash", Workers: 2},
		Pipeline: PipelineConfig{
			RunTimeout:   5 * time.Minute,
			StaleAfter:   10 * time.Minute,
			ReapSchedule: "*/1 * * * *",
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
// Environment variables override file values for secrets and connection
// strings, so deployments never need credentials on disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns defaults with environment
// overrides applied. Any other error is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfPresent(&c.Database.URL, "DATABASE_URL")
	setIfPresent(&c.LLM.APIKey, "OPENAI_API_KEY")
	setIfPresent(&c.OCR.APIKey, "GEMINI_API_KEY")
	setIfPresent(&c.Storage.MinIO.Endpoint, "MINIO_ENDPOINT")
	setIfPresent(&c.Storage.MinIO.AccessKey, "MINIO_ACCESS_KEY")
	setIfPresent(&c.Storage.MinIO.SecretKey, "MINIO_SECRET_KEY")
	setIfPresent(&c.Storage.MinIO.Bucket, "MINIO_BUCKET")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
