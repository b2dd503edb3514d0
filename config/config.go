package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// UploadsConfig points at the external object store used for attachments.
// The endpoint accepts unsigned multipart uploads keyed by a preset name.
type UploadsConfig struct {
	Endpoint string `toml:"endpoint"`
	Preset   string `toml:"preset"`
}

// AIConfig points at the external generation service. BaseURL may be empty
// in the file and supplied through AI_SERVICE_URL instead; if it is absent
// from both the generate endpoint fails with a configuration error.
type AIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type JWTConfig struct {
	Secret string `toml:"secret"` // For JWT signing
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Uploads   UploadsConfig   `toml:"uploads"`
	AI        AIConfig        `toml:"ai"`
	JWT       JWTConfig       `toml:"jwt"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// LoadConfig reads the TOML file and applies environment overrides.
// A .env file next to the process is loaded first when present.
func LoadConfig(filepath string) (*Config, error) {
	// Optional .env overlay; missing file is not an error
	_ = godotenv.Load()

	var config Config

	// Set default values
	config.Server.Port = 5000
	config.Storage.DataDir = "./data"
	config.AI.TimeoutSeconds = 30
	config.RateLimit.Requests = 100
	config.RateLimit.WindowSeconds = 60

	if _, err := toml.DecodeFile(filepath, &config); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config %s: %w", filepath, err)
		}
		// No config file: run on defaults plus environment
	}

	// Environment-sourced values take precedence over the file
	if v := os.Getenv("AI_SERVICE_URL"); v != "" {
		config.AI.BaseURL = v
	}
	if v := os.Getenv("UPLOAD_ENDPOINT"); v != "" {
		config.Uploads.Endpoint = v
	}
	if v := os.Getenv("UPLOAD_PRESET"); v != "" {
		config.Uploads.Preset = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.JWT.Secret = v
	}

	return &config, nil
}
