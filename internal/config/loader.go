package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMapURL serves the system map dataset
const DefaultMapURL = "https://letsplay.minecrafttransitrailway.com/system-map/data"

// Default returns the configuration used when no file or environment
// overrides are present
func Default() AppConfig {
	return AppConfig{
		Source: SourceConfig{
			URL:      DefaultMapURL,
			DumpPath: "mapdata.json",
			Timeout:  30 * time.Second,
		},
		State: StateConfig{
			Backend: "json",
			Path:    "save_data.json",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if it exists) over the defaults, then applies a .env file
// and MTR_* environment variables, and validates the result.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults apply
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section of cfg
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Source.URL = getEnv("MTR_MAP_URL", cfg.Source.URL)
	cfg.Source.DumpPath = getEnv("MTR_DUMP_PATH", cfg.Source.DumpPath)
	cfg.Source.RefreshInterval = getEnvDuration("MTR_REFRESH_INTERVAL", cfg.Source.RefreshInterval)
	cfg.State.Backend = getEnv("MTR_STATE_BACKEND", cfg.State.Backend)
	cfg.State.Path = getEnv("MTR_STATE_PATH", cfg.State.Path)
	cfg.Server.Port = getEnvInt("MTR_PORT", cfg.Server.Port)
	cfg.Log.Level = getEnv("MTR_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("MTR_LOG_FORMAT", cfg.Log.Format)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
