package config

import (
	"os"
	"strconv"

	"skipcorr/domain/stats"
	"skipcorr/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Data     DataConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. Persistence is opt-in:
// an empty URL disables the postgres run repository.
type DatabaseConfig struct {
	URL string
}

// AnalysisConfig holds the default statistical parameters for runs that do
// not specify their own.
type AnalysisConfig struct {
	NBoot            int
	Alpha            float64
	Seed             int64
	Method           string
	CalibrationIters int
}

// DataConfig holds data input settings
type DataConfig struct {
	File string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Analysis: AnalysisConfig{
			NBoot:            getEnvIntOrDefault("NBOOT", stats.DefaultNBoot),
			Alpha:            getEnvFloatOrDefault("ALPHA", stats.DefaultAlpha),
			Seed:             int64(getEnvIntOrDefault("SEED", 42)),
			Method:           getEnvOrDefault("METHOD", string(stats.MethodECP)),
			CalibrationIters: getEnvIntOrDefault("CALIBRATION_ITERS", stats.DefaultCalibrationIters),
		},
		Data: DataConfig{
			File: os.Getenv("DATA_FILE"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Analysis.NBoot < 1 {
		return errors.ConfigInvalid("NBOOT must be positive")
	}
	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	switch stats.Method(cfg.Analysis.Method) {
	case stats.MethodECP, stats.MethodHochberg:
	default:
		return errors.ConfigInvalid("METHOD must be one of ECP, Hochberg")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
