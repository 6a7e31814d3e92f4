package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Thresholds holds the named analytic constants passed explicitly into each
// detector. Centralized here so they can be tuned and tested independently
// instead of living as magic numbers in handlers.
type Thresholds struct {
	WindowDays      int
	MinVolume       int
	GrowthThreshold float64
	MinWardVolume   int
	TopNPerPeriod   int
	MinPeriods      int
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath       string
	DatasetDir     string
	LogDir         string
	DatabaseURL    string
	ExplainURL     string
	ExplainTimeout time.Duration
	HTTPAddr       string
	Defaults       Thresholds
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first.
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	datasetDir := getEnv("DATASET_DIR", filepath.Join(dataPath, "datasets"))
	logDir := filepath.Join(dataPath, "logs")

	for _, dir := range []string{datasetDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create directory")
		}
	}

	explainTimeoutSecs, _ := strconv.Atoi(getEnv("EXPLAIN_TIMEOUT_SECONDS", "8"))

	cfg := &AppConfig{
		DataPath:       dataPath,
		DatasetDir:     datasetDir,
		LogDir:         logDir,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ExplainURL:     getEnv("EXPLAIN_SERVICE_URL", ""),
		ExplainTimeout: time.Duration(explainTimeoutSecs) * time.Second,
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		Defaults: Thresholds{
			WindowDays:      getEnvInt("DEFAULT_WINDOW_DAYS", 14),
			MinVolume:       getEnvInt("DEFAULT_MIN_VOLUME", 10),
			GrowthThreshold: getEnvFloat("DEFAULT_GROWTH_THRESHOLD", 0.5),
			MinWardVolume:   getEnvInt("DEFAULT_MIN_WARD_VOLUME", 30),
			TopNPerPeriod:   getEnvInt("DEFAULT_TOP_N_PER_PERIOD", 5),
			MinPeriods:      getEnvInt("DEFAULT_MIN_PERIODS", 4),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
