package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath          string
	ServerPort      string
	LogLevel        string
	Season          int
	StatsAPIBaseURL string
	PhotosBaseURL   string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "pitchmap.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StatsAPIBaseURL: getEnv("STATS_API_BASE_URL", "https://statsapi.mlb.com"),
		PhotosBaseURL:   getEnv("PHOTOS_BASE_URL", "https://img.mlbstatic.com"),
	}

	season, err := strconv.Atoi(getEnv("SEASON", "2025"))
	if err != nil {
		return nil, fmt.Errorf("SEASON must be a year: %w", err)
	}
	if season < 1900 {
		return nil, fmt.Errorf("SEASON %d is out of range", season)
	}
	cfg.Season = season

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("season", cfg.Season).
		Str("stats_api_base_url", cfg.StatsAPIBaseURL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
