package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	LogLevel string `yaml:"log_level"`

	// Layout analysis
	FooterHeight float64 `yaml:"footer_height"`
	HeaderBand   float64 `yaml:"header_band"`
	RowTolerance float64 `yaml:"row_tolerance"`
	BlockGap     float64 `yaml:"block_gap"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Optional outputs and storage
	CacheDB    string `yaml:"cache_db"`
	TablesXLSX string `yaml:"tables_xlsx"`

	StatsWindow time.Duration `yaml:"stats_window"`
	ResultTTL   time.Duration `yaml:"result_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           "8090",
		LogLevel:       "info",
		FooterHeight:   100,
		HeaderBand:     0.25,
		RowTolerance:   3,
		BlockGap:       0.6,
		MaxUploadBytes: 52428800, // 50MB
		StatsWindow:    1 * time.Hour,
		ResultTTL:      1 * time.Hour,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONTRACTGEST_CONFIG, then environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONTRACTGEST_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("CONTRACTGEST_API_KEY", cfg.APIKey)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	cfg.FooterHeight = envFloat("FOOTER_HEIGHT", cfg.FooterHeight)
	cfg.HeaderBand = envFloat("HEADER_BAND", cfg.HeaderBand)
	cfg.RowTolerance = envFloat("ROW_TOLERANCE", cfg.RowTolerance)
	cfg.BlockGap = envFloat("BLOCK_GAP", cfg.BlockGap)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.CacheDB = envOr("CACHE_DB", cfg.CacheDB)
	cfg.TablesXLSX = envOr("TABLES_XLSX", cfg.TablesXLSX)

	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.ResultTTL = envDuration("RESULT_TTL", cfg.ResultTTL)

	def := Default()
	if cfg.FooterHeight <= 0 {
		cfg.FooterHeight = def.FooterHeight
	}
	if cfg.HeaderBand <= 0 || cfg.HeaderBand > 1 {
		cfg.HeaderBand = def.HeaderBand
	}
	if cfg.RowTolerance <= 0 {
		cfg.RowTolerance = def.RowTolerance
	}
	if cfg.BlockGap <= 0 {
		cfg.BlockGap = def.BlockGap
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = def.StatsWindow
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = def.ResultTTL
	}

	return cfg, nil
}

// Validate checks the settings the HTTP server needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CONTRACTGEST_API_KEY is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
