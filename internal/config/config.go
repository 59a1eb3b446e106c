package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// Config is the server configuration, read from DOCSCAN_* environment
// variables.
type Config struct {
	LogLevel  string
	LogFormat string

	Strategies    []detection.Strategy
	Binarize      detection.Binarization
	WorkingHeight int

	OCRLanguage string
	OCRTimeout  time.Duration

	Filter      imaging.Filter
	JPEGQuality int

	CacheSize int
}

// UsesOCR reports whether the configured chain needs a recognizer.
func (c *Config) UsesOCR() bool {
	for _, s := range c.Strategies {
		if s == detection.StrategyTextHint {
			return true
		}
	}
	return false
}

// LoadFromEnv reads the DOCSCAN_* environment variables, applies defaults
// for unset ones and validates the result. The error names the offending
// variable.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:    strings.ToLower(getEnvOrDefault("DOCSCAN_LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnvOrDefault("DOCSCAN_LOG_FORMAT", "text")),
		OCRLanguage: getEnvOrDefault("DOCSCAN_OCR_LANGUAGE", "eng"),
	}

	var err error
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid DOCSCAN_LOG_LEVEL: %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid DOCSCAN_LOG_FORMAT: %q", cfg.LogFormat)
	}

	if cfg.Strategies, err = detection.ParseStrategies(getEnvOrDefault("DOCSCAN_STRATEGIES", "text-hint,edge-contour")); err != nil {
		return nil, fmt.Errorf("invalid DOCSCAN_STRATEGIES: %w", err)
	}
	if cfg.Binarize, err = detection.ParseBinarization(getEnvOrDefault("DOCSCAN_BINARIZE", "otsu")); err != nil {
		return nil, fmt.Errorf("invalid DOCSCAN_BINARIZE: %w", err)
	}
	if cfg.Filter, err = imaging.ParseFilter(getEnvOrDefault("DOCSCAN_FILTER", "none")); err != nil {
		return nil, fmt.Errorf("invalid DOCSCAN_FILTER: %w", err)
	}

	if cfg.WorkingHeight, err = parseIntOrDefault("DOCSCAN_WORKING_HEIGHT", 500); err != nil {
		return nil, err
	}
	if cfg.WorkingHeight < 0 {
		return nil, fmt.Errorf("DOCSCAN_WORKING_HEIGHT must be >= 0 (got %d)", cfg.WorkingHeight)
	}

	if cfg.JPEGQuality, err = parseIntOrDefault("DOCSCAN_JPEG_QUALITY", imaging.DefaultJPEGQuality); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("DOCSCAN_JPEG_QUALITY must be 1-100 (got %d)", cfg.JPEGQuality)
	}

	if cfg.CacheSize, err = parseIntOrDefault("DOCSCAN_CACHE_SIZE", imaging.DefaultFrameCacheSize); err != nil {
		return nil, err
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("DOCSCAN_CACHE_SIZE must be >= 1 (got %d)", cfg.CacheSize)
	}

	if cfg.OCRTimeout, err = parseDurationOrDefault("DOCSCAN_OCR_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.OCRTimeout <= 0 {
		return nil, fmt.Errorf("DOCSCAN_OCR_TIMEOUT must be > 0 (got %s)", cfg.OCRTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return d, nil
}

func parseIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}
