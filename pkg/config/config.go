package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Display       DisplayConfig
	Import        ImportConfig
	OCR           OCRConfig
	Export        ExportConfig
	Observability ObservabilityConfig
}

type DisplayConfig struct {
	CurrencySymbol    string
	TopN              int
	DrillDownCategory string
	SearchQuery       string
}

type ImportConfig struct {
	// CreditPositive is false when the bank prints credits as negative
	// numbers; amounts are then inverted once after normalization.
	CreditPositive bool
	RulesFile      string
}

type OCRConfig struct {
	Enabled       bool
	Timeout       time.Duration
	Language      string
	DPI           int
	PdftoppmPath  string
	TesseractPath string
}

type ExportConfig struct {
	Dir  string
	XLSX bool
}

type ObservabilityConfig struct {
	MetricsFile string
	LogLevel    string
	Debug       bool
}

// Load reads configuration from environment variables. Values in the given
// .env files (default ".env") are loaded first and never override variables
// already set; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Display: DisplayConfig{
			CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "R$"),
			TopN:              getEnvAsInt("TOP_N", 20),
			DrillDownCategory: getEnv("DRILLDOWN_CATEGORY", ""),
			SearchQuery:       getEnv("SEARCH_QUERY", ""),
		},
		Import: ImportConfig{
			CreditPositive: getEnvAsBool("CREDIT_POSITIVE", true),
			RulesFile:      getEnv("CATEGORY_RULES_FILE", ""),
		},
		OCR: OCRConfig{
			Enabled:       getEnvAsBool("OCR_ENABLED", true),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			Language:      getEnv("OCR_LANGUAGE", "por"),
			DPI:           getEnvAsInt("OCR_DPI", 200),
			PdftoppmPath:  getEnv("PDFTOPPM_PATH", ""),
			TesseractPath: getEnv("TESSERACT_PATH", ""),
		},
		Export: ExportConfig{
			Dir:  getEnv("EXPORT_DIR", "./exports"),
			XLSX: getEnvAsBool("EXPORT_XLSX", true),
		},
		Observability: ObservabilityConfig{
			MetricsFile: getEnv("METRICS_FILE", ""),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Debug:       getEnvAsBool("DEBUG", false),
		},
	}

	if cfg.Display.TopN <= 0 {
		return nil, errors.New("TOP_N must be positive")
	}
	if cfg.OCR.DPI <= 0 {
		return nil, errors.New("OCR_DPI must be positive")
	}
	if cfg.OCR.Timeout <= 0 {
		return nil, errors.New("OCR_TIMEOUT must be positive")
	}
	if _, err := parseLevel(cfg.Observability.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Level returns the slog level to log at. DEBUG=true always means debug.
func (o ObservabilityConfig) Level() slog.Level {
	if o.Debug {
		return slog.LevelDebug
	}
	level, err := parseLevel(o.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool also accepts the Portuguese "sim"/"não" used in older
// configuration files.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch valueStr {
	case "sim", "s":
		return true
	case "não", "nao", "n":
		return false
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
