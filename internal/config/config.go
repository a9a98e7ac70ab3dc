// Package config reads the settings of the long running fin processes from
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates the configuration of fin serve and fin jobs.
type Config struct {
	HTTP      HTTPConfig
	Logging   LoggingConfig
	Store     StoreConfig
	Providers ProvidersConfig
	Insights  InsightsConfig
	Jobs      JobsConfig
	Auth      AuthConfig
}

// HTTPConfig governs the JSON API server.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr is the listen address.
func (c HTTPConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// StoreConfig locates the ledger.
type StoreConfig struct {
	// DSN is a postgres:// URL or a path to a JSONL file.
	DSN      string
	Currency string
}

// ProvidersConfig configures market data retrieval.
type ProvidersConfig struct {
	CacheDir  string
	EODHDKey  string
	StockKind string // yahoo|eodhd
}

// InsightsConfig configures the insight service.
type InsightsConfig struct {
	CachePath string
	TTL       time.Duration
	Model     string
	Narrate   bool
}

// JobsConfig holds the cron schedule of every background job, an empty
// schedule disables the job.
type JobsConfig struct {
	SubscriptionsSync string
	PriceRefresh      string
	Insights          string
	Notifications     string
}

// AuthConfig enables bearer authentication on the API when Secret is set.
type AuthConfig struct {
	Secret string
}

const (
	defaultHost            = "127.0.0.1"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultLedger          = "fin.jsonl"
	defaultCurrency        = "INR"
	defaultInsightsTTL     = 6 * time.Hour
)

// Load reads a .env file from the working directory when there is one, then
// builds the configuration from the environment with defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("invalid .env file: %w", err)
	}
	cacheDir, _ := os.UserCacheDir()
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("FIN_HTTP_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("FIN_LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("FIN_LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("FIN_LOG_INCLUDE_CALLER", false),
		},
		Store: StoreConfig{
			DSN:      valueOrDefault("FIN_STORE", valueOrDefault("FIN_LEDGER_FILE", defaultLedger)),
			Currency: strings.ToUpper(valueOrDefault("FIN_CURRENCY", defaultCurrency)),
		},
		Providers: ProvidersConfig{
			CacheDir:  valueOrDefault("FIN_CACHE_DIR", filepath.Join(cacheDir, "fin")),
			EODHDKey:  os.Getenv("EODHD_API_KEY"),
			StockKind: valueOrDefault("FIN_STOCK_PROVIDER", "yahoo"),
		},
		Insights: InsightsConfig{
			CachePath: valueOrDefault("FIN_INSIGHTS_CACHE", filepath.Join(cacheDir, "fin", "insights.json")),
			Model:     os.Getenv("FIN_INSIGHTS_MODEL"),
			Narrate:   os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "",
		},
		Jobs: JobsConfig{
			SubscriptionsSync: valueOrDefault("FIN_JOB_SUBSCRIPTIONS", "@daily"),
			PriceRefresh:      valueOrDefault("FIN_JOB_PRICES", "0 19 * * 1-5"),
			Insights:          valueOrDefault("FIN_JOB_INSIGHTS", "@every 6h"),
			Notifications:     valueOrDefault("FIN_JOB_NOTIFICATIONS", "0 8 * * *"),
		},
		Auth: AuthConfig{Secret: os.Getenv("FIN_AUTH_SECRET")},
	}

	port, err := parsePort("FIN_HTTP_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"FIN_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout, defaultReadTimeout},
		{"FIN_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout, defaultWriteTimeout},
		{"FIN_HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout, defaultShutdownTimeout},
		{"FIN_INSIGHTS_TTL", &cfg.Insights.TTL, defaultInsightsTTL},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationWithDefault(d.key, d.def); err != nil {
			return Config{}, err
		}
	}

	switch cfg.Providers.StockKind {
	case "yahoo", "eodhd":
	default:
		return Config{}, fmt.Errorf("invalid FIN_STOCK_PROVIDER %q: want yahoo or eodhd", cfg.Providers.StockKind)
	}
	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
