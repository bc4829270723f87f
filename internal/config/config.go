package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Price    PriceConfig
	Snapshot SnapshotConfig
	IBKR     IBKRConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Price provider names.
const (
	ProviderHTTP  = "http"
	ProviderYahoo = "yahoo"
)

// PriceConfig configures the live price lookup.
type PriceConfig struct {
	Provider       string
	URLTemplate    string // must contain {symbol}
	FieldPath      string // jsonpath into the response body
	APIKey         string
	Timeout        time.Duration
	RatePerSecond  float64
	Burst          int
	MaxConcurrency int
}

// SnapshotConfig controls the scheduled report snapshot. An empty Schedule disables it.
type SnapshotConfig struct {
	Schedule string
}

// IBKRConfig holds the Flex Web Service credentials. Broker import is disabled
// unless both Token and QueryID are set.
type IBKRConfig struct {
	Token   string
	QueryID int
	BaseURL string
}

// Enabled reports whether broker import can run.
func (c IBKRConfig) Enabled() bool {
	return c.Token != "" && c.QueryID != 0
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_gains.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Price: PriceConfig{
			Provider:    strings.ToLower(getEnv("PRICE_PROVIDER", ProviderHTTP)),
			URLTemplate: getEnv("PRICE_URL_TEMPLATE", "http://localhost:8787/price?symbol={symbol}"),
			FieldPath:   getEnv("PRICE_FIELD_PATH", "$.close"),
		},
		Snapshot: SnapshotConfig{
			Schedule: os.Getenv("SNAPSHOT_SCHEDULE"),
		},
		IBKR: IBKRConfig{
			BaseURL: getEnv("IBKR_FLEX_URL", "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService"),
		},
	}

	var err error
	if config.Log.Pretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if config.Price.Timeout, err = getDuration("PRICE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.Price.RatePerSecond, err = getFloat("PRICE_RATE_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if config.Price.Burst, err = getInt("PRICE_BURST", 5); err != nil {
		return nil, err
	}
	if config.Price.MaxConcurrency, err = getInt("PRICE_MAX_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if config.Price.APIKey, err = loadSecret("PRICE_API_KEY"); err != nil {
		return nil, err
	}
	if config.IBKR.Token, err = loadSecret("IBKR_FLEX_TOKEN"); err != nil {
		return nil, err
	}
	if config.IBKR.QueryID, err = getInt("IBKR_FLEX_QUERY_ID", 0); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// Validate checks value ranges that cannot be expressed as defaults.
func (c *Config) Validate() error {
	switch c.Price.Provider {
	case ProviderHTTP:
		if !strings.Contains(c.Price.URLTemplate, "{symbol}") {
			return errors.New("PRICE_URL_TEMPLATE must contain {symbol}")
		}
	case ProviderYahoo:
	default:
		return fmt.Errorf("unknown PRICE_PROVIDER %q", c.Price.Provider)
	}
	if c.Price.Timeout <= 0 {
		return errors.New("PRICE_TIMEOUT must be positive")
	}
	if c.Price.RatePerSecond <= 0 {
		return errors.New("PRICE_RATE_PER_SECOND must be positive")
	}
	if c.Price.Burst < 1 {
		return errors.New("PRICE_BURST must be at least 1")
	}
	if c.Price.MaxConcurrency < 1 {
		return errors.New("PRICE_MAX_CONCURRENCY must be at least 1")
	}
	if c.IBKR.QueryID < 0 {
		return errors.New("IBKR_FLEX_QUERY_ID cannot be negative")
	}
	return nil
}

// loadSecret returns the variable name, or decrypts name+"_ENCRYPTED" with ENCRYPTION_KEY.
func loadSecret(name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	token := os.Getenv(name + "_ENCRYPTED")
	if token == "" {
		return "", nil
	}
	secret, err := DecryptSecret(token, os.Getenv("ENCRYPTION_KEY"))
	if err != nil {
		return "", fmt.Errorf("%s_ENCRYPTED: %w", name, err)
	}
	return secret, nil
}

// DecryptSecret opens a fernet token with the given base64 key. Tokens do not expire.
func DecryptSecret(token, encodedKey string) (string, error) {
	if encodedKey == "" {
		return "", errors.New("ENCRYPTION_KEY is required")
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode encryption key: %w", err)
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), -1, []*fernet.Key{key})
	if msg == nil {
		return "", errors.New("failed to decrypt secret")
	}
	return string(msg), nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
