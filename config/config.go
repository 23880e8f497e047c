package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource     string
	MondayAPIURL   string
	MondayAPIToken string
	MondayBoardID  string
	FixturePath    string

	MapboxToken  string
	MapboxAPIURL string

	CacheBackend    string
	CacheMaxAgeDays int
	SQLitePath      string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	RouteTarget   string
	ListenAddr    string
	ChromeBin     string
	CSVOutputPath string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataSource:     getEnv("DATA_SOURCE", "monday"),
		MondayAPIURL:   getEnv("MONDAY_API_URL", "https://api.monday.com/v2"),
		MondayAPIToken: getEnv("MONDAY_API_TOKEN", ""),
		MondayBoardID:  getEnv("MONDAY_BOARD_ID", ""),
		FixturePath:    getEnv("FIXTURE_PATH", "./fixtures/boards.yaml"),

		MapboxToken:  getEnv("MAPBOX_TOKEN", ""),
		MapboxAPIURL: getEnv("MAPBOX_API_URL", "https://api.mapbox.com"),

		CacheBackend:    getEnv("CACHE_BACKEND", "memory"),
		CacheMaxAgeDays: getEnvInt("CACHE_MAX_AGE_DAYS", 30),
		SQLitePath:      getEnv("SQLITE_PATH", "./output/geocode_cache.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "listingmap"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "listingmap"),
		PostgresDB:       getEnv("POSTGRES_DB", "listing_map"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		RouteTarget:   getEnv("ROUTE_TARGET", "google"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/listings.csv"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// CacheMaxAge is the age after which a cached geocode is considered stale.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
