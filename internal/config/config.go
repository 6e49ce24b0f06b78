package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string
	MySQLDSN   string
	DB         DBConfig
	ResetDB    bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret  string
	BcryptCost int
	CORSOrigin string

	GeocoderBaseURL  string
	GeocoderAPIKey   string
	GeocoderTimeout  time.Duration
	GeocoderCacheTTL time.Duration

	RabbitMQURL string
	RateLimit   RateLimitConfig

	SwaggerHost string
}

// DBConfig holds the discrete MySQL settings used when MYSQL_DSN is not set.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// RateLimitConfig controls the Redis token bucket applied to the auth endpoints.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "5000"),
		MySQLDSN:   os.Getenv("MYSQL_DSN"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "farmverify"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "farmverify"),
		},
		ResetDB: getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:  getEnv("JWT_SECRET", "default-secret-change-in-production"),
		BcryptCost: getEnvInt("BCRYPT_COST", 12),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		GeocoderBaseURL:  getEnv("GEOCODER_BASE_URL", "https://api.openrouteservice.org"),
		GeocoderAPIKey:   os.Getenv("HEIGIT_API_KEY"),
		GeocoderTimeout:  getEnvDuration("GEOCODER_TIMEOUT", 5*time.Second),
		GeocoderCacheTTL: getEnvDuration("GEOCODER_CACHE_TTL", 24*time.Hour),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			Capacity:       getEnvInt("RATE_LIMIT_CAPACITY", 20),
			RefillTokens:   1,
			RefillInterval: getEnvDuration("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
			Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
		},

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}

	if cfg.RateLimit.Capacity < 1 {
		cfg.RateLimit.Capacity = 1
	}
	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}
	cfg.RateLimit.TTL = 5 * cfg.RateLimit.RefillInterval * time.Duration(cfg.RateLimit.Capacity)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
