package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`
	DBPath     string `yaml:"db_path"`

	// JWT
	JWTSecret        string        `yaml:"jwt_secret"`
	JWTAccessExpiry  time.Duration `yaml:"jwt_access_expiry"`
	JWTRefreshExpiry time.Duration `yaml:"jwt_refresh_expiry"`

	// Media
	MediaRoot      string `yaml:"media_root"`
	MediaURL       string `yaml:"media_url"`
	MaxUploadBytes int    `yaml:"max_upload_bytes"`

	// Rate limiting (Redis optional, falls back to in-memory)
	RedisAddr          string `yaml:"redis_addr"`
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`

	// Server
	Port        string `yaml:"port"`
	CORSOrigins string `yaml:"cors_origins"`
	SentryDSN   string `yaml:"sentry_dsn"`
	AppEnv      string `yaml:"app_env"`
}

func defaults() *Config {
	return &Config{
		DBDriver:  "postgres",
		DBHost:    "localhost",
		DBPort:    "5432",
		DBUser:    "postgres",
		DBName:    "recipe_db",
		DBSSLMode: "disable",
		DBPath:    "recipe.db",

		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,

		MediaRoot:      "media",
		MediaURL:       "/static/media",
		MaxUploadBytes: 10 * 1024 * 1024,

		RateLimitPerMinute: 60,

		Port:        "8080",
		CORSOrigins: "*",
		AppEnv:      "development",
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// at path, then .env and the process environment. Later sources win.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("DB_SSLMODE", cfg.DBSSLMode)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTAccessExpiry = parseDuration(os.Getenv("JWT_ACCESS_EXPIRY"), cfg.JWTAccessExpiry)
	cfg.JWTRefreshExpiry = parseDuration(os.Getenv("JWT_REFRESH_EXPIRY"), cfg.JWTRefreshExpiry)

	cfg.MediaRoot = getEnv("MEDIA_ROOT", cfg.MediaRoot)
	cfg.MediaURL = getEnv("MEDIA_URL", cfg.MediaURL)
	cfg.MaxUploadBytes = parseInt(os.Getenv("MAX_UPLOAD_BYTES"), cfg.MaxUploadBytes)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = parseInt(os.Getenv("REDIS_DB"), cfg.RedisDB)
	cfg.RateLimitPerMinute = parseInt(os.Getenv("RATE_LIMIT_PER_MINUTE"), cfg.RateLimitPerMinute)

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.SentryDSN = getEnv("SENTRY_DSN", cfg.SentryDSN)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)

	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
