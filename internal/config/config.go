package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		Env             string
		Port            string
		Debug           bool
		FrontendURL     string
		ShutdownTimeout time.Duration
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Enabled  bool
		Host     string
		Port     string
		Password string
		DB       int
	}
	Cache struct {
		ImageTTL time.Duration
	}
	Proxy struct {
		Port       string
		BackendURL string
		Timeout    time.Duration
	}
}

// IsDevelopment reports whether verbose error details may reach clients.
func (c *Config) IsDevelopment() bool {
	return c.App.Debug
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Env = strings.ToLower(getEnv("APP_ENV", "production"))
	cfg.App.Port = getEnv("PORT", "4000")
	cfg.App.Debug = getEnvAsBool("DEBUG", cfg.App.Env == "development")
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "*")
	cfg.App.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "db")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "eusi")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "orbital")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	cfg.Cache.ImageTTL = getEnvAsDuration("IMAGE_CACHE_TTL", 10*time.Minute)

	// Proxy
	cfg.Proxy.Port = getEnv("PROXY_PORT", "3000")
	cfg.Proxy.BackendURL = strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:4000"), "/")
	cfg.Proxy.Timeout = getEnvAsDuration("PROXY_TIMEOUT", 30*time.Second)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
