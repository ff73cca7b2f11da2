package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string
	GinMode       string
	ListenAddr    string
	DisableAuth   bool
	DevUserID     uint64
}

// Load reads configuration from the environment. A .env file is honored
// when present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "worklog"),
		DBPassword:    getEnv("DB_PASSWORD", "worklog"),
		DBName:        getEnv("DB_NAME", "worklog"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		GinMode:       getEnv("GIN_MODE", "debug"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DisableAuth:   getEnvBool("DISABLE_AUTH", false),
	}

	if v := os.Getenv("DEV_USER_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEV_USER_ID %q: %w", v, err)
		}
		cfg.DevUserID = id
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces startup invariants. The auth bypass must never be
// enabled in production or CI; that is a configuration error, not a
// condition to ignore.
func (c *Config) validate() error {
	if c.DisableAuth {
		if c.IsProduction() {
			return fmt.Errorf("DISABLE_AUTH=true is not allowed when APP_ENV=%s", c.Env)
		}
		if os.Getenv("CI") != "" {
			return fmt.Errorf("DISABLE_AUTH=true is not allowed in CI")
		}
		if c.DevUserID == 0 {
			return fmt.Errorf("DISABLE_AUTH=true requires DEV_USER_ID")
		}
	}

	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required when APP_ENV=%s", c.Env)
	}
	if c.SessionSecret == "" {
		c.SessionSecret = "dev-secret-change-me"
	}

	return nil
}

// IsProduction reports whether the service runs with production semantics.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
