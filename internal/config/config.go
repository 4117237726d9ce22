package config

import "os"

// Config holds all server configuration, read from the environment.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string // empty disables trip-token checks on the websocket
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "3333"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
	}
	return cfg
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
