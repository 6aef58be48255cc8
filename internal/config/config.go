package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	AccessLog           bool
	CORSAllowOrigins    string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventChannel        string
	SessionTTL          time.Duration
	SessionCacheTTL     time.Duration
	BcryptCost          int
	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHALLENGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Challenge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.access_log", false)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("events.channel", "challenge")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cache_ttl", "5m")
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("auth.rate_limit.max", 10)
	v.SetDefault("auth.rate_limit.window", "1m")

	sessionTTL, err := parseDuration(v.GetString("session.ttl"), "24h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("session.cache_ttl"), "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid session cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("auth.rate_limit.window"), "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate limit window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		AccessLog:           v.GetBool("app.access_log"),
		CORSAllowOrigins:    v.GetString("cors.allow_origins"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventChannel:        strings.TrimSpace(v.GetString("events.channel")),
		SessionTTL:          sessionTTL,
		SessionCacheTTL:     cacheTTL,
		BcryptCost:          v.GetInt("auth.bcrypt_cost"),
		AuthRateLimitMax:    v.GetInt("auth.rate_limit.max"),
		AuthRateLimitWindow: window,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	if cfg.AuthRateLimitMax <= 0 {
		cfg.AuthRateLimitMax = 10
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if value == "0" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
