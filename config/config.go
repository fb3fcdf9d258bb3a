package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/darellchua2/telegram-example-app/telegram"
)

// Config holds everything the bot reads from the environment. It is built
// once at startup; nothing mutates it afterwards.
type Config struct {
	BotToken        string
	WebhookSecret   string
	Host            string
	Port            int
	AuthorizedUsers []int64
	LogLevel        string
	ProxyURL        string
}

// Load reads .env if present, then the environment. BOT_TOKEN and
// WEBHOOK_SECRET are required; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		Host:          getEnv("HOST", "0.0.0.0"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ProxyURL:      os.Getenv("TL_PROXY"),
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET environment variable is required")
	}

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("PORT must be an integer: %v", err)
	}
	cfg.Port = port

	users, err := telegram.ParseUserIDs(os.Getenv("AUTHORIZED_USERS"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTHORIZED_USERS: %w", err)
	}
	cfg.AuthorizedUsers = users

	return cfg, nil
}

// Addr is the listen address for the webhook server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogSummary logs the non-sensitive configuration values.
func (c *Config) LogSummary() {
	log.WithFields(log.Fields{
		"addr":                   c.Addr(),
		"authorized_users_count": len(c.AuthorizedUsers),
		"log_level":              c.LogLevel,
		"proxy_configured":       c.ProxyURL != "",
	}).Info("configuration loaded")
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}
