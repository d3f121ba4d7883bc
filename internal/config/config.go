package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (classification queue)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Gemini
	GeminiModel   string
	GeminiEnabled bool

	// Workers
	RecurringInterval time.Duration
	ClassifyTimeout   time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fluxo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fluxo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "classify_transactions"),

		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEnabled: getEnv("GEMINI_API_KEY", "") != "",

		RecurringInterval: getEnvDuration("RECURRING_INTERVAL", time.Hour),
		ClassifyTimeout:   getEnvDuration("CLASSIFY_TIMEOUT", 30*time.Second),
	}
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create database directory %q: %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GeminiEnabled && c.GeminiModel == "" {
		errs = append(errs, "Gemini model cannot be empty when GEMINI_API_KEY is set")
	}

	if c.RecurringInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid recurring interval %v: must be at least 1 minute", c.RecurringInterval))
	}
	if c.ClassifyTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid classify timeout %v: must be at least 1 second", c.ClassifyTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
