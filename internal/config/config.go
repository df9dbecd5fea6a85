package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	OriginPatterns  []string
	ShutdownTimeout time.Duration
	Development     bool
}

// Load reads configuration from the environment, with a .env file as a
// convenience in development. Every value has a usable default.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ORIGIN_PATTERNS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.OriginPatterns = append(cfg.OriginPatterns, p)
			}
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ShutdownTimeout = time.Duration(n) * time.Second
		}
	}
	cfg.Development = os.Getenv("DEV") == "true"

	return cfg
}
