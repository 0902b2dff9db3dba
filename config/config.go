// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port   int
	DBPath string
	// RedisURL enables the stock mirror. Empty disables it.
	RedisURL string
	// Seed names a demo scenario loaded at startup when the catalog is empty.
	Seed        string
	CORSOrigins []string
}

func Load() Config {
	return Config{
		Port:        getenvInt("STOCK_PORT", 8080),
		DBPath:      getenv("STOCK_DB", "stock.db"),
		RedisURL:    getenv("STOCK_REDIS_URL", ""),
		Seed:        getenv("STOCK_SEED", ""),
		CORSOrigins: SplitList(getenv("STOCK_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}
}

// SplitList splits a comma separated value, dropping empty entries.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
