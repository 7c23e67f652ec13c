// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	DBPath          string
	LogLevel        string
	LogFormat       string // "json" or "text"
	CalibrationPath string

	RecomputeSchedule string // cron spec
	SchedulerEnabled  bool

	CORSOrigins []string

	// MaxWindowDays bounds the ?from=&to= window of API queries.
	MaxWindowDays int
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "apevault.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		CalibrationPath:   getEnv("CALIBRATION_PATH", ""),
		RecomputeSchedule: getEnv("RECOMPUTE_SCHEDULE", "@every 1h"),
		SchedulerEnabled:  getEnvAsBool("SCHEDULER_ENABLED", true),
		CORSOrigins:       getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		MaxWindowDays:     getEnvAsInt("MAX_WINDOW_DAYS", 366),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil && val > 0 {
		return val
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
