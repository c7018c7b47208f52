package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	LedgerFile        string
	WarehouseBaseURL  string
	WarehouseTimeout  time.Duration
	PusherWorkers     int
	PusherQueueSize   int
	PusherDrainWindow time.Duration
	ShutdownTimeout   time.Duration
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		LedgerFile:        envDefault("LEDGER_FILE", "operations-ledger.json"),
		WarehouseBaseURL:  strings.TrimSpace(os.Getenv("WAREHOUSE_BASE_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	var err error
	if cfg.WarehouseTimeout, err = secondsEnv("WAREHOUSE_TIMEOUT_SECONDS", 5); err != nil {
		return Config{}, err
	}
	if cfg.PusherWorkers, err = positiveIntEnv("PUSHER_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.PusherQueueSize, err = positiveIntEnv("PUSHER_QUEUE_CAPACITY", 256); err != nil {
		return Config{}, err
	}
	if cfg.PusherDrainWindow, err = secondsEnv("PUSHER_DRAIN_TIMEOUT_SECONDS", 10); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = secondsEnv("SHUTDOWN_TIMEOUT_SECONDS", 15); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func positiveIntEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func secondsEnv(key string, fallbackSeconds int) (time.Duration, error) {
	n, err := positiveIntEnv(key, fallbackSeconds)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
