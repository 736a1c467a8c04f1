package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the process configuration, all sourced from environment
// variables with local-development defaults.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	// PollInterval is the observer snapshot polling cadence.
	PollInterval time.Duration

	// CloseGracePeriod is how long the close protocol waits for in-flight
	// mutations before finalizing.
	CloseGracePeriod time.Duration

	// CodeMaxAttempts bounds join code allocation retries.
	CodeMaxAttempts int

	// StandardCap is the participant limit for standard-tier lobbies.
	StandardCap int
}

func Load() *Config {
	return &Config{
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "LectionData"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		PollInterval:     getDuration("POLL_INTERVAL", time.Second),
		CloseGracePeriod: getDuration("CLOSE_GRACE_PERIOD", 3*time.Second),
		CodeMaxAttempts:  getInt("CODE_MAX_ATTEMPTS", 100),
		StandardCap:      getInt("STANDARD_CAP", 10),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
