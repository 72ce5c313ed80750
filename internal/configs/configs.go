package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RateLimit              int
	ShutdownTimeoutSeconds int

	RedisAddr       string
	RealtimeMode    string
	RealtimeChannel string

	IdentityMode string
	JWTSecret    string

	BlobRoot    string
	BlobBaseURL string
	GeocoderURL string

	PollIntervalSeconds    int
	ResubscribeWaitSeconds int

	AutoArchiveDays            int
	AutoArchiveIntervalMinutes int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "tasks.db"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),

		RedisAddr:       fmt.Sprintf("%s:%s", redisHost, redisPort),
		RealtimeMode:    getEnv("REALTIME_MODE", "redis"),
		RealtimeChannel: getEnv("REALTIME_CHANNEL", "task_events"),

		IdentityMode: getEnv("IDENTITY_MODE", "session"),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		BlobRoot:    getEnv("BLOB_ROOT", "uploads"),
		BlobBaseURL: getEnv("BLOB_BASE_URL", "http://127.0.0.1:8080/files"),
		GeocoderURL: getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),

		PollIntervalSeconds:    getEnvAsInt("SYNC_POLL_INTERVAL_SECONDS", 30),
		ResubscribeWaitSeconds: getEnvAsInt("SYNC_RESUBSCRIBE_WAIT_SECONDS", 3),

		AutoArchiveDays:            getEnvAsInt("AUTO_ARCHIVE_DAYS", 30),
		AutoArchiveIntervalMinutes: getEnvAsInt("AUTO_ARCHIVE_INTERVAL_MINUTES", 60),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.RealtimeMode != "redis" && cfg.RealtimeMode != "memory" {
		log.Fatal("REALTIME_MODE must be redis or memory")
	}
	if cfg.IdentityMode != "session" && cfg.IdentityMode != "demo" {
		log.Fatal("IDENTITY_MODE must be session or demo")
	}
	if cfg.IdentityMode == "session" && cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set when IDENTITY_MODE is session")
	}
	if cfg.PollIntervalSeconds <= 0 {
		log.Fatal("SYNC_POLL_INTERVAL_SECONDS must be greater than 0")
	}
	if cfg.ResubscribeWaitSeconds <= 0 {
		log.Fatal("SYNC_RESUBSCRIBE_WAIT_SECONDS must be greater than 0")
	}
	if cfg.AutoArchiveDays <= 0 {
		log.Fatal("AUTO_ARCHIVE_DAYS must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}
