// Package config assembles connection settings from the environment.
// Each recognized variable maps directly to one collaborator's
// connection parameter; cmd mains layer flags on top of these defaults.
package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	defaultDBHost = "localhost"
	defaultDBPort = "5432"
	defaultDBName = "appdb"

	defaultQueueURL     = "nats://127.0.0.1:4222"
	defaultStream       = "telemetry"
	defaultTopic        = "data-topic"
	defaultSubscription = "data-subscription"
)

// DatabaseURL returns DATABASE_URL if set (test/fallback path),
// otherwise a postgres DSN assembled from the DB_* variables.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := getenv("DB_HOST", defaultDBHost)
	port := getenv("DB_PORT", defaultDBPort)
	name := getenv("DB_NAME", defaultDBName)

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)
}

// QueueURL returns the NATS server URL.
func QueueURL() string {
	return getenv("NATS_URL", defaultQueueURL)
}

// Stream returns the JetStream stream name.
func Stream() string {
	return getenv("QUEUE_STREAM", defaultStream)
}

// Topic returns the subject payloads are published to.
func Topic() string {
	return getenv("PUBSUB_TOPIC", defaultTopic)
}

// Subscription returns the durable consumer name.
func Subscription() string {
	return getenv("PUBSUB_SUBSCRIPTION", defaultSubscription)
}

// ArchiveRoot returns the archive root directory. Empty disables
// archiving.
func ArchiveRoot() string {
	return os.Getenv("BUCKET_NAME")
}

// LoadEnvFile loads environment variables from .env if it exists.
// Existing variables are not overridden.
func LoadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
