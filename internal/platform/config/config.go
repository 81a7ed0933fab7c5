package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	IdempotencyTTL time.Duration
	EventDedupTTL  time.Duration

	EnableDeadlineResolver  bool
	EnableOutboxRelay       bool
	EnableRegistryConsumer  bool
	DeadlineResolverPeriod  time.Duration
	OutboxRelayPeriod       time.Duration
	DeadlineResolverBatch   int
	OutboxRelayBatch        int
	RegistryConsumerGroupID string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "fundlock"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		EventDedupTTL:  envDuration("EVENT_DEDUP_TTL", 7*24*time.Hour),

		EnableDeadlineResolver:  envBool("ENABLE_DEADLINE_RESOLVER", true),
		EnableOutboxRelay:       envBool("ENABLE_OUTBOX_RELAY", true),
		EnableRegistryConsumer:  envBool("ENABLE_REGISTRY_CONSUMER", true),
		DeadlineResolverPeriod:  envDuration("DEADLINE_RESOLVER_PERIOD", 30*time.Second),
		OutboxRelayPeriod:       envDuration("OUTBOX_RELAY_PERIOD", 2*time.Second),
		DeadlineResolverBatch:   envInt("DEADLINE_RESOLVER_BATCH", 50),
		OutboxRelayBatch:        envInt("OUTBOX_RELAY_BATCH", 100),
		RegistryConsumerGroupID: os.Getenv("REGISTRY_CONSUMER_GROUP"),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
