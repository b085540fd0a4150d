// Package config loads and validates the service configuration from env
// files and environment variables. Both binaries share one Config shape;
// each reads its own env file (api_gateway.env, recon_processor.env).
package config

import (
	"errors"
	"strings"
	"time"
)

// Config is the full configuration tree, validated once at startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	POS         POSConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig tunes the gateway's HTTP listener.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig covers both sides of the reconciliation topic: the gateway
// producer and the processor consumer group, plus the DLQ topic.
type KafkaConfig struct {
	Brokers           string
	ReconTopic        string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string // relative to the working directory
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig controls the poller that moves computed ledgers from the
// Postgres outbox into MongoDB.
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// POSConfig describes upstream POS API access. HistoryConcurrency bounds the
// per-transaction history fan-out; the upstream API is rate sensitive, so the
// bound protects it rather than local throughput.
type POSConfig struct {
	BaseURL            string
	Token              string
	RequestTimeout     time.Duration
	HistoryConcurrency int
	RateLimitPerMin    int
}

// checker accumulates validation failures so startup reports all of them at
// once instead of one per restart.
type checker struct {
	problems []string
}

func (ck *checker) required(name, value string) {
	if value == "" {
		ck.problems = append(ck.problems, name+" is required")
	}
}

func (ck *checker) positive(name string, value int64) {
	if value <= 0 {
		ck.problems = append(ck.problems, name+" must be greater than 0")
	}
}

func (ck *checker) positiveDuration(name string, value time.Duration) {
	ck.positive(name, int64(value))
}

func (c *Config) validate() error {
	ck := &checker{}

	ck.positive("SERVER_PORT", int64(c.Server.Port))
	ck.positiveDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	ck.positiveDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	ck.positiveDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	ck.positiveDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)

	ck.required("KAFKA_BROKERS", c.Kafka.Brokers)
	ck.required("KAFKA_RECON_TOPIC", c.Kafka.ReconTopic)
	ck.required("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	ck.required("KAFKA_DLQ_TOPIC", c.Kafka.DLQTopic)
	ck.positive("KAFKA_CONSUMER_MIN_BYTES", int64(c.Kafka.MinBytes))
	ck.positive("KAFKA_CONSUMER_MAX_BYTES", int64(c.Kafka.MaxBytes))
	ck.positiveDuration("KAFKA_CONSUMER_MAX_WAIT", c.Kafka.MaxWait)

	ck.required("POSTGRES_URL", c.Postgres.URL)
	ck.positive("POSTGRES_MAX_CONNS", int64(c.Postgres.MaxConns))
	ck.positive("POSTGRES_MIN_CONNS", int64(c.Postgres.MinConns))
	ck.positiveDuration("POSTGRES_MAX_CONN_LIFETIME", c.Postgres.ConnMaxLifetime)
	ck.positiveDuration("POSTGRES_MAX_CONN_IDLE_TIME", c.Postgres.ConnMaxIdleTime)

	ck.required("MONGO_URI", c.MongoDB.URI)
	ck.required("MONGO_DATABASE", c.MongoDB.Database)
	ck.positiveDuration("MONGO_TIMEOUT", c.MongoDB.Timeout)
	ck.positive("MONGO_MAX_POOL_SIZE", int64(c.MongoDB.MaxPoolSize))
	ck.positive("MONGO_MIN_POOL_SIZE", int64(c.MongoDB.MinPoolSize))
	ck.positiveDuration("MONGO_MAX_CONN_IDLE_TIME", c.MongoDB.MaxConnIdleTime)

	ck.positiveDuration("OUTBOX_POLLING_INTERVAL", c.Outbox.PollingInterval)
	ck.positive("OUTBOX_BATCH_SIZE", int64(c.Outbox.BatchSize))
	ck.positive("OUTBOX_MAX_RETRY_ATTEMPTS", int64(c.Outbox.MaxRetryAttempts))

	ck.required("POS_API_BASE_URL", c.POS.BaseURL)
	ck.required("POS_API_TOKEN", c.POS.Token)
	ck.positiveDuration("POS_API_REQUEST_TIMEOUT", c.POS.RequestTimeout)
	ck.positive("POS_HISTORY_CONCURRENCY", int64(c.POS.HistoryConcurrency))
	ck.positive("POS_RATE_LIMIT_PER_MIN", int64(c.POS.RateLimitPerMin))

	if len(ck.problems) > 0 {
		return errors.New(strings.Join(ck.problems, ", "))
	}
	return nil
}
