package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"taskboard/pkg/platform/strings"
)

// Server captures process-level configuration. Defaults live in the struct
// tags; every field can be overridden from the environment.
type Server struct {
	Addr            string        `env:"TASKBOARD_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Board    BoardConfig
}

type LogConfig struct {
	Level  string `env:"TASKBOARD_LOG_LEVEL" envDefault:"info"`
	Format string `env:"TASKBOARD_LOG_FORMAT" envDefault:"json"`
}

// DatabaseConfig selects the Postgres store. An empty URL keeps boards in
// memory.
type DatabaseConfig struct {
	URL          string        `env:"DATABASE_URL"`
	MaxOpenConns int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLife  time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig enables the board cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig enables the audit sink. No brokers means audit events stay in
// the in-process store.
type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic             string   `env:"KAFKA_TOPIC" envDefault:"taskboard.audit"`
	Partitions        int32    `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"KAFKA_TOPIC_REPLICATION" envDefault:"1"`
	OutboxSize        int      `env:"AUDIT_OUTBOX_SIZE" envDefault:"1024"`
}

type BoardConfig struct {
	CacheTTL           time.Duration `env:"BOARD_CACHE_TTL" envDefault:"5m"`
	MaxConflictRetries int           `env:"BOARD_MAX_CONFLICT_RETRIES" envDefault:"2"`
}

// FromEnv parses the environment into a Server config.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Kafka.Brokers = strings.DedupeAndTrim(cfg.Kafka.Brokers)
	if cfg.Board.MaxConflictRetries < 0 {
		return Server{}, fmt.Errorf("BOARD_MAX_CONFLICT_RETRIES must not be negative")
	}
	return cfg, nil
}
