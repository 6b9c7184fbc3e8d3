package config

import (
	// Go Internal Packages
	"time"

	// Local Packages
	errors "sms-ledger/errors"
)

var DefaultConfig = []byte(`
application: "sms-ledger"

logger:
  level: "debug"

is_prod_mode: false

store:
  driver: "mongo"

mongo:
  uri: "mongodb://localhost:27017"
  database: "ledger"

sqlite:
  dsn: "ledger.db"

redis:
  enabled: false
  uri: "localhost:6379"
  password: ""
  lock_ttl: "30s"
  archive_ttl: "720h"

kafka:
  brokers:
    - "localhost:9092"
  topic: "raw-sms"
  records_per_poll: 500
  consumer_name: "sms-ledger"

matcher:
  run_after_ingest: true
`)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Application string  `koanf:"application"`
	Logger      Logger  `koanf:"logger"`
	IsProdMode  bool    `koanf:"is_prod_mode"`
	Store       Store   `koanf:"store"`
	Mongo       Mongo   `koanf:"mongo"`
	SQLite      SQLite  `koanf:"sqlite"`
	Redis       Redis   `koanf:"redis"`
	Kafka       Kafka   `koanf:"kafka"`
	Matcher     Matcher `koanf:"matcher"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Store struct {
	Driver string `koanf:"driver"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type SQLite struct {
	DSN string `koanf:"dsn"`
}

type Redis struct {
	Enabled    bool          `koanf:"enabled"`
	URI        string        `koanf:"uri"`
	Password   string        `koanf:"password"`
	LockTTL    time.Duration `koanf:"lock_ttl"`
	ArchiveTTL time.Duration `koanf:"archive_ttl"`
}

type Kafka struct {
	Brokers        []string `koanf:"brokers"`
	Topic          string   `koanf:"topic"`
	RecordsPerPoll int      `koanf:"records_per_poll"`
	ConsumerName   string   `koanf:"consumer_name"`
}

type Matcher struct {
	RunAfterIngest bool `koanf:"run_after_ingest"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			ve.Add("mongo.uri", "cannot be empty")
		}
		if c.Mongo.Database == "" {
			ve.Add("mongo.database", "cannot be empty")
		}
	case DriverSQLite:
		if c.SQLite.DSN == "" {
			ve.Add("sqlite.dsn", "cannot be empty")
		}
	case DriverMemory:
	default:
		ve.Add("store.driver", "must be one of mongo, sqlite, memory")
	}

	if c.Redis.Enabled {
		if c.Redis.URI == "" {
			ve.Add("redis.uri", "cannot be empty")
		}
		if c.Redis.LockTTL <= 0 {
			ve.Add("redis.lock_ttl", "must be positive")
		}
	}

	return ve.Err()
}

// ValidateConsumer checks the settings only the kafka consumer needs.
func (c *Config) ValidateConsumer() error {
	ve := errors.ValidationErrs()

	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}
	if c.Kafka.ConsumerName == "" {
		ve.Add("kafka.consumer_name", "cannot be empty")
	}
	if c.Kafka.RecordsPerPoll <= 0 {
		ve.Add("kafka.records_per_poll", "must be positive")
	}

	return ve.Err()
}
