package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // "none", "gzip", "snappy", "lz4", "zstd"

	ConsumerStartOffset    int64 // -1 = newest, -2 = oldest
	ConsumerMinBytes       int
	ConsumerMaxBytes       int
	ConsumerMaxWait        time.Duration
	ConsumerCommitInterval time.Duration
	ConsumerMaxRetries     int
	ConsumerRetryBackoff   time.Duration
}

func Default() *Config {
	return &Config{
		Brokers:                splitBrokers(DefaultKafkaBrokers),
		ProducerMaxAttempts:    DefaultProducerMaxAttempts,
		ProducerBatchTimeout:   DefaultProducerBatchTimeout,
		ProducerRequireAcks:    DefaultProducerRequireAcks,
		ProducerCompression:    DefaultProducerCompression,
		ConsumerStartOffset:    DefaultConsumerStartOffset,
		ConsumerMinBytes:       DefaultConsumerMinBytes,
		ConsumerMaxBytes:       DefaultConsumerMaxBytes,
		ConsumerMaxWait:        DefaultConsumerMaxWait,
		ConsumerCommitInterval: DefaultConsumerCommitInterval,
		ConsumerMaxRetries:     DefaultConsumerMaxRetries,
		ConsumerRetryBackoff:   DefaultConsumerRetryBackoff,
	}
}

// Load overlays KAFKA_* environment variables on the defaults.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Brokers = splitBrokers(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers))

	cfg.ProducerMaxAttempts = getEnvInt(EnvKafkaProducerMaxAttempts, cfg.ProducerMaxAttempts)
	cfg.ProducerBatchTimeout = getEnvDuration(EnvKafkaProducerBatchTimeout, cfg.ProducerBatchTimeout)
	cfg.ProducerRequireAcks = getEnvInt(EnvKafkaProducerRequireAcks, cfg.ProducerRequireAcks)
	cfg.ProducerCompression = getEnvStr(EnvKafkaProducerCompression, cfg.ProducerCompression)

	cfg.ConsumerStartOffset = getEnvInt64(EnvKafkaConsumerStartOffset, cfg.ConsumerStartOffset)
	cfg.ConsumerMinBytes = getEnvInt(EnvKafkaConsumerMinBytes, cfg.ConsumerMinBytes)
	cfg.ConsumerMaxBytes = getEnvInt(EnvKafkaConsumerMaxBytes, cfg.ConsumerMaxBytes)
	cfg.ConsumerMaxWait = getEnvDuration(EnvKafkaConsumerMaxWait, cfg.ConsumerMaxWait)
	cfg.ConsumerCommitInterval = getEnvDuration(EnvKafkaConsumerCommitInterval, cfg.ConsumerCommitInterval)
	cfg.ConsumerMaxRetries = getEnvInt(EnvKafkaConsumerMaxRetries, cfg.ConsumerMaxRetries)
	cfg.ConsumerRetryBackoff = getEnvDuration(EnvKafkaConsumerRetryBackoff, cfg.ConsumerRetryBackoff)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}

	if cfg.ProducerMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}
	if cfg.ProducerBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}

	validCompressions := map[string]bool{"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true}
	if !validCompressions[cfg.ProducerCompression] {
		errors = append(errors, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}

	validAcks := map[int]bool{-1: true, 0: true, 1: true}
	if !validAcks[cfg.ProducerRequireAcks] {
		errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerStartOffset < -2 {
		errors = append(errors, fmt.Sprintf("ConsumerStartOffset must be -1 (newest), -2 (oldest), or >= 0, got: %d", cfg.ConsumerStartOffset))
	}
	if cfg.ConsumerMinBytes <= 0 || cfg.ConsumerMaxBytes < cfg.ConsumerMinBytes {
		errors = append(errors, fmt.Sprintf("ConsumerMinBytes/ConsumerMaxBytes invalid, got: %d/%d", cfg.ConsumerMinBytes, cfg.ConsumerMaxBytes))
	}
	if cfg.ConsumerMaxWait <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxWait must be positive, got: %s", cfg.ConsumerMaxWait))
	}
	if cfg.ConsumerCommitInterval < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerCommitInterval cannot be negative, got: %s", cfg.ConsumerCommitInterval))
	}
	if cfg.ConsumerMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}

	if len(errors) > 0 {
		errMsg := "kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		brokers = append(brokers, strings.TrimSpace(b))
	}
	return brokers
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if int64Value, err := strconv.ParseInt(value, 10, 64); err == nil {
			return int64Value
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
