package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"k9harmony/pkg/client"
	"k9harmony/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	StoreBackend      string
	StoreReadTimeout  time.Duration
	StoreWriteTimeout time.Duration
	StoreMaxAttempts  int
	StoreRetryDelay   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockTTL time.Duration

	PaymentGatewayURL   string
	PaymentGatewayToken string
	PaymentLocationID   string
	PaymentTimeout      time.Duration
	DefaultCurrency     string

	DefaultTimeZone        string
	DefaultLessonMinutes   int
	DefaultBufferMinutes   int
	DefaultMaxAdvanceDays  int
	DefaultMultiAnimalRate float64
	DefaultMaxLessonMin    int

	EventsEnabled         bool
	EventsTopic           string
	ReconciliationTopic   string
	EventsDLQTopic        string
	ReconciliationJournal string

	APIBaseURL string

	Log    *logger.Logger
	Client *client.Client
}

// Default returns a configuration filled with defaults only. Load overlays the environment on top of it.
func Default(serviceName string) *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,

		StoreBackend:      DefaultStoreBackend,
		StoreReadTimeout:  DefaultStoreReadTimeout,
		StoreWriteTimeout: DefaultStoreWriteTimeout,
		StoreMaxAttempts:  DefaultStoreMaxAttempts,
		StoreRetryDelay:   DefaultStoreRetryDelay,

		RedisDB: DefaultRedisDB,

		Port: DefaultPort,

		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,

		RequestTimeout: DefaultRequestTimeout,
		IdempotencyTTL: DefaultIdempotencyTTL,
		MaxRequestSize: DefaultMaxRequestSize,

		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,

		LockTTL: DefaultLockTTL,

		PaymentTimeout:  DefaultPaymentTimeout,
		DefaultCurrency: DefaultCurrency,

		DefaultTimeZone:        DefaultTimeZone,
		DefaultLessonMinutes:   DefaultLessonMinutes,
		DefaultBufferMinutes:   DefaultBufferMinutes,
		DefaultMaxAdvanceDays:  DefaultMaxAdvanceDays,
		DefaultMultiAnimalRate: DefaultMultiAnimalRate,
		DefaultMaxLessonMin:    DefaultMaxLessonMin,

		EventsTopic:           DefaultEventsTopic,
		ReconciliationTopic:   DefaultReconciliationTopic,
		EventsDLQTopic:        DefaultEventsDLQTopic,
		ReconciliationJournal: DefaultReconciliationJournal,

		APIBaseURL: DefaultAPIBaseURL,

		Log:    logger.New(logger.Config{Service: serviceName}),
		Client: client.NewClient(),
	}
}

func Load(serviceName string) *Config {
	cfg := Default(serviceName)

	cfg.MongoURI = getEnvStr(EnvMongoURI, cfg.MongoURI)
	cfg.MongoDatabaseName = getEnvStr(EnvMongoDatabaseName, cfg.MongoDatabaseName)
	cfg.MongoConnTimeout = getEnvDuration(EnvMongoConnTimeout, cfg.MongoConnTimeout)

	cfg.StoreBackend = getEnvStr(EnvStoreBackend, cfg.StoreBackend)
	cfg.StoreReadTimeout = getEnvDuration(EnvStoreReadTimeout, cfg.StoreReadTimeout)
	cfg.StoreWriteTimeout = getEnvDuration(EnvStoreWriteTimeout, cfg.StoreWriteTimeout)
	cfg.StoreMaxAttempts = getEnvNum(EnvStoreMaxAttempts, cfg.StoreMaxAttempts)
	cfg.StoreRetryDelay = getEnvDuration(EnvStoreRetryDelay, cfg.StoreRetryDelay)

	cfg.RedisAddr = getEnvStr(EnvRedisAddr, "")
	cfg.RedisPassword = getEnvStr(EnvRedisPassword, "")
	cfg.RedisDB = getEnvNum(EnvRedisDB, cfg.RedisDB)

	cfg.Port = getEnvStr(EnvPort, cfg.Port)

	cfg.RateLimitRequests = getEnvNum(EnvRateLimitRequests, cfg.RateLimitRequests)
	cfg.RateLimitWindow = getEnvDuration(EnvRateLimitWindow, cfg.RateLimitWindow)

	cfg.RequestTimeout = getEnvDuration(EnvRequestTimeout, cfg.RequestTimeout)
	cfg.IdempotencyTTL = getEnvDuration(EnvIdempotencyTTL, cfg.IdempotencyTTL)
	cfg.MaxRequestSize = getEnvNum(EnvMaxRequestSize, cfg.MaxRequestSize)

	cfg.ReadTimeout = getEnvDuration(EnvReadTimeout, cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvDuration(EnvWriteTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvDuration(EnvIdleTimeout, cfg.IdleTimeout)
	cfg.ShutdownTimeout = getEnvDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)

	cfg.LockTTL = getEnvDuration(EnvLockTTL, cfg.LockTTL)

	cfg.PaymentGatewayURL = getEnvStr(EnvPaymentGatewayURL, "")
	cfg.PaymentGatewayToken = getEnvStr(EnvPaymentGatewayToken, "")
	cfg.PaymentLocationID = getEnvStr(EnvPaymentLocationID, "")
	cfg.PaymentTimeout = getEnvDuration(EnvPaymentTimeout, cfg.PaymentTimeout)
	cfg.DefaultCurrency = getEnvStr(EnvDefaultCurrency, cfg.DefaultCurrency)

	cfg.DefaultTimeZone = getEnvStr(EnvDefaultTimeZone, cfg.DefaultTimeZone)
	cfg.DefaultLessonMinutes = getEnvNum(EnvDefaultLessonMinutes, cfg.DefaultLessonMinutes)
	cfg.DefaultBufferMinutes = getEnvNum(EnvDefaultBufferMinutes, cfg.DefaultBufferMinutes)
	cfg.DefaultMaxAdvanceDays = getEnvNum(EnvDefaultMaxAdvanceDays, cfg.DefaultMaxAdvanceDays)
	cfg.DefaultMultiAnimalRate = getEnvFloat(EnvDefaultMultiAnimalRate, cfg.DefaultMultiAnimalRate)
	cfg.DefaultMaxLessonMin = getEnvNum(EnvDefaultMaxLessonMin, cfg.DefaultMaxLessonMin)

	cfg.EventsEnabled = getEnvBool(EnvEventsEnabled, false)
	cfg.EventsTopic = getEnvStr(EnvEventsTopic, cfg.EventsTopic)
	cfg.ReconciliationTopic = getEnvStr(EnvReconciliationTopic, cfg.ReconciliationTopic)
	cfg.EventsDLQTopic = getEnvStr(EnvEventsDLQTopic, cfg.EventsDLQTopic)
	cfg.ReconciliationJournal = getEnvStr(EnvReconciliationJournal, cfg.ReconciliationJournal)

	cfg.APIBaseURL = getEnvStr(EnvAPIBaseURL, cfg.APIBaseURL)

	cfg.Log = logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects only when REDIS_ADDR is configured.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreBackend {
	case StoreBackendMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
	case StoreBackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [mongo, memory], got: %s", cfg.StoreBackend))
	}

	positive := []struct {
		name string
		d    time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"StoreReadTimeout", cfg.StoreReadTimeout},
		{"StoreWriteTimeout", cfg.StoreWriteTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"PaymentTimeout", cfg.PaymentTimeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.d))
		}
	}
	if cfg.StoreRetryDelay < 0 {
		errors = append(errors, fmt.Sprintf("StoreRetryDelay cannot be negative, got: %s", cfg.StoreRetryDelay))
	}

	if cfg.LockTTL < MinLockTTL || cfg.LockTTL > MaxLockTTL {
		errors = append(errors, fmt.Sprintf("LockTTL must be between %s and %s, got: %s", MinLockTTL, MaxLockTTL, cfg.LockTTL))
	}
	if cfg.PaymentTimeout >= cfg.LockTTL {
		errors = append(errors, fmt.Sprintf("PaymentTimeout (%s) must be shorter than LockTTL (%s)", cfg.PaymentTimeout, cfg.LockTTL))
	}

	if cfg.StoreMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("StoreMaxAttempts must be at least 1, got: %d", cfg.StoreMaxAttempts))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if !regexp.MustCompile(`^[A-Z]{3}$`).MatchString(cfg.DefaultCurrency) {
		errors = append(errors, fmt.Sprintf("DefaultCurrency must be a 3-letter ISO code, got: %s", cfg.DefaultCurrency))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone is not a known zone: %s", cfg.DefaultTimeZone))
	}
	if cfg.DefaultLessonMinutes <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultLessonMinutes must be positive, got: %d", cfg.DefaultLessonMinutes))
	}
	if cfg.DefaultBufferMinutes < 0 {
		errors = append(errors, fmt.Sprintf("DefaultBufferMinutes cannot be negative, got: %d", cfg.DefaultBufferMinutes))
	}
	if cfg.DefaultMaxAdvanceDays < 0 {
		errors = append(errors, fmt.Sprintf("DefaultMaxAdvanceDays cannot be negative, got: %d", cfg.DefaultMaxAdvanceDays))
	}
	if cfg.DefaultMultiAnimalRate < 1 {
		errors = append(errors, fmt.Sprintf("DefaultMultiAnimalRate must be >= 1, got: %g", cfg.DefaultMultiAnimalRate))
	}
	if cfg.DefaultMaxLessonMin < cfg.DefaultLessonMinutes {
		errors = append(errors, fmt.Sprintf("DefaultMaxLessonMin (%d) must be >= DefaultLessonMinutes (%d)", cfg.DefaultMaxLessonMin, cfg.DefaultLessonMinutes))
	}

	if cfg.EventsEnabled && (cfg.EventsTopic == "" || cfg.ReconciliationTopic == "") {
		errors = append(errors, "EventsTopic and ReconciliationTopic are required when events are enabled")
	}
	if cfg.ReconciliationJournal == "" {
		errors = append(errors, "ReconciliationJournal cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_backend", cfg.StoreBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"store_read_timeout", cfg.StoreReadTimeout,
		"store_write_timeout", cfg.StoreWriteTimeout,
		"store_max_attempts", cfg.StoreMaxAttempts,
		"redis_enabled", cfg.RedisAddr != "",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"lock_ttl", cfg.LockTTL,
		"payment_gateway_set", cfg.PaymentGatewayURL != "",
		"payment_token_set", cfg.PaymentGatewayToken != "",
		"payment_timeout", cfg.PaymentTimeout,
		"default_currency", cfg.DefaultCurrency,
		"default_time_zone", cfg.DefaultTimeZone,
		"default_max_advance_days", cfg.DefaultMaxAdvanceDays,
		"events_enabled", cfg.EventsEnabled,
		"reconciliation_journal", cfg.ReconciliationJournal,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
