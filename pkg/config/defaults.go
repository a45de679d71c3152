package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "k9harmony"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultStoreBackend      = StoreBackendMongo
	DefaultStoreReadTimeout  = 5 * time.Second
	DefaultStoreWriteTimeout = 5 * time.Second
	DefaultStoreMaxAttempts  = 3
	DefaultStoreRetryDelay   = 100 * time.Millisecond

	DefaultRedisDB = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockTTL = 5 * time.Minute
	MinLockTTL     = 30 * time.Second
	MaxLockTTL     = 30 * time.Minute

	DefaultPaymentTimeout  = 10 * time.Second
	DefaultCurrency        = "JPY"
	DefaultTimeZone        = "Asia/Tokyo"
	DefaultLessonMinutes   = 90
	DefaultBufferMinutes   = 30
	DefaultMaxAdvanceDays  = 60
	DefaultMultiAnimalRate = 1.5
	DefaultMaxLessonMin    = 120

	DefaultReconciliationJournal = "reconciliation.jsonl"
	DefaultEventsTopic           = "booking-events"
	DefaultReconciliationTopic   = "booking-reconciliation"
	DefaultEventsDLQTopic        = "dlq-booking-service"

	DefaultAPIBaseURL = "http://localhost:8080"
)

const (
	StoreBackendMongo  = "mongo"
	StoreBackendMemory = "memory"
)
