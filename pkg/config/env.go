package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvStoreBackend      = "STORE_BACKEND"
	EnvStoreReadTimeout  = "STORE_READ_TIMEOUT"
	EnvStoreWriteTimeout = "STORE_WRITE_TIMEOUT"
	EnvStoreMaxAttempts  = "STORE_MAX_ATTEMPTS"
	EnvStoreRetryDelay   = "STORE_RETRY_DELAY"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockTTL = "LOCK_TTL"

	EnvPaymentGatewayURL   = "PAYMENT_GATEWAY_URL"
	EnvPaymentGatewayToken = "PAYMENT_GATEWAY_TOKEN"
	EnvPaymentLocationID   = "PAYMENT_LOCATION_ID"
	EnvPaymentTimeout      = "PAYMENT_TIMEOUT"
	EnvDefaultCurrency     = "DEFAULT_CURRENCY"

	EnvDefaultTimeZone        = "DEFAULT_TIME_ZONE"
	EnvDefaultLessonMinutes   = "DEFAULT_LESSON_MINUTES"
	EnvDefaultBufferMinutes   = "DEFAULT_BUFFER_MINUTES"
	EnvDefaultMaxAdvanceDays  = "DEFAULT_MAX_ADVANCE_DAYS"
	EnvDefaultMultiAnimalRate = "DEFAULT_MULTI_ANIMAL_MULTIPLIER"
	EnvDefaultMaxLessonMin    = "DEFAULT_MAX_LESSON_MINUTES"

	EnvEventsEnabled         = "EVENTS_ENABLED"
	EnvEventsTopic           = "EVENTS_TOPIC"
	EnvReconciliationTopic   = "RECONCILIATION_TOPIC"
	EnvEventsDLQTopic        = "EVENTS_DLQ_TOPIC"
	EnvReconciliationJournal = "RECONCILIATION_JOURNAL"

	EnvAPIBaseURL = "API_BASE_URL"
)
