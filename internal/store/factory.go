package store

import "k9harmony/pkg/config"

// FromConfig builds the configured backend wrapped in the retry policy.
// The mongo backend connects through cfg.Client, so callers must shut it down via cfg.
func FromConfig(cfg *config.Config) Store {
	var base Store
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		cfg.Log.Warn("Using in-memory store, data is lost on restart")
		base = NewMemory()
	default:
		if cfg.Client.Mongo == nil {
			cfg.SetMongo()
		}
		base = NewMongoStore(
			cfg.Client.Mongo.Database(cfg.MongoDatabaseName),
			cfg.StoreReadTimeout,
			cfg.StoreWriteTimeout,
		)
	}
	return NewRetrying(base, cfg.StoreMaxAttempts, cfg.StoreRetryDelay, cfg.Log.Component("store"))
}
