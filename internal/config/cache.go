package config

import "time"

// CacheConfig defines settings for the per-owner note list cache.
// When Enabled is false or no Redis client is available, listings always
// go to the database. Prefix namespaces the keys, TTL bounds staleness for
// writers that bypass this service.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

func loadCacheConfig(errs *[]error) CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true, errs),
		TTL:     envDuration("CACHE_TTL", 30*time.Second, errs),
		Prefix:  getenv("CACHE_PREFIX", "notes"),
	}
}
