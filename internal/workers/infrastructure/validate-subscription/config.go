// internal/workers/infrastructure/validate-subscription/config.go
package validatesubscription

import "time"

// DefaultCacheTTL bounds how long a sub:<organizationId> entry may serve a
// tier after it changes in the database.
const DefaultCacheTTL = 5 * time.Minute

type Config struct {
	Timeout time.Duration
	// CacheTTL is the Redis expiry of a cached subscription row. Zero or
	// negative falls back to DefaultCacheTTL; Redis would otherwise keep the
	// entry forever.
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		CacheTTL: DefaultCacheTTL,
	}
}

func (c *Config) cacheTTL() time.Duration {
	if c.CacheTTL <= 0 {
		return DefaultCacheTTL
	}
	return c.CacheTTL
}
