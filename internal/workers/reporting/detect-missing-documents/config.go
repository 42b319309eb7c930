// internal/workers/reporting/detect-missing-documents/config.go
package detectmissingdocuments

import "time"

type Config struct {
	Timeout  time.Duration
	DemoMode bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
