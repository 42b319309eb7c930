// internal/workers/reporting/generate-health-dept-report/config.go
package generatehealthdeptreport

import "time"

type Config struct {
	Timeout  time.Duration
	DemoMode bool // used when the job does not set demoMode
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
