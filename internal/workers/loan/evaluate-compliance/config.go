// internal/workers/loan/evaluate-compliance/config.go
package evaluatecompliance

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
