// internal/workers/loan/check-document-completeness/config.go
package checkdocumentcompleteness

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
