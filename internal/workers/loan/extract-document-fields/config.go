// internal/workers/loan/extract-document-fields/config.go
package extractdocumentfields

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}
