// internal/workers/housing/calculate-housing-score/config.go
package calculatehousingscore

import "time"

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	MaxPossible float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		MaxPossible: 75,
	}
}
