// internal/workers/housing/apply-housing-ranking/config.go
package applyhousingranking

import "time"

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	MaxResults  int
	SlowRanking time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		MaxResults:  10,
		SlowRanking: 500 * time.Millisecond,
	}
}
