// internal/workers/housing/parse-housing-preferences/config.go
package parsehousingpreferences

import "time"

type Config struct {
	Timeout    time.Duration
	MaxRetries int
	// BudgetCeiling is the budget at or above which budget alone does not
	// count as an active filter.
	BudgetCeiling float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		BudgetCeiling: 300,
	}
}
