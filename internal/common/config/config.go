// internal/common/config/config.go
package config

import "fmt"

type Config struct {
	App         AppConfig               `mapstructure:"app"`
	Camunda     CamundaConfig           `mapstructure:"camunda"`
	Dataset     DatasetConfig           `mapstructure:"dataset"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Scoring     ScoringConfig           `mapstructure:"scoring"`
	Ranking     RankingConfig           `mapstructure:"ranking"`
	Preferences PreferencesConfig       `mapstructure:"preferences"`
	HTTP        HTTPConfig              `mapstructure:"http"`
	Workers     map[string]WorkerConfig `mapstructure:"workers"`
	Logging     LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Dataset sources.
const (
	SourceCSV           = "csv"
	SourcePostgres      = "postgres"
	SourceElasticsearch = "elasticsearch"
)

type DatasetConfig struct {
	Source       string `mapstructure:"source"`
	CSVPath      string `mapstructure:"csv_path"`
	Encoding     string `mapstructure:"encoding"` // latin1 or utf8
	Table        string `mapstructure:"table"`
	Index        string `mapstructure:"index"`
	DefaultFee   int    `mapstructure:"default_fee"`
	BackfillSeed int64  `mapstructure:"backfill_seed"` // 0 seeds from the clock
	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // seconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Vibe scoring policies.
const (
	VibePolicyCount   = "count"
	VibePolicyJaccard = "jaccard"
)

type ScoringConfig struct {
	VibePolicy  string  `mapstructure:"vibe_policy"`
	MaxPossible float64 `mapstructure:"max_possible"`
}

type RankingConfig struct {
	MaxResults  int  `mapstructure:"max_results"`
	Parallelism int  `mapstructure:"parallelism"`
	Jitter      bool `mapstructure:"jitter"`
}

type PreferencesConfig struct {
	BudgetCeiling      float64 `mapstructure:"budget_ceiling"`
	BudgetTipThreshold float64 `mapstructure:"budget_tip_threshold"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
