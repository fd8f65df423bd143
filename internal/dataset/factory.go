// internal/dataset/factory.go
package dataset

import (
	"database/sql"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"homematch-workers/internal/common/config"
)

// Backends carries the clients a configured source may need. Only the one
// matching the configured source has to be set.
type Backends struct {
	Postgres      *sql.DB
	Elasticsearch *elasticsearch.Client
}

func NewSource(cfg config.DatasetConfig, b Backends) (Source, error) {
	switch cfg.Source {
	case config.SourceCSV, "":
		return NewCSVSource(cfg.CSVPath, cfg.Encoding), nil
	case config.SourcePostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("postgres source configured without a database connection")
		}
		return NewPostgresSource(b.Postgres, cfg.Table)
	case config.SourceElasticsearch:
		if b.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch source configured without a client")
		}
		return NewElasticsearchSource(b.Elasticsearch, cfg.Index), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}
