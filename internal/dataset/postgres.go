// internal/dataset/postgres.go
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

var tableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// PostgresSource reads listings from a table mirroring the sheet columns.
// All columns are text so the same normalization applies as for CSV.
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if !tableNameRegexp.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) ID() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf(`
		SELECT name, type, fee_weekly, primary_faculty, secondary_faculty,
		       aircon, meal_plan, modules, room_types, vibes, image_url, virtual_tour
		FROM %s
		ORDER BY id`, s.table)
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	columns := []string{
		ColName, ColType, ColFeeWeekly, ColPrimaryFaculty, ColSecondaryFaculty,
		ColAirCon, ColMealPlan, ColModules, ColRoomTypes, ColVibes, ColImageURL, ColVirtualTour,
	}

	var out []Record
	for rows.Next() {
		vals := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			if vals[i].Valid {
				rec[col] = vals[i].String
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return out, nil
}
