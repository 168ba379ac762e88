package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oclem/tenderwise/internal/domain/matching"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ContractRowRepository loads historical contract rows. The scraped tables
// have no fixed name or schema: the repository discovers the first table
// whose name contains "contrato" and hands its rows over untyped, leaving
// column interpretation to the matching package.
type ContractRowRepository struct {
	db  Querier
	log logging.Logger

	// table caches the discovered table name across calls.
	table string
}

// NewContractRowRepository builds the repository.
func NewContractRowRepository(db Querier, log logging.Logger) *ContractRowRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ContractRowRepository{db: db, log: log.Named("contract_rows")}
}

// Rows loads up to limit rows from the discovered contracts table.
func (r *ContractRowRepository) Rows(ctx context.Context, limit int) ([]matching.Row, error) {
	if limit <= 0 {
		limit = 5000
	}

	table, err := r.discoverTable(ctx)
	if err != nil {
		return nil, err
	}

	// The table name comes from information_schema, not from user input, and
	// is quoted as an identifier.
	query := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, pgx.Identifier{table}.Sanitize(), limit)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying contract rows")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var out []matching.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "reading contract row")
		}
		row := matching.Row{Columns: columns, Values: make(map[string]string, len(columns))}
		for i, v := range values {
			if i < len(columns) {
				row.Values[columns[i]] = renderValue(v)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating contract rows")
	}

	r.log.Debug("contract rows loaded",
		logging.String("table", table),
		logging.Int("rows", len(out)),
	)
	return out, nil
}

func (r *ContractRowRepository) discoverTable(ctx context.Context) (string, error) {
	if r.table != "" {
		return r.table, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "listing tables")
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning table name")
		}
		if strings.Contains(strings.ToLower(name), "contrato") {
			r.table = name
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating tables")
	}
	return "", errors.New(errors.ErrCodeDatasetEmpty, "no contracts table found")
}

// renderValue stringifies a database value the way the scraped sources wrote
// it, so downstream text parsing behaves the same for live and test data.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
