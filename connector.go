// file: connector.go
package dbconnector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

const (
	defaultReadingTable = "readings"
	defaultFetchLimit   = 50000
)

// ReadingConnector reads welding telemetry from a SQL readings table.
type ReadingConnector interface {
	TestConnection(ctx context.Context) error

	DescribeTable(ctx context.Context) ([]ColumnInfo, error)

	FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error)

	Close() error
}

type ConnectionConfig struct {
	Type     string `yaml:"type"` // mysql | postgres | mssql | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"` // file path or ":memory:" for sqlite
	SSLMode  string `yaml:"ssl_mode"`
	Table    string `yaml:"table"`
}

func (c ConnectionConfig) table() string {
	if strings.TrimSpace(c.Table) == "" {
		return defaultReadingTable
	}
	return strings.TrimSpace(c.Table)
}

type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
}

type baseConnector struct {
	cfg ConnectionConfig
	db  *sql.DB
}

func (b *baseConnector) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// dialect describes how one SQL flavour quotes names and binds arguments.
type dialect struct {
	name        string
	maxSegments int
	quote       func(string) string
	placeholder func(n int) string
	// topLimit places the row limit as SELECT TOP (n) instead of LIMIT n.
	topLimit bool
	bindTime func(time.Time) any
}

func (d dialect) timeArg(t time.Time) any {
	if d.bindTime != nil {
		return d.bindTime(t.UTC())
	}
	return t.UTC()
}

func questionMark(int) string { return "?" }

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func splitIdentifier(ident string) ([]string, error) {
	trimmed := strings.TrimSpace(ident)
	if trimmed == "" {
		return nil, errors.New("identifier is empty")
	}
	parts := strings.Split(trimmed, ".")
	for _, part := range parts {
		if part == "" {
			return nil, errors.New("identifier contains empty segment")
		}
		if !identPattern.MatchString(part) {
			return nil, fmt.Errorf("identifier segment %q is invalid", part)
		}
	}
	return parts, nil
}

func quoteQualified(ident string, maxSegments int, quote func(string) string) (string, []string, error) {
	parts, err := splitIdentifier(ident)
	if err != nil {
		return "", nil, err
	}
	if maxSegments > 0 && len(parts) > maxSegments {
		return "", nil, fmt.Errorf("identifier %q has too many segments", ident)
	}
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = quote(part)
	}
	return strings.Join(quoted, "."), parts, nil
}

func quoteList(names []string, quote func(string) string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("no columns provided")
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			return "", errors.New("column name is empty")
		}
		parts, err := splitIdentifier(name)
		if err != nil || len(parts) != 1 {
			return "", fmt.Errorf("invalid column name %q", name)
		}
		quoted[i] = quote(name)
	}
	return strings.Join(quoted, ", "), nil
}

// buildReadingQuery renders the newest-first readings query for one dialect.
// The window is half-open: created_at >= begin AND created_at < end.
func buildReadingQuery(d dialect, table string, q telemetry.ReadingQuery) (string, []any, error) {
	quotedTable, _, err := quoteQualified(table, d.maxSegments, d.quote)
	if err != nil {
		return "", nil, fmt.Errorf("invalid %s table: %w", d.name, err)
	}
	selectClause, err := quoteList(readingColumns, d.quote)
	if err != nil {
		return "", nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	args := []any{}
	where := []string{}
	if q.MachineID != "" {
		args = append(args, q.MachineID)
		where = append(where, fmt.Sprintf("%s = %s", d.quote(colMachineID), d.placeholder(len(args))))
	}
	args = append(args, d.timeArg(q.BeginAt))
	where = append(where, fmt.Sprintf("%s >= %s", d.quote(colCreatedAt), d.placeholder(len(args))))
	args = append(args, d.timeArg(q.EndAt))
	where = append(where, fmt.Sprintf("%s < %s", d.quote(colCreatedAt), d.placeholder(len(args))))

	var b strings.Builder
	b.WriteString("SELECT ")
	if d.topLimit {
		fmt.Fprintf(&b, "TOP (%d) ", limit)
	}
	fmt.Fprintf(&b, "%s FROM %s WHERE %s ORDER BY %s DESC", selectClause, quotedTable, strings.Join(where, " AND "), d.quote(colCreatedAt))
	if !d.topLimit {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String(), args, nil
}

func fetchReadings(ctx context.Context, db *sql.DB, d dialect, table string, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args, err := buildReadingQuery(d, table, q)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s readings: %w", d.name, err)
	}
	defer rows.Close()
	maps, err := scanRowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s readings: %w", d.name, err)
	}
	readings := make([]telemetry.ReadingRecord, 0, len(maps))
	for _, row := range maps {
		r, err := readingFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode %s reading: %w", d.name, err)
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func scanRowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		for i := range values {
			var v any
			values[i] = &v
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := *(values[i].(*any))
			row[strings.ToLower(col)] = normalizeValue(v)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	default:
		return t
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	default:
		f, ok := toFloat(v)
		return f != 0, ok
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseTime(t)
	default:
		return time.Time{}, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
