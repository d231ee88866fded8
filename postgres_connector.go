// file: postgres_connector.go
package dbconnector

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"soldage-iot-backend/internal/telemetry"
)

var postgresDialect = dialect{
	name:        "postgres",
	maxSegments: 2,
	quote:       func(s string) string { return "\"" + s + "\"" },
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

type PostgresConnector struct {
	baseConnector
}

func newPostgresConnector(cfg ConnectionConfig) (*PostgresConnector, error) {
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
	db, err := openDatabase("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	return &PostgresConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func (c *PostgresConnector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (c *PostgresConnector) DescribeTable(ctx context.Context) ([]ColumnInfo, error) {
	_, parts, err := quoteQualified(c.cfg.table(), postgresDialect.maxSegments, postgresDialect.quote)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres table: %w", err)
	}
	name := parts[len(parts)-1]
	schemaClause := "current_schema()"
	args := []any{name}
	if len(parts) == 2 {
		schemaClause = "$2"
		args = append(args, parts[0])
	}
	query := fmt.Sprintf("SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_schema = %s AND table_name = $1 ORDER BY ordinal_position", schemaClause)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query postgres columns: %w", err)
	}
	defer rows.Close()
	columns := []ColumnInfo{}
	for rows.Next() {
		var colName, dataType, isNullable string
		if err := rows.Scan(&colName, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("scan postgres column: %w", err)
		}
		columns = append(columns, ColumnInfo{
			Name:     colName,
			Type:     dataType,
			Nullable: strings.EqualFold(isNullable, "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postgres columns: %w", err)
	}
	return columns, nil
}

func (c *PostgresConnector) FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	return fetchReadings(ctx, c.db, postgresDialect, c.cfg.table(), q)
}
