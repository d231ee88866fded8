// file: sqlite_connector.go
package dbconnector

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"soldage-iot-backend/internal/telemetry"
)

// sqliteTimeLayout is fixed width so created_at compares correctly as text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

var sqliteDialect = dialect{
	name:        "sqlite",
	maxSegments: 1,
	quote:       func(s string) string { return "\"" + s + "\"" },
	placeholder: questionMark,
	bindTime:    func(t time.Time) any { return t.Format(sqliteTimeLayout) },
}

// SQLiteConnector reads a local readings file, typically one filled by
// weldctl import for offline reports.
type SQLiteConnector struct {
	baseConnector
}

func newSQLiteConnector(cfg ConnectionConfig) (*SQLiteConnector, error) {
	path := strings.TrimSpace(cfg.Database)
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}
	db, err := openDatabase("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	return &SQLiteConnector{baseConnector{cfg: cfg, db: db}}, nil
}

// OpenSQLite opens a sqlite readings store directly.
func OpenSQLite(path, table string) (*SQLiteConnector, error) {
	cfg := ConnectionConfig{Type: "sqlite", Database: path, Table: table}
	if _, err := splitIdentifier(cfg.table()); err != nil {
		return nil, fmt.Errorf("invalid readings table: %w", err)
	}
	return newSQLiteConnector(cfg)
}

func (c *SQLiteConnector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

func (c *SQLiteConnector) DescribeTable(ctx context.Context) ([]ColumnInfo, error) {
	quoted, _, err := quoteQualified(c.cfg.table(), sqliteDialect.maxSegments, sqliteDialect.quote)
	if err != nil {
		return nil, fmt.Errorf("invalid sqlite table: %w", err)
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoted))
	if err != nil {
		return nil, fmt.Errorf("query sqlite columns: %w", err)
	}
	defer rows.Close()
	columns := []ColumnInfo{}
	for rows.Next() {
		var (
			cid       int
			name      string
			dataType  string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan sqlite column: %w", err)
		}
		columns = append(columns, ColumnInfo{Name: name, Type: dataType, Nullable: notNull == 0})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sqlite columns: %w", err)
	}
	return columns, nil
}

func (c *SQLiteConnector) FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	return fetchReadings(ctx, c.db, sqliteDialect, c.cfg.table(), q)
}

// EnsureSchema creates the readings table when it does not exist.
func (c *SQLiteConnector) EnsureSchema(ctx context.Context) error {
	table, _, err := quoteQualified(c.cfg.table(), sqliteDialect.maxSegments, sqliteDialect.quote)
	if err != nil {
		return fmt.Errorf("invalid sqlite table: %w", err)
	}
	index, _, err := quoteQualified("idx_"+c.cfg.table()+"_machine_created", 1, sqliteDialect.quote)
	if err != nil {
		return fmt.Errorf("invalid sqlite index: %w", err)
	}
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		machine_id TEXT NOT NULL,
		machine_code TEXT,
		machine_description TEXT,
		client_id TEXT,
		client_name TEXT,
		created_at TEXT NOT NULL,
		welding_current REAL NOT NULL DEFAULT 0,
		welding_voltage REAL NOT NULL DEFAULT 0,
		arc_status INTEGER NOT NULL DEFAULT 0,
		wire_speed REAL NOT NULL DEFAULT 0,
		voltage_l1 REAL NOT NULL DEFAULT 0,
		voltage_l2 REAL NOT NULL DEFAULT 0,
		voltage_l3 REAL NOT NULL DEFAULT 0,
		current_l1 REAL NOT NULL DEFAULT 0,
		current_l2 REAL NOT NULL DEFAULT 0,
		current_l3 REAL NOT NULL DEFAULT 0,
		input_power REAL NOT NULL DEFAULT 0,
		gas_flow REAL NOT NULL DEFAULT 0,
		UNIQUE(machine_id, created_at)
	);
	CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(machine_id, created_at);
	`, table, index)
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create sqlite readings table: %w", err)
	}
	return nil
}

// InsertReadings stores readings, ignoring ones already present.
func (c *SQLiteConnector) InsertReadings(ctx context.Context, readings []telemetry.ReadingRecord) (int, error) {
	table, _, err := quoteQualified(c.cfg.table(), sqliteDialect.maxSegments, sqliteDialect.quote)
	if err != nil {
		return 0, fmt.Errorf("invalid sqlite table: %w", err)
	}
	columns, err := quoteList(readingColumns, sqliteDialect.quote)
	if err != nil {
		return 0, err
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(readingColumns)), ", ")
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, columns, marks)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sqlite import: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare sqlite insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range readings {
		arc := 0
		if r.ArcStatus {
			arc = 1
		}
		res, err := stmt.ExecContext(ctx,
			r.ID, r.MachineID, r.MachineCode, r.MachineDescription, r.ClientID, r.ClientName,
			sqliteDialect.timeArg(r.Timestamp),
			r.WeldingCurrent, r.WeldingVoltage, arc, r.WireSpeed,
			r.VoltageL1, r.VoltageL2, r.VoltageL3,
			r.CurrentL1, r.CurrentL2, r.CurrentL3,
			r.InputPower, r.GasFlow,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert reading %s: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sqlite import: %w", err)
	}
	return inserted, nil
}
