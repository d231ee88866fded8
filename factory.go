// file: factory.go
package dbconnector

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func NewConnector(cfg ConnectionConfig) (ReadingConnector, error) {
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, errors.New("connection type is required")
	}
	if _, err := splitIdentifier(cfg.table()); err != nil {
		return nil, fmt.Errorf("invalid readings table: %w", err)
	}
	switch strings.ToLower(cfg.Type) {
	case "mysql":
		return newMySQLConnector(cfg)
	case "postgres", "postgresql":
		return newPostgresConnector(cfg)
	case "mssql", "sqlserver":
		return newMSSQLConnector(cfg)
	case "sqlite", "sqlite3":
		return newSQLiteConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func openDatabase(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}
