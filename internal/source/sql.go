package source

import (
	"context"

	dbconnector "soldage-iot-backend"
	"soldage-iot-backend/internal/telemetry"
)

// SQLSource reads directly from a readings table.
type SQLSource struct {
	Connector dbconnector.ReadingConnector
}

func NewSQLSource(cfg dbconnector.ConnectionConfig) (*SQLSource, error) {
	conn, err := dbconnector.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return &SQLSource{Connector: conn}, nil
}

func (s *SQLSource) FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	return s.Connector.FetchReadings(ctx, q)
}

// Check pings the database and verifies the readings table layout.
func (s *SQLSource) Check(ctx context.Context) error {
	if err := s.Connector.TestConnection(ctx); err != nil {
		return err
	}
	cols, err := s.Connector.DescribeTable(ctx)
	if err != nil {
		return err
	}
	return dbconnector.CheckColumns(cols)
}

func (s *SQLSource) Close() error {
	return s.Connector.Close()
}
