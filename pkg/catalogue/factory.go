// pkg/catalogue/factory.go
package catalogue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"moviefuse/pkg/config"
)

// ConnectorFactory creates catalogue connectors
type ConnectorFactory struct {
	cfg    *config.CatalogueConfig
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.CatalogueConfig, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector creates the connector for the configured catalogue driver
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (Connector, error) {
	switch f.cfg.Driver {
	case config.DriverPostgres:
		f.logger.Info("Creating PostgreSQL catalogue connector")
		connector, err := NewPostgresConnector(ctx, f.cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
		return connector, nil
	case config.DriverSnowflake:
		f.logger.Info("Creating Snowflake catalogue connector")
		connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake)
		if err != nil {
			return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
		}
		return connector, nil
	default:
		return nil, fmt.Errorf("unsupported catalogue driver %q", f.cfg.Driver)
	}
}
