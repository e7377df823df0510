// pkg/catalogue/snowflake.go
package catalogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"moviefuse/pkg/config"
)

// SnowflakeConnector implements the Connector interface for Snowflake, for
// deployments where the catalogue extract is hosted in a warehouse instead
// of a local PostgreSQL instance
type SnowflakeConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")

	// Create DSN using Snowflake's DSN builder
	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	connector := &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database handle
func (c *SnowflakeConnector) DB() *sqlx.DB {
	return c.db
}

// Validate verifies the Snowflake connection and the catalogue tables
func (c *SnowflakeConnector) Validate() error {
	var version string
	err := c.db.QueryRow("SELECT CURRENT_VERSION()").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to query Snowflake version: %w", err)
	}
	c.logger.Info("Connected to Snowflake", zap.String("version", version))

	for _, table := range catalogueTables {
		var count int
		err := c.db.QueryRow(`
			SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = ? AND LOWER(table_name) = ?
		`, strings.ToUpper(c.cfg.Schema), table).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check catalogue table %s: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("catalogue table %s is missing", table)
		}
	}

	c.logger.Info("Snowflake catalogue validated",
		zap.String("database", c.cfg.Database),
		zap.String("schema", c.cfg.Schema),
		zap.String("warehouse", c.cfg.Warehouse))

	return nil
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
