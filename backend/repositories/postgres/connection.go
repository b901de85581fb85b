package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avaolo/knowledge-plane/backend/config"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitAuditSchema creates the query audit table when it does not exist.
func (db *DB) InitAuditSchema(ctx context.Context) error {
	db.logger.Info("initializing audit schema")

	schema := `
		CREATE TABLE IF NOT EXISTS query_audits (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			query_text TEXT NOT NULL,
			farmer_id BIGINT,
			country_code TEXT NOT NULL DEFAULT '',
			context_hash TEXT NOT NULL,
			farmer_items INT NOT NULL,
			country_items INT NOT NULL,
			global_items INT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_query_audits_timestamp ON query_audits (timestamp);
		CREATE INDEX IF NOT EXISTS idx_query_audits_context_hash ON query_audits (context_hash);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return nil
}
