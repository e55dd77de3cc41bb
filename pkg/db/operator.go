package db

import (
	"context"

	"github.com/gnames/gnpull/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// Operator defines connection management for one PostgreSQL database.
// GNpull uses two operators, one for the remote database and one for the
// local database.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// GORM returns a GORM handle that shares the connection pool.
	GORM() (*gorm.DB, error)

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

}
