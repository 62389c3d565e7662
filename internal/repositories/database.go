package repository

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/clothing-store/internal/config"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB *sql.DB
}

// NewPostgres opens an instrumented connection pool and makes sure the carts
// table exists.
func NewPostgres(cfg *config.Database) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Repository{DB: db}, nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}

// total_price is DOUBLE PRECISION so the stored total stays bit-identical to
// the sum computed over the items.
func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS carts (
		id VARCHAR(24) PRIMARY KEY,
		user_id VARCHAR(24) UNIQUE NOT NULL,
		items JSONB NOT NULL DEFAULT '[]'::jsonb,
		total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema creation: %w", err)
	}

	return nil
}
