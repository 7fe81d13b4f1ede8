package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const createSnapshotTable = `
	CREATE TABLE IF NOT EXISTS pos_state (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresSnapshot keeps the state blob in a single jsonb row
type PostgresSnapshot struct {
	db *sqlx.DB
}

// NewPostgresSnapshot connects and ensures the snapshot table exists
func NewPostgresSnapshot(databaseURL string) (*PostgresSnapshot, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(createSnapshotTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &PostgresSnapshot{db: db}, nil
}

// Load reads the snapshot row
func (p *PostgresSnapshot) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := p.db.GetContext(ctx, &data, "SELECT data FROM pos_state WHERE id = 1")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &models.SnapshotError{Op: "load", Err: err}
	}
	return data, nil
}

// Save upserts the snapshot row
func (p *PostgresSnapshot) Save(ctx context.Context, data []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO pos_state (id, data, updated_at) VALUES (1, $1, NOW())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		data)
	if err != nil {
		return &models.SnapshotError{Op: "save", Err: err}
	}
	return nil
}

// Close closes the database connection
func (p *PostgresSnapshot) Close() error {
	return p.db.Close()
}
