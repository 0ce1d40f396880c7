package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autostreamml/internal/core/domain"
	output "autostreamml/internal/core/ports/output"
)

const createSlotTable = `
	CREATE TABLE IF NOT EXISTS artifact_slot (
		name       TEXT PRIMARY KEY,
		data       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type slotStore struct {
	pool *pgxpool.Pool
}

// NewSlotStore creates a SlotStore backed by the artifact_slot table.
func NewSlotStore(pool *pgxpool.Pool) output.SlotStore {
	return &slotStore{pool: pool}
}

// EnsureSchema creates the artifact_slot table when it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSlotTable); err != nil {
		return fmt.Errorf("create artifact_slot table: %w", err)
	}
	return nil
}

func (r *slotStore) Read(ctx context.Context, slot output.Slot) ([]byte, error) {
	query := `SELECT data FROM artifact_slot WHERE name = $1`

	var data []byte
	err := r.pool.QueryRow(ctx, query, string(slot)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return data, nil
}

func (r *slotStore) Write(ctx context.Context, slot output.Slot, data []byte) error {
	query := `
		INSERT INTO artifact_slot (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, string(slot), data); err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	return nil
}
