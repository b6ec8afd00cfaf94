package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rybla/sva-engine/pkg/sva"
)

// PostgresStore implements sva.Store backed by Postgres. Each instance is
// one row with its full record as jsonb; listing reads metadata columns
// without decoding turn history.
type PostgresStore[S, A any] struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

const createInstancesTable = `
CREATE TABLE IF NOT EXISTS instances (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	seed TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	data JSONB NOT NULL
)`

func NewPostgresStore[S, A any](ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore[S, A], error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore[S, A]{pool: pool, logger: logger}
	if _, err := pool.Exec(ctx, createInstancesTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating instances table: %w", err)
	}
	return s, nil
}

func (p *PostgresStore[S, A]) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore[S, A]) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore[S, A]) Save(ctx context.Context, inst *sva.Instance[S, A]) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO instances (id, name, seed, created_at, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = $2, data = $5`,
		inst.ID, inst.Name, inst.Seed, inst.CreatedAt, data)
	if err != nil {
		p.logger.Error("Failed to save instance", "instance_id", inst.ID, "error", err)
		return fmt.Errorf("failed to save instance: %w", err)
	}
	return nil
}

func (p *PostgresStore[S, A]) Load(ctx context.Context, id uuid.UUID) (*sva.Instance[S, A], error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM instances WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		p.logger.Error("Failed to load instance", "instance_id", id, "error", err)
		return nil, fmt.Errorf("failed to load instance: %w", err)
	}

	var inst sva.Instance[S, A]
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance: %w", err)
	}
	return &inst, nil
}

func (p *PostgresStore[S, A]) List(ctx context.Context) ([]sva.Metadata, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, seed, created_at, jsonb_array_length(data->'turns')
		FROM instances ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	metas := make([]sva.Metadata, 0)
	for rows.Next() {
		var m sva.Metadata
		if err := rows.Scan(&m.ID, &m.Name, &m.Seed, &m.CreatedAt, &m.TurnCount); err != nil {
			return nil, fmt.Errorf("failed to scan instance row: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (p *PostgresStore[S, A]) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM instances WHERE id = $1`, id); err != nil {
		p.logger.Error("Failed to delete instance", "instance_id", id, "error", err)
		return fmt.Errorf("failed to delete instance: %w", err)
	}
	return nil
}
