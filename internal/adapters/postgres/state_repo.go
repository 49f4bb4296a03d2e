package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wanderlust-app/wanderlust/internal/core/ports"
)

// StateRepo implements ports.StateStore on a single key/value table.
// Values are JSON blobs owned by the use-case layer; the repo does not
// interpret them.
type StateRepo struct {
	db *DB
}

func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

func (r *StateRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT value FROM app_state WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *StateRepo) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO app_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}

func (r *StateRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM app_state WHERE key = $1
	`, key)
	return err
}
