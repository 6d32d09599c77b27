package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGQuerier is the production Querier backed by a pgx connection pool.
type PGQuerier struct {
	pool *pgxpool.Pool
}

// NewPGQuerier creates a PGQuerier.
func NewPGQuerier(pool *pgxpool.Pool) *PGQuerier {
	return &PGQuerier{pool: pool}
}

func (p *PGQuerier) GetSession(ctx context.Context, id string) ([]byte, int64, error) {
	const q = `SELECT data, version FROM sessions WHERE id = $1`

	var (
		data    []byte
		version int64
	)
	err := p.pool.QueryRow(ctx, q, id).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNoSession
	}
	if err != nil {
		return nil, 0, err
	}
	return data, version, nil
}

func (p *PGQuerier) InsertSession(ctx context.Context, id string, data []byte, lastActive, expiresAt time.Time) error {
	const q = `
		INSERT INTO sessions (id, data, version, last_active, expires_at)
		VALUES ($1, $2, 1, $3, $4)`

	_, err := p.pool.Exec(ctx, q, id, data, lastActive, expiresAt)
	return err
}

func (p *PGQuerier) UpdateSession(ctx context.Context, id string, data []byte, expected int64, lastActive, expiresAt time.Time) error {
	const q = `
		UPDATE sessions
		SET data = $2, version = version + 1, last_active = $3, expires_at = $4
		WHERE id = $1 AND version = $5`

	tag, err := p.pool.Exec(ctx, q, id, data, lastActive, expiresAt, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (p *PGQuerier) DeleteSession(ctx context.Context, id string) error {
	const q = `DELETE FROM sessions WHERE id = $1`

	_, err := p.pool.Exec(ctx, q, id)
	return err
}

func (p *PGQuerier) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at < $1`

	tag, err := p.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
