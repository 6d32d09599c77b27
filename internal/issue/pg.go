package issue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const uniqueViolation = "23505"

func (p *PGQuerier) InsertReport(ctx context.Context, r *Report) error {
	const q = `
		INSERT INTO issues (tracking_id, issue_type, description, severity, location, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	loc, err := json.Marshal(r.Location)
	if err != nil {
		return fmt.Errorf("marshaling location: %w", err)
	}

	_, err = p.pool.Exec(ctx, q,
		r.TrackingID, r.IssueType, r.Description, r.Severity, loc, string(r.Status), r.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateID
	}
	return err
}

func (p *PGQuerier) GetReport(ctx context.Context, trackingID string) (*Report, error) {
	const q = `
		SELECT tracking_id, issue_type, description, severity, location, status, created_at
		FROM issues
		WHERE tracking_id = $1`

	var (
		r      Report
		loc    []byte
		status string
	)
	err := p.pool.QueryRow(ctx, q, trackingID).Scan(
		&r.TrackingID, &r.IssueType, &r.Description, &r.Severity, &loc, &status, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoIssue
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(loc, &r.Location); err != nil {
		return nil, fmt.Errorf("unmarshaling location of %q: %w", trackingID, err)
	}
	r.Status = Status(status)
	return &r, nil
}

func (p *PGQuerier) SetStatus(ctx context.Context, trackingID string, status Status) error {
	const q = `UPDATE issues SET status = $2 WHERE tracking_id = $1`

	tag, err := p.pool.Exec(ctx, q, trackingID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoIssue
	}
	return nil
}

func (p *PGQuerier) InsertStatusChange(ctx context.Context, c StatusChange) error {
	const q = `
		INSERT INTO issue_status_history (tracking_id, from_status, to_status, notes, changed_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := p.pool.Exec(ctx, q,
		c.TrackingID, string(c.From), string(c.To), c.Notes, c.At)
	return err
}

func (p *PGQuerier) ListStatusChanges(ctx context.Context, trackingID string) ([]StatusChange, error) {
	const q = `
		SELECT tracking_id, from_status, to_status, notes, changed_at
		FROM issue_status_history
		WHERE tracking_id = $1
		ORDER BY changed_at`

	rows, err := p.pool.Query(ctx, q, trackingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusChange
	for rows.Next() {
		var (
			c        StatusChange
			from, to string
		)
		if err := rows.Scan(&c.TrackingID, &from, &to, &c.Notes, &c.At); err != nil {
			return nil, err
		}
		c.From = Status(from)
		c.To = Status(to)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *PGQuerier) InsertFollowup(ctx context.Context, f Followup) error {
	const q = `
		INSERT INTO issue_followups (tracking_id, comment, created_at)
		VALUES ($1, $2, $3)`

	_, err := p.pool.Exec(ctx, q, f.TrackingID, f.Text, f.At)
	return err
}

func (p *PGQuerier) ListFollowups(ctx context.Context, trackingID string) ([]Followup, error) {
	const q = `
		SELECT tracking_id, comment, created_at
		FROM issue_followups
		WHERE tracking_id = $1
		ORDER BY created_at`

	rows, err := p.pool.Query(ctx, q, trackingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Followup
	for rows.Next() {
		var f Followup
		if err := rows.Scan(&f.TrackingID, &f.Text, &f.At); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
