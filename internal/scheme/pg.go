package scheme

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/janseva/janseva/internal/language"
)

// PGQuerier is the production Querier backed by a pgx connection pool.
// The pool must have pgvector types registered (see database.Connect).
type PGQuerier struct {
	pool *pgxpool.Pool
}

// NewPGQuerier creates a PGQuerier.
func NewPGQuerier(pool *pgxpool.Pool) *PGQuerier {
	return &PGQuerier{pool: pool}
}

func (p *PGQuerier) GetCurrentDocument(ctx context.Context, schemeID string) (DocumentRow, error) {
	const q = `
		SELECT document, version
		FROM schemes
		WHERE scheme_id = $1
		ORDER BY version DESC
		LIMIT 1`

	var row DocumentRow
	err := p.pool.QueryRow(ctx, q, schemeID).Scan(&row.Document, &row.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return DocumentRow{}, ErrNoDocument
	}
	if err != nil {
		return DocumentRow{}, err
	}
	return row, nil
}

func (p *PGQuerier) MaxVersion(ctx context.Context, schemeID string) (int64, error) {
	const q = `SELECT COALESCE(MAX(version), 0) FROM schemes WHERE scheme_id = $1`

	var v int64
	if err := p.pool.QueryRow(ctx, q, schemeID).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func (p *PGQuerier) InsertDocument(ctx context.Context, doc *Document, body []byte) error {
	const q = `
		INSERT INTO schemes (scheme_id, version, category, document, updated_at, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := p.pool.Exec(ctx, q,
		doc.SchemeID, doc.Version, doc.Category, body, doc.UpdatedAt, doc.VerifiedAt)
	return err
}

func (p *PGQuerier) RetireChunks(ctx context.Context, schemeID string) error {
	const q = `UPDATE chunks SET current = FALSE WHERE scheme_id = $1 AND current`

	_, err := p.pool.Exec(ctx, q, schemeID)
	return err
}

func (p *PGQuerier) InsertChunk(ctx context.Context, chunk Chunk, embedding []float32) error {
	const q = `
		INSERT INTO chunks
			(id, scheme_id, version, section, language, category, content, embedding, current, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)`

	_, err := p.pool.Exec(ctx, q,
		chunk.ID, chunk.SchemeID, chunk.Version, string(chunk.Section),
		string(chunk.Language), chunk.Category, chunk.Content,
		pgvector.NewVector(embedding), chunk.VerifiedAt)
	return err
}

func (p *PGQuerier) VectorSearch(ctx context.Context, embedding []float32, lang language.Language, category string, limit int) ([]ChunkRow, error) {
	// The <=> operator is cosine distance; similarity is its complement.
	q := `
		SELECT id, scheme_id, version, section, language, category, content, verified_at,
		       1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE current AND language = $2`
	args := []any{pgvector.NewVector(embedding), string(lang)}
	if category != "" {
		q += ` AND category = $3`
		args = append(args, category)
	}
	q += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, limit)

	return p.queryChunks(ctx, q, args)
}

func (p *PGQuerier) KeywordSearch(ctx context.Context, query string, lang language.Language, category string, limit int) ([]ChunkRow, error) {
	// The 'simple' configuration avoids English stemming, which would
	// mangle transliterated Hindi tokens.
	q := `
		SELECT id, scheme_id, version, section, language, category, content, verified_at,
		       ts_rank(to_tsvector('simple', content), plainto_tsquery('simple', $1)) AS rank
		FROM chunks
		WHERE current AND language = $2
		  AND to_tsvector('simple', content) @@ plainto_tsquery('simple', $1)`
	args := []any{query, string(lang)}
	if category != "" {
		q += ` AND category = $3`
		args = append(args, category)
	}
	q += fmt.Sprintf(` ORDER BY rank DESC LIMIT %d`, limit)

	return p.queryChunks(ctx, q, args)
}

func (p *PGQuerier) queryChunks(ctx context.Context, q string, args []any) ([]ChunkRow, error) {
	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChunkRow
	for rows.Next() {
		var (
			r       ChunkRow
			id      uuid.UUID
			section string
			lang    string
		)
		if err := rows.Scan(&id, &r.Chunk.SchemeID, &r.Chunk.Version, &section,
			&lang, &r.Chunk.Category, &r.Chunk.Content, &r.Chunk.VerifiedAt,
			&r.Score); err != nil {
			return nil, err
		}
		r.Chunk.ID = id
		r.Chunk.Section = Section(section)
		r.Chunk.Language = language.Language(lang)
		out = append(out, r)
	}
	return out, rows.Err()
}
