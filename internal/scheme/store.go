package scheme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/language"
)

// Embedder generates the fixed-dimension vector for a text. Defined here by
// the consumer; implemented by genai.Client in production and by stubs in
// tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentRow is a stored document version as returned by the Querier.
type DocumentRow struct {
	Document []byte // JSON document body
	Version  int64
}

// ChunkRow is a stored chunk with its search score.
type ChunkRow struct {
	Chunk Chunk
	Score float64
}

// Querier defines the database operations the store needs. Interfaces are
// defined by the consumer; the pgx implementation lives in pg.go and tests
// supply mocks.
type Querier interface {
	// GetCurrentDocument returns the highest version of a scheme.
	GetCurrentDocument(ctx context.Context, schemeID string) (DocumentRow, error)

	// MaxVersion returns the highest stored version for a scheme, 0 if none.
	MaxVersion(ctx context.Context, schemeID string) (int64, error)

	// InsertDocument appends a new immutable document version.
	InsertDocument(ctx context.Context, doc *Document, body []byte) error

	// RetireChunks marks all current chunks of a scheme as stale.
	RetireChunks(ctx context.Context, schemeID string) error

	// InsertChunk stores one chunk with its embedding.
	InsertChunk(ctx context.Context, chunk Chunk, embedding []float32) error

	// VectorSearch returns current chunks by cosine similarity, restricted
	// to a language and optionally a category.
	VectorSearch(ctx context.Context, embedding []float32, lang language.Language, category string, limit int) ([]ChunkRow, error)

	// KeywordSearch returns current chunks by lexical full-text rank over
	// the same restriction.
	KeywordSearch(ctx context.Context, query string, lang language.Language, category string, limit int) ([]ChunkRow, error)
}

// ErrNoDocument is wrapped into a faults.NotFound error by Store methods.
// Querier implementations return it for unknown scheme ids.
var ErrNoDocument = fmt.Errorf("no document version")

// Store manages scheme documents and their retrieval chunks.
// Safe for concurrent use.
type Store struct {
	q        Querier
	embedder Embedder
	logger   *slog.Logger
}

// NewStore creates a Store.
func NewStore(q Querier, embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{q: q, embedder: embedder, logger: logger}
}

// Put appends doc as the next version of its scheme and regenerates its
// chunks. The version field on doc is assigned by the store; previous
// versions and their chunks are never modified, only retired from search.
func (s *Store) Put(ctx context.Context, doc *Document) error {
	if doc.SchemeID == "" {
		return faults.Validationf("scheme id is required")
	}

	maxVer, err := s.q.MaxVersion(ctx, doc.SchemeID)
	if err != nil {
		return fmt.Errorf("reading current version of %q: %w", doc.SchemeID, err)
	}
	doc.Version = maxVer + 1
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	if doc.VerifiedAt.IsZero() {
		doc.VerifiedAt = doc.UpdatedAt
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %q: %w", doc.SchemeID, err)
	}

	if err := s.q.InsertDocument(ctx, doc, body); err != nil {
		return fmt.Errorf("inserting document %q v%d: %w", doc.SchemeID, doc.Version, err)
	}

	// Old chunks stay for audit but stop serving new queries.
	if err := s.q.RetireChunks(ctx, doc.SchemeID); err != nil {
		return fmt.Errorf("retiring chunks of %q: %w", doc.SchemeID, err)
	}

	chunks := BuildChunks(doc)
	for _, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %s of %q: %w", chunk.Section, doc.SchemeID, err)
		}
		if err := s.q.InsertChunk(ctx, chunk, vec); err != nil {
			return fmt.Errorf("inserting chunk %s of %q: %w", chunk.Section, doc.SchemeID, err)
		}
	}

	s.logger.Debug("indexed scheme",
		"scheme_id", doc.SchemeID, "version", doc.Version, "chunks", len(chunks))
	return nil
}

// GetCurrent returns the current (highest) version of a scheme.
// Returns a not-found classified error for unknown ids.
func (s *Store) GetCurrent(ctx context.Context, schemeID string) (*Document, error) {
	row, err := s.q.GetCurrentDocument(ctx, schemeID)
	if err != nil {
		if err == ErrNoDocument {
			return nil, faults.NotFoundf("scheme %q", schemeID)
		}
		return nil, fmt.Errorf("loading scheme %q: %w", schemeID, err)
	}

	var doc Document
	if err := json.Unmarshal(row.Document, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling scheme %q v%d: %w", schemeID, row.Version, err)
	}
	return &doc, nil
}

// VectorSearch runs a similarity query over current chunks.
func (s *Store) VectorSearch(ctx context.Context, embedding []float32, lang language.Language, category string, limit int) ([]Hit, error) {
	rows, err := s.q.VectorSearch(ctx, embedding, lang, category, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return toHits(rows), nil
}

// KeywordSearch runs a lexical full-text query over current chunks.
func (s *Store) KeywordSearch(ctx context.Context, query string, lang language.Language, category string, limit int) ([]Hit, error) {
	rows, err := s.q.KeywordSearch(ctx, query, lang, category, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return toHits(rows), nil
}

func toHits(rows []ChunkRow) []Hit {
	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = Hit{Chunk: r.Chunk, Score: r.Score}
	}
	return hits
}
