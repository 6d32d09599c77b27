// Package retrieval turns a user query into ranked scheme results. It layers
// hybrid search (vector similarity plus lexical full-text rank) over the
// scheme store and owns the relevance policy: weighting, the similarity
// floor and the cross-language fallback.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/scheme"
)

// Searcher is the slice of the scheme store the retriever depends on.
type Searcher interface {
	VectorSearch(ctx context.Context, embedding []float32, lang language.Language, category string, limit int) ([]scheme.Hit, error)
	KeywordSearch(ctx context.Context, query string, lang language.Language, category string, limit int) ([]scheme.Hit, error)
	GetCurrent(ctx context.Context, schemeID string) (*scheme.Document, error)
}

// Embedder generates the query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a prompt. Used for the free-text eligibility
// fallback and optional reranking.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options controls relevance policy.
type Options struct {
	// TopK is the number of scheme results returned.
	TopK int

	// SimilarityFloor drops results whose combined score falls below it.
	SimilarityFloor float64

	// VectorWeight and KeywordWeight blend the two search signals. They
	// should sum to 1.
	VectorWeight  float64
	KeywordWeight float64

	// RerankEnabled asks the generator to reorder results by relevance to
	// the query before the floor is applied.
	RerankEnabled bool
}

// DefaultOptions returns the production relevance policy.
func DefaultOptions() Options {
	return Options{
		TopK:            3,
		SimilarityFloor: 0.5,
		VectorWeight:    0.7,
		KeywordWeight:   0.3,
	}
}

// Result is one scheme matched by a search.
type Result struct {
	SchemeID string  `json:"scheme_id"`
	Name     string  `json:"name"`
	Snippet  string  `json:"snippet"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// ResultSet is the outcome of one search.
type ResultSet struct {
	Results []Result `json:"results"`

	// CrossLanguage is set when nothing in the session language cleared
	// the floor and the other language was searched instead.
	CrossLanguage bool `json:"cross_language,omitempty"`
}

// Retriever answers scheme discovery queries.
type Retriever struct {
	searcher  Searcher
	embedder  Embedder
	generator Generator
	opts      Options
	logger    *slog.Logger
}

// New creates a Retriever. generator may be nil when reranking is disabled
// and the eligibility fallback is not needed.
func New(searcher Searcher, embedder Embedder, generator Generator, opts Options, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	return &Retriever{
		searcher:  searcher,
		embedder:  embedder,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Search runs a hybrid query in lang, falling back to the other language
// when the session language yields nothing above the floor. category narrows
// the search when known; pass "" otherwise.
func (r *Retriever) Search(ctx context.Context, query string, lang language.Language, category string) (*ResultSet, error) {
	searchLang := lang
	if searchLang == language.Mixed {
		searchLang = language.Hindi
	}

	results, err := r.searchIn(ctx, query, searchLang, category)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return &ResultSet{Results: results}, nil
	}

	other := language.English
	if searchLang == language.English {
		other = language.Hindi
	}
	results, err = r.searchIn(ctx, query, other, category)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &ResultSet{}, nil
	}

	r.logger.Debug("cross-language fallback", "from", searchLang, "to", other)
	return &ResultSet{Results: results, CrossLanguage: true}, nil
}

func (r *Retriever) searchIn(ctx context.Context, query string, lang language.Language, category string) ([]Result, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// Fetch more than TopK from each signal so the merge has material.
	fetch := r.opts.TopK * 4

	vecHits, err := r.searcher.VectorSearch(ctx, vec, lang, category, fetch)
	if err != nil {
		return nil, err
	}
	kwHits, err := r.searcher.KeywordSearch(ctx, query, lang, category, fetch)
	if err != nil {
		return nil, err
	}

	merged := mergeHits(vecHits, kwHits, r.opts.VectorWeight, r.opts.KeywordWeight)

	if r.opts.RerankEnabled && r.generator != nil && len(merged) > 1 {
		merged = r.rerank(ctx, query, merged)
	}

	var results []Result
	for _, m := range merged {
		if m.score < r.opts.SimilarityFloor {
			continue
		}
		results = append(results, Result{
			SchemeID: m.hit.Chunk.SchemeID,
			Name:     schemeName(m.hit.Chunk),
			Snippet:  m.hit.Chunk.Content,
			Category: m.hit.Chunk.Category,
			Score:    m.score,
		})
		if len(results) == r.opts.TopK {
			break
		}
	}
	return results, nil
}

// schemeName extracts the scheme name from a chunk. Non-name chunks carry
// the name as a "Name: content" prefix from the chunker.
func schemeName(c scheme.Chunk) string {
	if c.Section == scheme.SectionName {
		return c.Content
	}
	for i, r := range c.Content {
		if r == ':' {
			return c.Content[:i]
		}
	}
	return c.SchemeID
}

type scored struct {
	hit   scheme.Hit
	score float64
}

// mergeHits blends the two signals per scheme. The keyword rank is
// normalized against its own maximum since ts_rank is unbounded; vector
// similarity is already in [0, 1]. One entry per scheme survives, carrying
// the best-scoring chunk; ties break toward the more recently verified
// document.
func mergeHits(vecHits, kwHits []scheme.Hit, vw, kw float64) []scored {
	var maxRank float64
	for _, h := range kwHits {
		if h.Score > maxRank {
			maxRank = h.Score
		}
	}

	type parts struct {
		hit     scheme.Hit
		vector  float64
		keyword float64
	}
	byScheme := make(map[string]*parts)

	for _, h := range vecHits {
		p, ok := byScheme[h.Chunk.SchemeID]
		if !ok {
			p = &parts{hit: h}
			byScheme[h.Chunk.SchemeID] = p
		}
		if h.Score > p.vector {
			p.vector = h.Score
			p.hit = h
		}
	}
	for _, h := range kwHits {
		norm := 0.0
		if maxRank > 0 {
			norm = h.Score / maxRank
		}
		p, ok := byScheme[h.Chunk.SchemeID]
		if !ok {
			p = &parts{hit: h}
			byScheme[h.Chunk.SchemeID] = p
		}
		if norm > p.keyword {
			p.keyword = norm
		}
	}

	out := make([]scored, 0, len(byScheme))
	for _, p := range byScheme {
		out = append(out, scored{hit: p.hit, score: vw*p.vector + kw*p.keyword})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].hit.Chunk.VerifiedAt.After(out[j].hit.Chunk.VerifiedAt)
	})
	return out
}

// GetDocument returns the current version of a scheme document.
func (r *Retriever) GetDocument(ctx context.Context, schemeID string) (*scheme.Document, error) {
	return r.searcher.GetCurrent(ctx, schemeID)
}
