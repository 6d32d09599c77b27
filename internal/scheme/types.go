// Package scheme provides the knowledge store for government scheme
// documents: versioned bilingual documents, their retrieval chunks and the
// pgvector-backed search primitives the retriever builds on.
//
// Documents are created by an external curation process and are read-only to
// the conversation engine; the store's write path exists for the indexing CLI
// that stands in for that process.
package scheme

import (
	"time"

	"github.com/google/uuid"

	"github.com/janseva/janseva/internal/language"
)

// Section identifies which part of a scheme document a chunk came from.
type Section string

const (
	SectionName        Section = "name"
	SectionDescription Section = "description"
	SectionEligibility Section = "eligibility"
	SectionBenefits    Section = "benefits"
	SectionProcess     Section = "process"
)

// Bilingual holds one text in both supported languages.
type Bilingual struct {
	EN string `json:"en"`
	HI string `json:"hi"`
}

// In returns the text for the given language. Mixed resolves to Hindi, the
// engine's convention for code-switched sessions; an empty translation falls
// back to the other language so no section silently disappears.
func (b Bilingual) In(lang language.Language) string {
	if lang == language.Hindi || lang == language.Mixed {
		if b.HI != "" {
			return b.HI
		}
		return b.EN
	}
	if b.EN != "" {
		return b.EN
	}
	return b.HI
}

// BilingualList holds a list of items in both supported languages.
type BilingualList struct {
	EN []string `json:"en"`
	HI []string `json:"hi"`
}

// In returns the list for the given language with the same fallback rules
// as Bilingual.In.
func (b BilingualList) In(lang language.Language) []string {
	if lang == language.Hindi || lang == language.Mixed {
		if len(b.HI) > 0 {
			return b.HI
		}
		return b.EN
	}
	if len(b.EN) > 0 {
		return b.EN
	}
	return b.HI
}

// Document is one immutable version of a government scheme. For a given
// SchemeID versions are totally ordered and append-only; the current
// document is the highest version.
type Document struct {
	SchemeID    string        `json:"scheme_id"`
	Version     int64         `json:"version"`
	Name        Bilingual     `json:"name"`
	Description Bilingual     `json:"description"`
	Eligibility BilingualList `json:"eligibility"`
	Benefits    BilingualList `json:"benefits"`
	Process     Bilingual     `json:"process"`
	Category    string        `json:"category"`
	Audience    []string      `json:"audience"`
	UpdatedAt   time.Time     `json:"updated_at"`
	VerifiedAt  time.Time     `json:"verified_at"`
}

// Chunk is the unit of retrieval: a bounded section of one document version
// in one language, carrying one embedding vector. Chunks of superseded
// versions are kept for audit but never served to new queries.
type Chunk struct {
	ID         uuid.UUID
	SchemeID   string
	Version    int64
	Section    Section
	Language   language.Language
	Category   string
	Content    string
	VerifiedAt time.Time
}

// Hit is a chunk matched by a store search, with its raw score
// (cosine similarity for vector search, ts_rank for keyword search).
type Hit struct {
	Chunk Chunk
	Score float64
}
