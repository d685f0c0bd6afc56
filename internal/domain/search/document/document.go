package document

import "time"

// Source identifies the retriever that produced a document.
type Source string

// Retrieval sources.
const (
	Lexical  Source = "lexical"
	Semantic Source = "semantic"
)

// Document is a single ranked hit returned by a retriever. Immutable once built.
type Document struct {
	id        string
	rawScore  float64
	hasScore  bool
	source    Source
	payload   map[string]any
	timestamp time.Time
}

// New creates a scored document.
func New(id string, source Source, rawScore float64, payload map[string]any, ts time.Time) Document {
	return Document{
		id: id, rawScore: rawScore, hasScore: true,
		source: source, payload: payload, timestamp: ts,
	}
}

// NewUnscored creates a document the retriever could not score.
// The normalizer passes such documents through untouched.
func NewUnscored(id string, source Source, payload map[string]any, ts time.Time) Document {
	return Document{id: id, source: source, payload: payload, timestamp: ts}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// RawScore returns the provider score and whether one was present.
func (d Document) RawScore() (float64, bool) { return d.rawScore, d.hasScore }

// Source returns the producing retriever.
func (d Document) Source() Source { return d.source }

// Payload returns the opaque document fields.
func (d Document) Payload() map[string]any { return d.payload }

// Timestamp returns the document timestamp.
func (d Document) Timestamp() time.Time { return d.timestamp }

// Normalized is a Document with its score rescaled into [0,1] within its source list.
type Normalized struct {
	Document
	score      float64
	normalized bool
}

// NewNormalized pairs a document with its normalized score.
func NewNormalized(doc Document, score float64) Normalized {
	return Normalized{Document: doc, score: score, normalized: true}
}

// PassThrough wraps a document that was not normalized (no raw score).
func PassThrough(doc Document) Normalized {
	return Normalized{Document: doc}
}

// Score returns the normalized score; zero when IsNormalized is false.
func (n Normalized) Score() float64 { return n.score }

// IsNormalized reports whether a normalized score was assigned.
func (n Normalized) IsNormalized() bool { return n.normalized }
