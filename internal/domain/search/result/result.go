package result

import "time"

// Fused is one entry of the merged ranking.
// Rank fields are 1-based positions in the source lists; 0 means absent.
type Fused struct {
	DocumentID    string         `json:"documentId"`
	Payload       map[string]any `json:"payload,omitempty"`
	Timestamp     time.Time      `json:"timestamp,omitzero"`
	KeywordScore  float64        `json:"keywordScore"`
	VectorScore   float64        `json:"vectorScore"`
	CombinedScore float64        `json:"combinedScore"`
	KeywordRank   int            `json:"keywordRank,omitempty"`
	VectorRank    int            `json:"vectorRank,omitempty"`
	// WeightedScore and RRFScore are the component scores of a hybrid fusion.
	WeightedScore float64 `json:"weightedScore,omitempty"`
	RRFScore      float64 `json:"rrfScore,omitempty"`
}

// InKeyword reports whether the lexical retriever returned the document.
func (f *Fused) InKeyword() bool { return f.KeywordRank > 0 }

// InVector reports whether the semantic retriever returned the document.
func (f *Fused) InVector() bool { return f.VectorRank > 0 }
