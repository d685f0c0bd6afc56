package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/kailas-cloud/vecfuse/internal/domain/cachekey"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
)

// keyMaterial is everything that changes the fused output of a request.
// CacheTTL and UseCache are excluded: they do not affect results.
type keyMaterial struct {
	Query      string        `json:"q"`
	Filter     filter.Filter `json:"f"`
	Strategy   string        `json:"s"`
	Keyword    float64       `json:"kw"`
	Vector     float64       `json:"vw"`
	K          float64       `json:"k"`
	Threshold  float64       `json:"t"`
	MaxResults int           `json:"n"`
}

func cacheKey(prefix, cleanQuery string, f filter.Filter, p request.Params) string {
	// Marshal cannot fail for this struct.
	raw, _ := json.Marshal(keyMaterial{
		Query:      cleanQuery,
		Filter:     f,
		Strategy:   string(p.Strategy()),
		Keyword:    p.KeywordWeight(),
		Vector:     p.VectorWeight(),
		K:          p.RRFConstant(),
		Threshold:  p.MinScoreThreshold(),
		MaxResults: p.MaxResults(),
	})
	sum := sha256.Sum256(raw)
	return cachekey.Search(prefix, f.UserID, hex.EncodeToString(sum[:]))
}
