package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vecfuse/internal/db"
)

// indexCreator is the consumer interface for index bootstrap (ISP).
type indexCreator interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Schema returns the HASH index definition the retrievers query.
// The vector field is included only when dim > 0.
func Schema(index, keyPrefix string, dim int) db.IndexDefinition {
	def := db.IndexDefinition{
		Name: index,
		Fields: []db.IndexField{
			{Name: db.FieldContent, Type: db.IndexFieldText},
			{Name: db.FieldUserID, Type: db.IndexFieldTag},
			{Name: db.FieldTags, Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: db.FieldTimestamp, Type: db.IndexFieldNumeric},
			{Name: db.FieldMinuteOfDay, Type: db.IndexFieldNumeric},
			{Name: db.FieldComprehension, Type: db.IndexFieldNumeric},
		},
	}
	if keyPrefix != "" {
		def.Prefixes = []string{keyPrefix}
	}
	if dim > 0 {
		def.Fields = append(def.Fields, db.IndexField{
			Name:      db.FieldVector,
			Type:      db.IndexFieldVector,
			VectorDim: dim,
		})
	}
	return def
}

// EnsureIndexes creates the lexical and semantic indexes when missing and
// returns the names it created. Equal names share one index carrying both
// the text and the vector fields.
func EnsureIndexes(ctx context.Context, s indexCreator, lexical, semantic Config, dim int) ([]string, error) {
	if dim <= 0 {
		return nil, errors.New("vector dimensions must be positive")
	}

	defs := []db.IndexDefinition{Schema(semantic.Index, semantic.KeyPrefix, dim)}
	if lexical.Index != semantic.Index {
		defs = append(defs, Schema(lexical.Index, lexical.KeyPrefix, 0))
	}

	var created []string
	for i := range defs {
		err := s.CreateIndex(ctx, &defs[i])
		switch {
		case err == nil:
			created = append(created, defs[i].Name)
		case errors.Is(err, db.ErrIndexExists):
		default:
			return created, fmt.Errorf("create index %s: %w", defs[i].Name, err)
		}
	}
	return created, nil
}
