package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecfuse/internal/db"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
)

const vectorScoreField = "__vector_score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Scores are cosine similarities (1 - distance), not clamped.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, errors.New("vector is required")
	}
	if q.K <= 0 {
		return nil, errors.New("k must be positive")
	}

	filterStr := buildFilter(q.Filter)
	if filterStr == "" {
		filterStr = "*"
	} else {
		filterStr = "(" + filterStr + ")"
	}
	queryStr := fmt.Sprintf("%s=>[KNN %d @%s $BLOB]", filterStr, q.K, db.FieldVector)

	args := []string{q.IndexName, queryStr}
	args = appendReturn(args, q.ReturnFields, vectorScoreField)
	args = append(args,
		"SORTBY", vectorScoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	raw, err := s.search(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseKNNResult(raw)
}

// SearchBM25 runs a BM25 text search via FT.SEARCH. An empty query with a
// non-empty filter returns filter matches only.
func (s *Store) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.TopK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	var parts []string
	if f := buildFilter(q.Filter); f != "" {
		parts = append(parts, f)
	}
	if text := strings.TrimSpace(q.Query); text != "" {
		parts = append(parts, fmt.Sprintf("@%s:(%s)", db.FieldContent, escapeQuery(text)))
	}
	if len(parts) == 0 {
		return nil, errors.New("query or filter is required")
	}

	args := []string{q.IndexName, strings.Join(parts, " ")}
	args = appendReturn(args, q.ReturnFields)
	args = append(args,
		"WITHSCORES",
		"SCORER", "BM25",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)

	raw, err := s.search(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseBM25Result(raw)
}

func (s *Store) search(ctx context.Context, args []string) ([]rueidis.RedisMessage, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return raw, nil
}

func appendReturn(args, fields []string, extra ...string) []string {
	if len(fields) == 0 {
		return args
	}
	all := append(append([]string(nil), fields...), extra...)
	args = append(args, "RETURN", strconv.Itoa(len(all)))
	return append(args, all...)
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if scoreStr, ok := entry.Fields[vectorScoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = 1 - d
				entry.HasScore = true
			}
			delete(entry.Fields, vectorScoreField)
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func parseBM25Result(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if scoreStr, err := raw[i+1].ToString(); err == nil {
			if score, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = score
				entry.HasScore = true
			}
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func parseTotal(raw []rueidis.RedisMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	n, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse total: %w", err)
	}
	return int(n), nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates a search filter into an FT.SEARCH pre-filter query string.
// Limit is not a query clause; callers apply it to K/TopK.
func buildFilter(f filter.Filter) string {
	var parts []string

	if f.UserID != "" {
		parts = append(parts, buildTagFilter(db.FieldUserID, f.UserID))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, buildTagFilter(db.FieldTags, f.Tags...))
	}
	if d := f.DateRange; d != nil {
		parts = append(parts, buildNumericFilter(db.FieldTimestamp,
			float64(d.Start.UnixMilli()), float64(d.End.UnixMilli())))
	}
	if tr := f.TimeRange; tr != nil {
		if start, end, err := tr.Minutes(); err == nil {
			parts = append(parts, buildNumericFilter(db.FieldMinuteOfDay, float64(start), float64(end)))
		}
	}
	if cs := f.ComprehensionScore; cs != nil {
		lo, hi := cs.Bounds()
		parts = append(parts, buildNumericFilter(db.FieldComprehension, lo, hi))
	}

	return strings.Join(parts, " ")
}

// buildTagFilter matches any of values: @key:{a | b}.
func buildTagFilter(key string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, lo, hi float64) string {
	return fmt.Sprintf("@%s:[%s %s]", key, bound(lo), bound(hi))
}

func bound(v float64) string {
	switch {
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "+inf"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
