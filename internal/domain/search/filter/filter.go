package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain"
)

// MaxTags is the maximum number of tags in a single filter.
const MaxTags = 32

// Operator is the comparison applied to a comprehension score.
type Operator string

// Comprehension score operators.
const (
	GTE   Operator = "gte"
	LTE   Operator = "lte"
	EQ    Operator = "eq"
	Range Operator = "range"
)

// Filter is the structured constraint set applied to both retrievers.
// Every field is optional; a zero field means "no constraint on this dimension".
type Filter struct {
	UserID             string              `json:"userId,omitempty"`
	Tags               []string            `json:"tags,omitempty"`
	DateRange          *DateRange          `json:"dateRange,omitempty"`
	TimeRange          *TimeRange          `json:"timeRange,omitempty"`
	ComprehensionScore *ComprehensionScore `json:"comprehensionScore,omitempty"`
	Limit              int                 `json:"limit,omitempty"`
}

// DateRange is an inclusive calendar window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimeRange is an inclusive time-of-day window in "HH:MM" form. End may be "24:00".
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ComprehensionScore bounds a document's comprehension score.
type ComprehensionScore struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Operator Operator `json:"operator"`
}

// AtLeast builds a gte constraint.
func AtLeast(v float64) *ComprehensionScore {
	return &ComprehensionScore{Min: &v, Operator: GTE}
}

// AtMost builds a lte constraint.
func AtMost(v float64) *ComprehensionScore {
	return &ComprehensionScore{Max: &v, Operator: LTE}
}

// Exactly builds an eq constraint.
func Exactly(v float64) *ComprehensionScore {
	return &ComprehensionScore{Min: &v, Operator: EQ}
}

// Between builds a range constraint.
func Between(lo, hi float64) *ComprehensionScore {
	return &ComprehensionScore{Min: &lo, Max: &hi, Operator: Range}
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return f.UserID == "" && len(f.Tags) == 0 && f.DateRange == nil &&
		f.TimeRange == nil && f.ComprehensionScore == nil && f.Limit == 0
}

// Validate checks the filter for structural errors.
func (f Filter) Validate() error {
	if f.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidFilter)
	}
	if len(f.Tags) > MaxTags {
		return fmt.Errorf("%w: too many tags (max %d)", domain.ErrInvalidFilter, MaxTags)
	}
	for _, t := range f.Tags {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty tag", domain.ErrInvalidFilter)
		}
	}
	if d := f.DateRange; d != nil {
		if d.Start.IsZero() || d.End.IsZero() {
			return fmt.Errorf("%w: dateRange requires start and end", domain.ErrInvalidFilter)
		}
		if d.End.Before(d.Start) {
			return fmt.Errorf("%w: dateRange end before start", domain.ErrInvalidFilter)
		}
	}
	if tr := f.TimeRange; tr != nil {
		if _, _, err := tr.Minutes(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
	}
	if cs := f.ComprehensionScore; cs != nil {
		if err := cs.validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
	}
	return nil
}

// Merge returns f with every dimension set in extracted overriding f's value.
func (f Filter) Merge(extracted Filter) Filter {
	out := f
	if extracted.UserID != "" {
		out.UserID = extracted.UserID
	}
	if len(extracted.Tags) > 0 {
		out.Tags = extracted.Tags
	}
	if extracted.DateRange != nil {
		out.DateRange = extracted.DateRange
	}
	if extracted.TimeRange != nil {
		out.TimeRange = extracted.TimeRange
	}
	if extracted.ComprehensionScore != nil {
		out.ComprehensionScore = extracted.ComprehensionScore
	}
	if extracted.Limit > 0 {
		out.Limit = extracted.Limit
	}
	return out
}

// Minutes converts the range into minutes since midnight.
func (tr TimeRange) Minutes() (start, end int, err error) {
	start, err = ParseClock(tr.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("timeRange start: %w", err)
	}
	end, err = ParseClock(tr.End)
	if err != nil {
		return 0, 0, fmt.Errorf("timeRange end: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("timeRange end %s before start %s", tr.End, tr.Start)
	}
	return start, end, nil
}

// ParseClock parses "HH:MM" (00:00..24:00) into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Bounds returns the inclusive numeric interval the constraint admits.
// Open sides are reported as ±Inf.
func (c ComprehensionScore) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(-1), math.Inf(1)
	switch c.Operator {
	case GTE:
		lo = deref(c.Min)
	case LTE:
		hi = deref(c.Max)
	case EQ:
		lo, hi = deref(c.Min), deref(c.Min)
	case Range:
		lo, hi = deref(c.Min), deref(c.Max)
	}
	return lo, hi
}

// Matches reports whether v satisfies the constraint.
func (c ComprehensionScore) Matches(v float64) bool {
	lo, hi := c.Bounds()
	return v >= lo && v <= hi
}

func (c ComprehensionScore) validate() error {
	switch c.Operator {
	case GTE, EQ:
		if c.Min == nil {
			return fmt.Errorf("comprehensionScore %s requires min", c.Operator)
		}
	case LTE:
		if c.Max == nil {
			return fmt.Errorf("comprehensionScore lte requires max")
		}
	case Range:
		if c.Min == nil || c.Max == nil {
			return fmt.Errorf("comprehensionScore range requires min and max")
		}
		if *c.Min > *c.Max {
			return fmt.Errorf("comprehensionScore min %g greater than max %g", *c.Min, *c.Max)
		}
	default:
		return fmt.Errorf("unknown comprehensionScore operator %q", c.Operator)
	}
	return nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
