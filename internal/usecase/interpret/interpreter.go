// Package interpret extracts structured filters embedded in Korean natural-language queries.
//
// Rules are evaluated top to bottom; the first rule that yields a filter wins and only
// that one dimension is extracted. Rule order encodes precedence: comprehension score
// expressions first, then dates, then times of day.
package interpret

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
)

// Family groups rules by the filter dimension they extract.
type Family string

// Rule families in precedence order.
const (
	Comprehension Family = "comprehension"
	Date          Family = "date"
	Time          Family = "time"
)

// Match describes which rule fired and the text it consumed.
type Match struct {
	Family Family `json:"type"`
	Rule   string `json:"rule"`
	Text   string `json:"matched"`
}

// Extraction is the interpreter output. Filter and Match are nil when nothing matched.
type Extraction struct {
	CleanQuery string
	Filter     *filter.Filter
	Match      *Match
}

// extractFunc builds a filter from submatches. ok=false rejects the occurrence
// (e.g. "2월 30일") and lets evaluation continue.
type extractFunc func(groups []string, now time.Time) (f filter.Filter, ok bool)

type rule struct {
	name    string
	family  Family
	re      *regexp.Regexp
	extract extractFunc
	// notFollowedBy lists runes that must not directly follow a match,
	// e.g. "심" so that "점" does not fire inside "점심".
	notFollowedBy string
}

// Interpreter is a pure query-to-filter extractor. Safe for concurrent use.
type Interpreter struct {
	now   func() time.Time
	rules []rule
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock overrides the clock used to resolve relative dates.
// The clock's location defines the caller's local calendar.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

// New creates an Interpreter with the built-in rule table.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{now: time.Now, rules: defaultRules()}
	for _, o := range opts {
		o(in)
	}
	return in
}

// Extract returns the cleaned query and the first filter found in it.
func (in *Interpreter) Extract(query string) Extraction {
	now := in.now()
	for _, r := range in.rules {
		for _, loc := range r.re.FindAllStringSubmatchIndex(query, -1) {
			if r.blockedAt(query, loc[1]) {
				continue
			}
			f, ok := r.extract(submatches(query, loc), now)
			if !ok {
				continue
			}
			return Extraction{
				CleanQuery: cleanup(query[:loc[0]] + " " + query[loc[1]:]),
				Filter:     &f,
				Match:      &Match{Family: r.family, Rule: r.name, Text: strings.TrimSpace(query[loc[0]:loc[1]])},
			}
		}
	}
	return Extraction{CleanQuery: query}
}

// Rules lists the rule names in evaluation order.
func (in *Interpreter) Rules() []string {
	names := make([]string, len(in.rules))
	for i, r := range in.rules {
		names[i] = string(r.family) + "/" + r.name
	}
	return names
}

func (r rule) blockedAt(query string, end int) bool {
	if r.notFollowedBy == "" || end >= len(query) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(query[end:])
	return strings.ContainsRune(r.notFollowedBy, next)
}

func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

func cleanup(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
