package interpret

import (
	"regexp"
	"strconv"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
)

const (
	num         = `(\d+(?:\.\d+)?)`
	scorePrefix = `(?:이해도\s*(?:점수)?\s*)?`
	particle    = `(?:에는|에|의)?`
)

func defaultRules() []rule {
	return []rule{
		// Comprehension score.
		{
			name: "range", family: Comprehension,
			re:      regexp.MustCompile(scorePrefix + num + `\s*점?\s*(?:~|-|에서)\s*` + num + `\s*점(?:\s*(?:사이|까지))?`),
			extract: scoreRange,
		},
		{
			name: "gte", family: Comprehension,
			re:      regexp.MustCompile(scorePrefix + num + `\s*점\s*이상`),
			extract: scoreBound(filter.AtLeast),
		},
		{
			name: "lte", family: Comprehension,
			re:      regexp.MustCompile(scorePrefix + num + `\s*점\s*이하`),
			extract: scoreBound(filter.AtMost),
		},
		{
			name: "eq", family: Comprehension,
			re:            regexp.MustCompile(scorePrefix + num + `\s*점`),
			extract:       scoreBound(filter.Exactly),
			notFollowedBy: "심",
		},

		// Dates, most specific first.
		{
			name: "ymd", family: Date,
			re:      regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일` + particle),
			extract: absoluteDay,
		},
		{
			name: "ymd_numeric", family: Date,
			re:      regexp.MustCompile(`(\d{4})[-./](\d{1,2})[-./](\d{1,2})` + particle),
			extract: absoluteDay,
		},
		{
			name: "ym", family: Date,
			re:      regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월` + particle),
			extract: absoluteMonth,
		},
		{
			name: "md", family: Date,
			re:      regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일` + particle),
			extract: monthDay,
		},
		{
			name: "days_ago", family: Date,
			re:      regexp.MustCompile(`(\d{1,3})\s*일\s*전` + particle),
			extract: daysAgo,
		},
		{
			name: "recent_days", family: Date,
			re:      regexp.MustCompile(`최근\s*(\d{1,3})\s*일(?:\s*(?:동안|간))?` + particle),
			extract: recentDays,
		},
		{
			name: "relative_day", family: Date,
			re:      regexp.MustCompile(`(오늘|어제|내일|모레|그저께|그제)` + particle),
			extract: relativeDay,
		},
		{
			name: "week", family: Date,
			re:      regexp.MustCompile(`(이번|지난|저번|다음)\s*주` + particle),
			extract: relativeWeek,
		},
		{
			name: "month", family: Date,
			re:      regexp.MustCompile(`(이번|지난|저번|다음)\s*달` + particle),
			extract: relativeMonth,
		},
		{
			name: "month_only", family: Date,
			re:      regexp.MustCompile(`(\d{1,2})\s*월` + particle),
			extract: monthOnly,
		},
		{
			name: "day_only", family: Date,
			re:            regexp.MustCompile(`(\d{1,2})\s*일` + particle),
			extract:       dayOnly,
			notFollowedBy: "간",
		},

		// Time of day.
		{
			name: "meridiem_hour", family: Time,
			re:      regexp.MustCompile(`(오전|오후)\s*(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분|\s*(반))?` + particle),
			extract: meridiemHour,
		},
		{
			name: "clock", family: Time,
			re:      regexp.MustCompile(`(\d{1,2}):(\d{2})` + particle),
			extract: clock,
		},
		{
			name: "hour", family: Time,
			re:            regexp.MustCompile(`(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분|\s*(반))?` + particle),
			extract:       hour,
			notFollowedBy: "간",
		},
		{
			name: "period", family: Time,
			re:      regexp.MustCompile(`(새벽|아침|점심|오후|저녁|밤|오전)` + particle),
			extract: period,
		},
	}
}

// periods maps named day periods to [start, end] minutes.
var periods = map[string][2]int{
	"새벽": {0, 6 * 60},
	"아침": {6 * 60, 12 * 60},
	"점심": {12 * 60, 14 * 60},
	"오후": {12 * 60, 18 * 60},
	"저녁": {18 * 60, 22 * 60},
	"밤":  {22 * 60, 24 * 60},
	"오전": {0, 12 * 60},
}

func scoreRange(g []string, _ time.Time) (filter.Filter, bool) {
	lo, err1 := strconv.ParseFloat(g[1], 64)
	hi, err2 := strconv.ParseFloat(g[2], 64)
	if err1 != nil || err2 != nil {
		return filter.Filter{}, false
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return filter.Filter{ComprehensionScore: filter.Between(lo, hi)}, true
}

func scoreBound(build func(float64) *filter.ComprehensionScore) extractFunc {
	return func(g []string, _ time.Time) (filter.Filter, bool) {
		v, err := strconv.ParseFloat(g[1], 64)
		if err != nil {
			return filter.Filter{}, false
		}
		return filter.Filter{ComprehensionScore: build(v)}, true
	}
}

func absoluteDay(g []string, now time.Time) (filter.Filter, bool) {
	d, ok := date(now.Location(), atoi(g[1]), atoi(g[2]), atoi(g[3]))
	if !ok {
		return filter.Filter{}, false
	}
	return dayFilter(d), true
}

func absoluteMonth(g []string, now time.Time) (filter.Filter, bool) {
	m := atoi(g[2])
	if m < 1 || m > 12 {
		return filter.Filter{}, false
	}
	return monthFilter(atoi(g[1]), time.Month(m), now.Location()), true
}

func monthDay(g []string, now time.Time) (filter.Filter, bool) {
	d, ok := date(now.Location(), now.Year(), atoi(g[1]), atoi(g[2]))
	if !ok {
		return filter.Filter{}, false
	}
	return dayFilter(d), true
}

func daysAgo(g []string, now time.Time) (filter.Filter, bool) {
	return dayFilter(today(now).AddDate(0, 0, -atoi(g[1]))), true
}

func recentDays(g []string, now time.Time) (filter.Filter, bool) {
	n := atoi(g[1])
	if n < 1 {
		return filter.Filter{}, false
	}
	t := today(now)
	return rangeFilter(t.AddDate(0, 0, -(n - 1)), endOfDay(t)), true
}

var dayOffsets = map[string]int{
	"오늘":  0,
	"어제":  -1,
	"내일":  1,
	"모레":  2,
	"그제":  -2,
	"그저께": -2,
}

func relativeDay(g []string, now time.Time) (filter.Filter, bool) {
	return dayFilter(today(now).AddDate(0, 0, dayOffsets[g[1]])), true
}

var relativeOffsets = map[string]int{
	"이번": 0,
	"지난": -1,
	"저번": -1,
	"다음": 1,
}

func relativeWeek(g []string, now time.Time) (filter.Filter, bool) {
	t := today(now)
	start := t.AddDate(0, 0, -int(t.Weekday())+7*relativeOffsets[g[1]])
	return rangeFilter(start, endOfDay(start.AddDate(0, 0, 6))), true
}

func relativeMonth(g []string, now time.Time) (filter.Filter, bool) {
	first := time.Date(now.Year(), now.Month()+time.Month(relativeOffsets[g[1]]), 1, 0, 0, 0, 0, now.Location())
	return monthFilter(first.Year(), first.Month(), now.Location()), true
}

func monthOnly(g []string, now time.Time) (filter.Filter, bool) {
	m := atoi(g[1])
	if m < 1 || m > 12 {
		return filter.Filter{}, false
	}
	return monthFilter(now.Year(), time.Month(m), now.Location()), true
}

func dayOnly(g []string, now time.Time) (filter.Filter, bool) {
	d, ok := date(now.Location(), now.Year(), int(now.Month()), atoi(g[1]))
	if !ok {
		return filter.Filter{}, false
	}
	return dayFilter(d), true
}

func meridiemHour(g []string, _ time.Time) (filter.Filter, bool) {
	h := atoi(g[2])
	if h < 1 || h > 12 {
		return filter.Filter{}, false
	}
	switch {
	case g[1] == "오후" && h < 12:
		h += 12
	case g[1] == "오전" && h == 12:
		h = 0
	}
	return pointInTime(h, minutes(g[3], g[4]))
}

func clock(g []string, _ time.Time) (filter.Filter, bool) {
	return pointInTime(atoi(g[1]), atoi(g[2]))
}

func hour(g []string, _ time.Time) (filter.Filter, bool) {
	return pointInTime(atoi(g[1]), minutes(g[2], g[3]))
}

func period(g []string, _ time.Time) (filter.Filter, bool) {
	p := periods[g[1]]
	return filter.Filter{TimeRange: &filter.TimeRange{
		Start: filter.FormatClock(p[0]),
		End:   filter.FormatClock(p[1]),
	}}, true
}

func minutes(explicit, half string) int {
	switch {
	case half != "":
		return 30
	case explicit == "":
		return 0
	}
	return atoi(explicit)
}

func pointInTime(h, m int) (filter.Filter, bool) {
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return filter.Filter{}, false
	}
	c := filter.FormatClock(h*60 + m)
	return filter.Filter{TimeRange: &filter.TimeRange{Start: c, End: c}}, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
