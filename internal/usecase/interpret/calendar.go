package interpret

import (
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
)

// today truncates now to local midnight.
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// endOfDay returns 23:59:59.999 of d's calendar day.
func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999*int(time.Millisecond), d.Location())
}

// date builds a local midnight, rejecting out-of-range components
// instead of letting time.Date normalise them.
func date(loc *time.Location, y, m, d int) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func dayFilter(d time.Time) filter.Filter {
	return rangeFilter(d, endOfDay(d))
}

func monthFilter(y int, m time.Month, loc *time.Location) filter.Filter {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, loc)
	return rangeFilter(first, endOfDay(last))
}

func rangeFilter(start, end time.Time) filter.Filter {
	return filter.Filter{DateRange: &filter.DateRange{Start: start, End: end}}
}
