package interpret

import (
	"testing"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
)

var kst = time.FixedZone("KST", 9*60*60)

// Friday.
var fixedNow = time.Date(2026, 10, 16, 10, 30, 0, 0, kst)

func newTestInterpreter() *Interpreter {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, kst)
}

func eod(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, kst)
}

func TestExtract_NoMatch(t *testing.T) {
	in := newTestInterpreter()
	q := "  프로젝트   회고  "
	got := in.Extract(q)
	if got.CleanQuery != q {
		t.Errorf("clean query = %q, want unchanged %q", got.CleanQuery, q)
	}
	if got.Filter != nil || got.Match != nil {
		t.Errorf("expected no filter, got %+v / %+v", got.Filter, got.Match)
	}
}

func TestExtract_Comprehension(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		clean   string
		op      filter.Operator
		lo, hi  float64
		hasMin  bool
		hasMax  bool
		matched string
	}{
		{"gte with prefix", "이해도점수 80점 이상", "", filter.GTE, 80, 0, true, false, "이해도점수 80점 이상"},
		{"gte inline", "복습 노트 70점 이상 보여줘", "복습 노트 보여줘", filter.GTE, 70, 0, true, false, "70점 이상"},
		{"lte", "이해도 40점 이하 문제", "문제", filter.LTE, 0, 40, false, true, "이해도 40점 이하"},
		{"eq", "90점 받은 시험", "받은 시험", filter.EQ, 90, 0, true, false, "90점"},
		{"range tilde", "50점 ~ 80점 사이 기록", "기록", filter.Range, 50, 80, true, true, "50점 ~ 80점 사이"},
		{"range reversed", "80~50점", "", filter.Range, 50, 80, true, true, "80~50점"},
		{"range 에서 까지", "60점에서 75점까지 정리", "정리", filter.Range, 60, 75, true, true, "60점에서 75점까지"},
		{"decimal", "85.5점 이상", "", filter.GTE, 85.5, 0, true, false, "85.5점 이상"},
	}

	in := newTestInterpreter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Extract(tt.query)
			if got.CleanQuery != tt.clean {
				t.Errorf("clean = %q, want %q", got.CleanQuery, tt.clean)
			}
			if got.Filter == nil || got.Filter.ComprehensionScore == nil {
				t.Fatalf("expected comprehension filter, got %+v", got.Filter)
			}
			cs := got.Filter.ComprehensionScore
			if cs.Operator != tt.op {
				t.Errorf("operator = %s, want %s", cs.Operator, tt.op)
			}
			if (cs.Min != nil) != tt.hasMin || (cs.Max != nil) != tt.hasMax {
				t.Fatalf("min/max presence = %v/%v", cs.Min != nil, cs.Max != nil)
			}
			if tt.hasMin && *cs.Min != tt.lo {
				t.Errorf("min = %v, want %v", *cs.Min, tt.lo)
			}
			if tt.hasMax && *cs.Max != tt.hi {
				t.Errorf("max = %v, want %v", *cs.Max, tt.hi)
			}
			if got.Match.Family != Comprehension || got.Match.Text != tt.matched {
				t.Errorf("match = %+v, want comprehension %q", got.Match, tt.matched)
			}
		})
	}
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		clean      string
		rule       string
		start, end time.Time
	}{
		{"today", "오늘 회의", "회의", "relative_day", day(2026, 10, 16), eod(2026, 10, 16)},
		{"yesterday with particle", "어제의 메모", "메모", "relative_day", day(2026, 10, 15), eod(2026, 10, 15)},
		{"tomorrow", "내일 일정", "일정", "relative_day", day(2026, 10, 17), eod(2026, 10, 17)},
		{"day after tomorrow", "모레 약속", "약속", "relative_day", day(2026, 10, 18), eod(2026, 10, 18)},
		{"two days ago", "그저께 본 영상", "본 영상", "relative_day", day(2026, 10, 14), eod(2026, 10, 14)},
		{"full korean date", "2025년 3월 1일에 쓴 일기", "쓴 일기", "ymd", day(2025, 3, 1), eod(2025, 3, 1)},
		{"numeric date", "2026-02-28 회의록", "회의록", "ymd_numeric", day(2026, 2, 28), eod(2026, 2, 28)},
		{"dotted date", "2026.1.5 메모", "메모", "ymd_numeric", day(2026, 1, 5), eod(2026, 1, 5)},
		{"year month", "2024년 2월 정리", "정리", "ym", day(2024, 2, 1), eod(2024, 2, 29)},
		{"month day", "3월 15일 강의", "강의", "md", day(2026, 3, 15), eod(2026, 3, 15)},
		{"days ago", "3일 전 노트", "노트", "days_ago", day(2026, 10, 13), eod(2026, 10, 13)},
		{"recent days", "최근 7일 동안 공부", "공부", "recent_days", day(2026, 10, 10), eod(2026, 10, 16)},
		{"this week", "이번 주 회의", "회의", "week", day(2026, 10, 11), eod(2026, 10, 17)},
		{"last week", "지난주 발표", "발표", "week", day(2026, 10, 4), eod(2026, 10, 10)},
		{"next week", "다음 주에 할 일", "할 일", "week", day(2026, 10, 18), eod(2026, 10, 24)},
		{"this month", "이번 달 지출", "지출", "month", day(2026, 10, 1), eod(2026, 10, 31)},
		{"last month", "저번달 독서", "독서", "month", day(2026, 9, 1), eod(2026, 9, 30)},
		{"next month", "다음 달 계획", "계획", "month", day(2026, 11, 1), eod(2026, 11, 30)},
		{"month only", "12월 여행", "여행", "month_only", day(2026, 12, 1), eod(2026, 12, 31)},
		{"day only", "5일 미팅", "미팅", "day_only", day(2026, 10, 5), eod(2026, 10, 5)},
	}

	in := newTestInterpreter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Extract(tt.query)
			if got.CleanQuery != tt.clean {
				t.Errorf("clean = %q, want %q", got.CleanQuery, tt.clean)
			}
			if got.Filter == nil || got.Filter.DateRange == nil {
				t.Fatalf("expected date filter, got %+v", got.Filter)
			}
			dr := got.Filter.DateRange
			if !dr.Start.Equal(tt.start) {
				t.Errorf("start = %v, want %v", dr.Start, tt.start)
			}
			if !dr.End.Equal(tt.end) {
				t.Errorf("end = %v, want %v", dr.End, tt.end)
			}
			if got.Match.Family != Date || got.Match.Rule != tt.rule {
				t.Errorf("match = %+v, want date/%s", got.Match, tt.rule)
			}
		})
	}
}

func TestExtract_Times(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		clean      string
		start, end string
	}{
		{"evening", "저녁에 운동", "운동", "18:00", "22:00"},
		{"dawn", "새벽 코딩", "코딩", "00:00", "06:00"},
		{"morning", "아침 루틴", "루틴", "06:00", "12:00"},
		{"lunch", "점심 메뉴", "메뉴", "12:00", "14:00"},
		{"afternoon", "오후에는 산책", "산책", "12:00", "18:00"},
		{"night", "밤 독서", "독서", "22:00", "24:00"},
		{"am period", "오전 회의", "회의", "00:00", "12:00"},
		{"pm hour", "오후 3시 미팅", "미팅", "15:00", "15:00"},
		{"am twelve", "오전 12시 알람", "알람", "00:00", "00:00"},
		{"pm half", "오후 2시 반에 통화", "통화", "14:30", "14:30"},
		{"clock", "14:05 알림", "알림", "14:05", "14:05"},
		{"hour minute", "9시 15분 수업", "수업", "09:15", "09:15"},
		{"bare hour", "3시 회의", "회의", "03:00", "03:00"},
		{"hour inside period", "새벽 2시 코딩", "새벽 코딩", "02:00", "02:00"},
		{"pm hour with particle", "오후 7시에 저녁 약속", "저녁 약속", "19:00", "19:00"},
	}

	in := newTestInterpreter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Extract(tt.query)
			if got.CleanQuery != tt.clean {
				t.Errorf("clean = %q, want %q", got.CleanQuery, tt.clean)
			}
			if got.Filter == nil || got.Filter.TimeRange == nil {
				t.Fatalf("expected time filter, got %+v", got.Filter)
			}
			if tr := got.Filter.TimeRange; tr.Start != tt.start || tr.End != tt.end {
				t.Errorf("time range = %s-%s, want %s-%s", tr.Start, tr.End, tt.start, tt.end)
			}
			if got.Match.Family != Time {
				t.Errorf("family = %s, want time", got.Match.Family)
			}
		})
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	in := newTestInterpreter()

	got := in.Extract("어제 저녁 80점 이상 문제")
	if got.Filter.ComprehensionScore == nil {
		t.Fatalf("comprehension must win over date and time, got %+v", got.Filter)
	}
	if got.Filter.DateRange != nil || got.Filter.TimeRange != nil {
		t.Errorf("only one dimension may be extracted, got %+v", got.Filter)
	}
	if got.CleanQuery != "어제 저녁 문제" {
		t.Errorf("clean = %q", got.CleanQuery)
	}

	got = in.Extract("어제 저녁 회의")
	if got.Filter.DateRange == nil || got.Filter.TimeRange != nil {
		t.Fatalf("date must win over time, got %+v", got.Filter)
	}
	if got.CleanQuery != "저녁 회의" {
		t.Errorf("clean = %q", got.CleanQuery)
	}
}

func TestExtract_InvalidCandidatesFallThrough(t *testing.T) {
	in := newTestInterpreter()

	got := in.Extract("2월 30일 메모")
	if got.Match == nil || got.Match.Rule != "month_only" {
		t.Fatalf("invalid month/day should fall through to month_only, got %+v", got.Match)
	}
	if got.CleanQuery != "30일 메모" {
		t.Errorf("clean = %q", got.CleanQuery)
	}

	got = in.Extract("점심 메뉴 추천")
	if got.Match == nil || got.Match.Family != Time {
		t.Fatalf("점심 must not be read as a score, got %+v", got.Match)
	}

	got = in.Extract("2시간 공부")
	if got.Match != nil {
		t.Errorf("duration must not be read as a time, got %+v", got.Match)
	}

	got = in.Extract("12일간 여행")
	if got.Match != nil {
		t.Errorf("day count must not be read as a date, got %+v", got.Match)
	}
	if got.CleanQuery != "12일간 여행" {
		t.Errorf("clean = %q", got.CleanQuery)
	}
}

func TestExtract_DefaultClock(t *testing.T) {
	got := New().Extract("오늘 할 일")
	if got.Filter == nil || got.Filter.DateRange == nil {
		t.Fatal("expected date filter with default clock")
	}
	if err := got.Filter.Validate(); err != nil {
		t.Errorf("extracted filter invalid: %v", err)
	}
}

func TestRules_Order(t *testing.T) {
	names := newTestInterpreter().Rules()
	if len(names) == 0 {
		t.Fatal("no rules")
	}
	if names[0] != "comprehension/range" {
		t.Errorf("first rule = %s, want comprehension/range", names[0])
	}
	if names[len(names)-1] != "time/period" {
		t.Errorf("last rule = %s, want time/period", names[len(names)-1])
	}
}
