package generic_test

import (
	"testing"
	"time"

	"github.com/dexim234/apevaultteams/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(year, month, d)
}

// =============================================================================
// WEEK / LOOKBACK WINDOWS
// =============================================================================

func TestWeekOf_MondayStart(t *testing.T) {
	cases := []struct {
		name string
		ref  generic.TimePoint
	}{
		{"monday", day(2025, time.January, 13)},
		{"wednesday", day(2025, time.January, 15)},
		{"sunday", day(2025, time.January, 19)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			week := generic.WeekOf(tc.ref, generic.DefaultWeekStart)
			assert.Equal(t, "2025-01-13", week.Start.String())
			assert.Equal(t, "2025-01-19", week.End.String())
			assert.Equal(t, 7, week.NumDays())
			assert.True(t, week.Contains(tc.ref))
		})
	}
}

func TestWeekOf_SundayStart(t *testing.T) {
	week := generic.WeekOf(day(2025, time.January, 15), time.Sunday)
	assert.Equal(t, "2025-01-12", week.Start.String())
	assert.Equal(t, "2025-01-18", week.End.String())
}

func TestWeekOf_CrossesYearBoundary(t *testing.T) {
	week := generic.WeekOf(day(2025, time.January, 1), generic.DefaultWeekStart)
	assert.Equal(t, "2024-12-30", week.Start.String())
	assert.Equal(t, "2025-01-05", week.End.String())
}

func TestLastNDaysFrom(t *testing.T) {
	p := generic.LastNDaysFrom(day(2025, time.April, 1), 90)
	assert.Equal(t, "2025-01-01", p.Start.String())
	assert.Equal(t, "2025-04-01", p.End.String())
	assert.Equal(t, 91, p.NumDays(), "both ends are inclusive")

	assert.Equal(t, 1, generic.LastNDaysFrom(day(2025, time.April, 1), -3).NumDays())
}

func TestLastNDays_AnchoredToToday(t *testing.T) {
	p := generic.LastNDays(7)
	assert.True(t, p.End.Equal(generic.Today()))
	assert.Equal(t, 8, p.NumDays())
}

func TestMonthOf(t *testing.T) {
	p := generic.MonthOf(day(2024, time.February, 10))
	assert.Equal(t, "2024-02-01", p.Start.String())
	assert.Equal(t, "2024-02-29", p.End.String())
}

// =============================================================================
// OVERLAP COUNTING
// =============================================================================

func TestCountDaysInPeriod(t *testing.T) {
	cases := []struct {
		name                       string
		iStart, iEnd, wStart, wEnd generic.TimePoint
		want                       int
	}{
		{"partial overlap", day(2025, 1, 10), day(2025, 1, 14), day(2025, 1, 13), day(2025, 1, 19), 2},
		{"interval inside window", day(2025, 1, 14), day(2025, 1, 15), day(2025, 1, 13), day(2025, 1, 19), 2},
		{"window inside interval", day(2025, 1, 1), day(2025, 1, 31), day(2025, 1, 13), day(2025, 1, 19), 7},
		{"single day", day(2025, 1, 13), day(2025, 1, 13), day(2025, 1, 13), day(2025, 1, 19), 1},
		{"touching edge", day(2025, 1, 1), day(2025, 1, 13), day(2025, 1, 13), day(2025, 1, 19), 1},
		{"disjoint", day(2025, 1, 1), day(2025, 1, 12), day(2025, 1, 13), day(2025, 1, 19), 0},
		{"inverted window", day(2025, 1, 1), day(2025, 1, 31), day(2025, 1, 19), day(2025, 1, 13), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := generic.CountDaysInPeriod(tc.iStart, tc.iEnd, tc.wStart, tc.wEnd)
			assert.Equal(t, tc.want, got)

			swapped := generic.CountDaysInPeriod(tc.wStart, tc.wEnd, tc.iStart, tc.iEnd)
			assert.Equal(t, got, swapped, "intersection is commutative")
		})
	}
}

func TestCountDaysInPeriod_WindowAdditivity(t *testing.T) {
	// GIVEN: A window W split into two disjoint halves
	// THEN: Counts over the halves add up to the count over W

	interval := generic.NewPeriod(day(2025, 1, 5), day(2025, 2, 20))
	w := generic.NewPeriod(day(2025, 1, 1), day(2025, 1, 31))

	for split := 0; split < w.NumDays()-1; split++ {
		left := generic.NewPeriod(w.Start, w.Start.AddDays(split))
		right := generic.NewPeriod(left.End.AddDays(1), w.End)

		total := generic.CountDaysInPeriod(interval.Start, interval.End, w.Start, w.End)
		parts := generic.CountDaysInPeriod(interval.Start, interval.End, left.Start, left.End) +
			generic.CountDaysInPeriod(interval.Start, interval.End, right.Start, right.End)

		require.Equal(t, total, parts, "split after %d days", split)
	}
}

func TestPeriod_Intersect(t *testing.T) {
	a := generic.NewPeriod(day(2025, 1, 1), day(2025, 1, 10))
	b := generic.NewPeriod(day(2025, 1, 5), day(2025, 1, 20))

	got := a.Intersect(b)
	assert.Equal(t, "[2025-01-05, 2025-01-10]", got.String())
	assert.True(t, a.Overlaps(b))

	c := generic.NewPeriod(day(2025, 2, 1), day(2025, 2, 2))
	assert.False(t, a.Overlaps(c))
	assert.True(t, a.Intersect(c).IsEmpty())
	assert.Empty(t, a.Intersect(c).Days())
}

func TestTimePoint_IgnoresTimeOfDay(t *testing.T) {
	morning := generic.TimePoint{Time: time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC)}
	evening := generic.TimePoint{Time: time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC)}

	assert.True(t, morning.Equal(evening))
	assert.Equal(t, 0, generic.DaysBetween(morning, evening))
}

func TestDaysBetween_SpansEveryYear(t *testing.T) {
	first := day(1, 1, 1)
	last := day(9999, 12, 31)

	assert.Equal(t, 3652058, generic.DaysBetween(first, last))
	assert.Equal(t, -3652058, generic.DaysBetween(last, first))
	assert.Equal(t, 3652059, generic.NewPeriod(first, last).NumDays())
}

func TestParseDate(t *testing.T) {
	tp, err := generic.ParseDate("2025-01-13")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, tp.Weekday())

	_, err = generic.ParseDate("13/01/2025")
	assert.Error(t, err)
}
