package attendance_test

import (
	"testing"
	"time"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func jan(day int) generic.TimePoint {
	return date(2025, time.January, day)
}

func status(user string, t attendance.StatusType, start generic.TimePoint, end *generic.TimePoint) attendance.DayStatus {
	return attendance.DayStatus{
		ID:      generic.RecordID(user + "-" + string(t) + "-" + start.String()),
		UserID:  generic.MemberID(user),
		Type:    t,
		Date:    start,
		EndDate: end,
	}
}

func ptr(tp generic.TimePoint) *generic.TimePoint {
	return &tp
}

func week13() generic.Period {
	return generic.NewPeriod(jan(13), jan(19))
}

// =============================================================================
// DAY STATUS AGGREGATION
// =============================================================================

func TestCountByType_SickIntervalClippedToWeek(t *testing.T) {
	// GIVEN: Sick from Jan 10 to Jan 14
	// WHEN: Counting inside the week Jan 13 - Jan 19
	// THEN: Only Jan 13 and Jan 14 count

	records := []attendance.DayStatus{
		status("u1", attendance.StatusSick, jan(10), ptr(jan(14))),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 2, counts.Days(attendance.StatusSick))
	assert.Equal(t, 2, counts.Total())
}

func TestCountByType_MissingEndDateIsSingleDay(t *testing.T) {
	records := []attendance.DayStatus{
		status("u1", attendance.StatusDayOff, jan(15), nil),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 1, counts.Days(attendance.StatusDayOff))
}

func TestCountByType_EndBeforeStartCollapsesToStart(t *testing.T) {
	records := []attendance.DayStatus{
		status("u1", attendance.StatusVacation, jan(15), ptr(jan(2))),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 1, counts.Days(attendance.StatusVacation))
}

func TestCountByType_FiltersOtherUsersAndDisjointRecords(t *testing.T) {
	records := []attendance.DayStatus{
		status("u2", attendance.StatusSick, jan(13), ptr(jan(19))),
		status("u1", attendance.StatusSick, jan(1), ptr(jan(12))),
		status("u1", attendance.StatusAbsence, jan(20), nil),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 0, counts.Total())
	for _, st := range attendance.StatusTypes {
		_, present := counts[st]
		assert.True(t, present, "every type is reported, even at zero: %s", st)
	}
}

func TestCountByType_OverlappingSameTypeRecordsAreSummed(t *testing.T) {
	// GIVEN: Two vacation bookings that share Jan 15 and Jan 16
	// THEN: Each is counted on its own, the shared days count twice

	records := []attendance.DayStatus{
		status("u1", attendance.StatusVacation, jan(13), ptr(jan(16))),
		status("u1", attendance.StatusVacation, jan(15), ptr(jan(17))),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 7, counts.Days(attendance.StatusVacation))
}

func TestCountByType_AdjacentRecordsDoNotDoubleCount(t *testing.T) {
	records := []attendance.DayStatus{
		status("u1", attendance.StatusSick, jan(13), ptr(jan(15))),
		status("u1", attendance.StatusSick, jan(16), ptr(jan(17))),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 5, counts.Days(attendance.StatusSick))
}

func TestCountByType_MixedTypes(t *testing.T) {
	records := []attendance.DayStatus{
		status("u1", attendance.StatusDayOff, jan(13), nil),
		status("u1", attendance.StatusTruancy, jan(14), nil),
		status("u1", attendance.StatusInternship, jan(15), ptr(jan(30))),
	}

	counts := attendance.CountByType(records, "u1", week13())

	assert.Equal(t, 1, counts.Days(attendance.StatusDayOff))
	assert.Equal(t, 1, counts.Days(attendance.StatusTruancy))
	assert.Equal(t, 5, counts.Days(attendance.StatusInternship))
	assert.Equal(t, 5, attendance.DaysOfType(records, "u1", attendance.StatusInternship, week13()))
}

func TestCountByType_InvertedWindowYieldsZero(t *testing.T) {
	records := []attendance.DayStatus{
		status("u1", attendance.StatusSick, jan(13), ptr(jan(19))),
	}

	counts := attendance.CountByType(records, "u1", generic.NewPeriod(jan(19), jan(13)))

	assert.Equal(t, 0, counts.Total())
}

func TestParseStatusType(t *testing.T) {
	st, err := attendance.ParseStatusType("truancy")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusTruancy, st)

	_, err = attendance.ParseStatusType("holiday")
	assert.ErrorIs(t, err, generic.ErrInvalidKind)
}

// =============================================================================
// WORK SLOTS
// =============================================================================

func slot(start, end string) attendance.Slot {
	return attendance.Slot{Start: attendance.MustClockTime(start), End: attendance.MustClockTime(end)}
}

func TestHoursInPeriod_SumsSlotsAndRecords(t *testing.T) {
	// GIVEN: Two records on the same day and one on another day in the week
	records := []attendance.WorkSlot{
		{ID: "w1", UserID: "u1", Date: jan(13), Slots: []attendance.Slot{slot("09:00", "12:00"), slot("13:00", "17:30")}},
		{ID: "w2", UserID: "u1", Date: jan(13), Slots: []attendance.Slot{slot("20:00", "21:00")}},
		{ID: "w3", UserID: "u1", Date: jan(19), Slots: []attendance.Slot{slot("10:00", "10:20")}},
		{ID: "w4", UserID: "u1", Date: jan(20), Slots: []attendance.Slot{slot("10:00", "18:00")}},
		{ID: "w5", UserID: "u2", Date: jan(14), Slots: []attendance.Slot{slot("10:00", "18:00")}},
	}

	hours := attendance.HoursInPeriod(records, "u1", week13())

	// 3 + 4.5 + 1 + 1/3
	want := decimal.NewFromInt(530).Div(decimal.NewFromInt(60))
	assert.True(t, want.Equal(hours.Value), "got %s", hours.Value)
	assert.Equal(t, generic.UnitHours, hours.Unit)

	byDay := attendance.HoursByDay(records, "u1", week13())
	require.Len(t, byDay, 2)
	assert.True(t, decimal.RequireFromString("8.5").Equal(byDay[jan(13)].Value))
}

func TestSlot_InvertedContributesNothing(t *testing.T) {
	s := slot("18:00", "09:00")
	assert.Equal(t, 0, s.Minutes())
}

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in      string
		want    attendance.ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"-1:00", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := attendance.ParseClockTime(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, generic.ErrInvalidClockTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}
