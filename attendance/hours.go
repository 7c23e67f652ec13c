package attendance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK TIME
// =============================================================================

// ClockTime is a time of day in minutes after midnight. 24:00 is allowed
// as the end of a slot that runs to midnight.
type ClockTime int

const minutesPerDay = 24 * 60

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	total := h*60 + m
	if h < 0 || m < 0 || m > 59 || total > minutesPerDay {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	return ClockTime(total), nil
}

// MustClockTime panics on malformed input. For tests and fixtures.
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// WORK SLOT
// =============================================================================

// Slot is one continuous stretch of work within a day.
type Slot struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Minutes is End-Start, or zero for an empty or inverted slot.
func (s Slot) Minutes() int {
	if s.End <= s.Start {
		return 0
	}
	return int(s.End - s.Start)
}

// WorkSlot is the scheduled/worked time of a member on one day.
type WorkSlot struct {
	ID     generic.RecordID
	UserID generic.MemberID
	Date   generic.TimePoint
	Slots  []Slot
}

var sixty = decimal.NewFromInt(60)

// Minutes sums every slot of the record.
func (w WorkSlot) Minutes() int {
	minutes := 0
	for _, s := range w.Slots {
		minutes += s.Minutes()
	}
	return minutes
}

// Hours is Minutes expressed in hours.
func (w WorkSlot) Hours() generic.Amount {
	return minutesToHours(w.Minutes())
}

func minutesToHours(minutes int) generic.Amount {
	return generic.NewAmountFromDecimal(decimal.NewFromInt(int64(minutes)).Div(sixty), generic.UnitHours)
}

// HoursInPeriod sums the hours of userID's slot records dated inside window.
// Several records for the same day all count.
func HoursInPeriod(records []WorkSlot, userID generic.MemberID, window generic.Period) generic.Amount {
	minutes := 0
	for _, r := range records {
		if r.UserID != userID || !window.Contains(r.Date) {
			continue
		}
		minutes += r.Minutes()
	}
	return minutesToHours(minutes)
}

// HoursByDay breaks HoursInPeriod down per day, for the schedule view.
func HoursByDay(records []WorkSlot, userID generic.MemberID, window generic.Period) map[generic.TimePoint]generic.Amount {
	minutes := make(map[generic.TimePoint]int)
	for _, r := range records {
		if r.UserID != userID || !window.Contains(r.Date) {
			continue
		}
		minutes[generic.FromTime(r.Date.Time)] += r.Minutes()
	}
	out := make(map[generic.TimePoint]generic.Amount, len(minutes))
	for day, m := range minutes {
		out[day] = minutesToHours(m)
	}
	return out
}
