package rating

import (
	"context"
	"time"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOT - per-member aggregate, overwritten on every recompute
// =============================================================================

// Snapshot is the stored rating of one member together with the base-window
// figures it was computed from. There is exactly one per member.
type Snapshot struct {
	UserID generic.MemberID

	// Window is the base window the totals below cover.
	Window generic.Period

	Earnings   decimal.Decimal // net share
	PoolAmount decimal.Decimal // pool share

	Counters ManualCounters

	DaysOff        int
	SickDays       int
	VacationDays   int
	AbsenceDays    int
	TruancyDays    int
	InternshipDays int

	Rating    decimal.Decimal
	Breakdown Breakdown
	UpdatedAt time.Time
}

// NewSnapshot is an empty snapshot for a member seen for the first time.
func NewSnapshot(userID generic.MemberID) Snapshot {
	return Snapshot{
		UserID:     userID,
		Earnings:   decimal.Zero,
		PoolAmount: decimal.Zero,
		Rating:     decimal.Zero,
	}
}

// ApplyAttendance copies base-window day counts into the snapshot.
func (s *Snapshot) ApplyAttendance(c attendance.Counts) {
	s.DaysOff = c.Days(attendance.StatusDayOff)
	s.SickDays = c.Days(attendance.StatusSick)
	s.VacationDays = c.Days(attendance.StatusVacation)
	s.AbsenceDays = c.Days(attendance.StatusAbsence)
	s.TruancyDays = c.Days(attendance.StatusTruancy)
	s.InternshipDays = c.Days(attendance.StatusInternship)
}

// SnapshotStore persists snapshots. Snapshot returns nil, nil when the
// member has none yet. SaveSnapshot replaces the derived fields of any
// existing snapshot but never its counters; those change only through
// SaveCounters.
type SnapshotStore interface {
	Snapshot(ctx context.Context, userID generic.MemberID) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, s Snapshot) error
	SaveCounters(ctx context.Context, userID generic.MemberID, c ManualCounters) error
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
}
