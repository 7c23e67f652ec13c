// Package attendance turns day-status intervals and work slots into the
// per-window figures the rating engine consumes.
// Every count is clipped to the window it is asked for.
package attendance

import (
	"context"

	"github.com/dexim234/apevaultteams/generic"
)

// =============================================================================
// STATUS TYPE
// =============================================================================

// StatusType is the reason a member is out of normal operating status.
// Implements generic.Kind.
type StatusType string

func (s StatusType) KindID() string     { return string(s) }
func (s StatusType) KindDomain() string { return Domain }

// Compile-time check that StatusType implements generic.Kind
var _ generic.Kind = StatusType("")

// Domain is the kind-registry domain for status types.
const Domain = "day_status"

const (
	StatusDayOff     StatusType = "dayoff"
	StatusSick       StatusType = "sick"
	StatusVacation   StatusType = "vacation"
	StatusAbsence    StatusType = "absence"
	StatusTruancy    StatusType = "truancy"
	StatusInternship StatusType = "internship"
)

// StatusTypes lists every status type in display order.
var StatusTypes = []StatusType{
	StatusDayOff,
	StatusSick,
	StatusVacation,
	StatusAbsence,
	StatusTruancy,
	StatusInternship,
}

func init() {
	for _, s := range StatusTypes {
		generic.RegisterKind(s)
	}
}

// ParseStatusType converts a stored or submitted string into a StatusType.
func ParseStatusType(s string) (StatusType, error) {
	k, err := generic.ParseKind(Domain, s)
	if err != nil {
		return "", err
	}
	return k.(StatusType), nil
}

// =============================================================================
// DAY STATUS
// =============================================================================

// DayStatus is a named interval during which a member is not operating normally.
type DayStatus struct {
	ID      generic.RecordID
	UserID  generic.MemberID
	Type    StatusType
	Date    generic.TimePoint  // first day, inclusive
	EndDate *generic.TimePoint // last day, inclusive; nil means Date only
	Comment string
}

// Interval resolves the covered days. A missing EndDate, or one before
// Date, collapses the interval to the single day Date.
func (s DayStatus) Interval() generic.Period {
	end := s.Date
	if s.EndDate != nil && !s.EndDate.Before(s.Date) {
		end = *s.EndDate
	}
	return generic.Period{Start: s.Date, End: end}
}

// =============================================================================
// SOURCES - external collaborators
// =============================================================================

// StatusSource fetches day statuses. An empty userID means every member.
type StatusSource interface {
	DayStatuses(ctx context.Context, userID generic.MemberID) ([]DayStatus, error)
}

// SlotSource fetches work slots. An empty userID means every member.
type SlotSource interface {
	WorkSlots(ctx context.Context, userID generic.MemberID) ([]WorkSlot, error)
}

// StatusStore adds the write side used by the API.
type StatusStore interface {
	StatusSource
	SaveDayStatus(ctx context.Context, s DayStatus) error
	DeleteDayStatus(ctx context.Context, id generic.RecordID) error
}

// SlotStore adds the write side used by the API.
type SlotStore interface {
	SlotSource
	SaveWorkSlot(ctx context.Context, w WorkSlot) error
	DeleteWorkSlot(ctx context.Context, id generic.RecordID) error
}
