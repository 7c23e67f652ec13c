package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/monitoring"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseWindowDays     = 30
	DefaultVacationWindowDays = 90
)

// =============================================================================
// WINDOWS
// =============================================================================

// Windows are the periods one recompute looks at.
type Windows struct {
	Week     generic.Period // weekly hours, net, days off, sick days
	Base     generic.Period // snapshot totals
	Vacation generic.Period // vacation look-back
}

// Span covers every window, for fetching.
func (w Windows) Span() generic.Period {
	start := generic.MinTimePoint(w.Week.Start, generic.MinTimePoint(w.Base.Start, w.Vacation.Start))
	end := generic.MaxTimePoint(w.Week.End, generic.MaxTimePoint(w.Base.End, w.Vacation.End))
	return generic.Period{Start: start, End: end}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline recomputes a member's snapshot from the live record set:
// fetch, select windows, aggregate and split, score, overwrite.
type Pipeline struct {
	Earnings  compensation.Source
	Statuses  attendance.StatusSource
	Slots     attendance.SlotSource
	Snapshots SnapshotStore

	Config Config
	Split  compensation.Config

	WeekStart          time.Weekday
	BaseWindowDays     int
	VacationWindowDays int

	Logger logrus.FieldLogger
	Now    func() time.Time

	locks sync.Map // generic.MemberID -> *sync.Mutex
}

// NewPipeline wires the sources with the default calibration and windows.
func NewPipeline(
	earnings compensation.Source,
	statuses attendance.StatusSource,
	slots attendance.SlotSource,
	snapshots SnapshotStore,
	logger logrus.FieldLogger,
) *Pipeline {
	return &Pipeline{
		Earnings:           earnings,
		Statuses:           statuses,
		Slots:              slots,
		Snapshots:          snapshots,
		Config:             DefaultConfig(),
		Split:              compensation.DefaultConfig(),
		WeekStart:          generic.DefaultWeekStart,
		BaseWindowDays:     DefaultBaseWindowDays,
		VacationWindowDays: DefaultVacationWindowDays,
		Logger:             logger,
		Now:                time.Now,
	}
}

// WindowsAt derives the windows for a recompute as of asOf.
func (p *Pipeline) WindowsAt(asOf generic.TimePoint) Windows {
	return Windows{
		Week:     generic.WeekOf(asOf, p.WeekStart),
		Base:     generic.LastNDaysFrom(asOf, p.BaseWindowDays),
		Vacation: generic.LastNDaysFrom(asOf, p.VacationWindowDays),
	}
}

// Records is everything fetched for one member.
type Records struct {
	Earnings []compensation.Earning
	Statuses []attendance.DayStatus
	Slots    []attendance.WorkSlot
	Previous *Snapshot
}

// Outcome is the result of one recompute.
type Outcome struct {
	Snapshot Snapshot
	Result   Result
	Inputs   Inputs
	Windows  Windows
}

// Recompute fetches userID's records, scores them as of asOf and overwrites
// the stored snapshot. Recomputes of the same member run one at a time.
func (p *Pipeline) Recompute(ctx context.Context, userID generic.MemberID, asOf generic.TimePoint) (Outcome, error) {
	mu := p.memberLock(userID)
	mu.Lock()
	defer mu.Unlock()

	windows := p.WindowsAt(asOf)

	records, err := p.fetch(ctx, userID, windows.Span())
	if err != nil {
		monitoring.RatingRecomputesTotal.WithLabelValues(monitoring.ResultError).Inc()
		return Outcome{}, fmt.Errorf("fetch records for %s: %w", userID, err)
	}

	outcome := p.Evaluate(userID, records, windows)
	outcome.Snapshot.UpdatedAt = p.now()

	if err := p.Snapshots.SaveSnapshot(ctx, outcome.Snapshot); err != nil {
		monitoring.RatingRecomputesTotal.WithLabelValues(monitoring.ResultError).Inc()
		return Outcome{}, fmt.Errorf("save snapshot for %s: %w", userID, err)
	}

	monitoring.RatingRecomputesTotal.WithLabelValues(monitoring.ResultOK).Inc()
	rating, _ := outcome.Result.Rating.Float64()
	monitoring.RatingValue.Observe(rating)

	p.logger().WithFields(logrus.Fields{
		"member": userID,
		"as_of":  asOf.String(),
		"rating": outcome.Result.Rating.StringFixed(2),
	}).Debug("rating recomputed")

	return outcome, nil
}

// RecomputeAll recomputes every member. A failing member is logged and
// skipped; the joined error lists every failure.
func (p *Pipeline) RecomputeAll(ctx context.Context, members []generic.MemberID, asOf generic.TimePoint) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(members))
	var errs []error
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome, err := p.Recompute(ctx, m, asOf)
		if err != nil {
			p.logger().WithError(err).WithField("member", m).Warn("rating recompute failed")
			errs = append(errs, err)
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, errors.Join(errs...)
}

// fetch loads the four inputs concurrently.
func (p *Pipeline) fetch(ctx context.Context, userID generic.MemberID, span generic.Period) (Records, error) {
	var records Records
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		earnings, err := p.Earnings.Earnings(ctx, generic.InPeriod(userID, span))
		records.Earnings = earnings
		return err
	})
	g.Go(func() error {
		statuses, err := p.Statuses.DayStatuses(ctx, userID)
		records.Statuses = statuses
		return err
	})
	g.Go(func() error {
		slots, err := p.Slots.WorkSlots(ctx, userID)
		records.Slots = slots
		return err
	})
	g.Go(func() error {
		prev, err := p.Snapshots.Snapshot(ctx, userID)
		records.Previous = prev
		return err
	})

	if err := g.Wait(); err != nil {
		return Records{}, err
	}
	return records, nil
}

// Evaluate is the pure part of Recompute: records in, snapshot and score out.
// Manual counters come from the previous snapshot unchanged.
func (p *Pipeline) Evaluate(userID generic.MemberID, records Records, windows Windows) Outcome {
	snapshot := NewSnapshot(userID)
	if records.Previous != nil {
		snapshot.Counters = records.Previous.Counters
	}
	snapshot.Window = windows.Base

	// Base-window totals
	baseEarnings := compensation.Select(records.Earnings, compensation.Filter{Window: &windows.Base})
	snapshot.Earnings = compensation.PerMemberNet(baseEarnings, userID, p.Split)
	snapshot.PoolAmount = compensation.PerMemberPool(baseEarnings, userID, p.Split)
	snapshot.ApplyAttendance(attendance.CountByType(records.Statuses, userID, windows.Base))

	// Window-specific scalars
	weekEarnings := compensation.Select(records.Earnings, compensation.Filter{Window: &windows.Week})
	weekly := attendance.CountByType(records.Statuses, userID, windows.Week)
	inputs := Inputs{
		Counters:           snapshot.Counters,
		WeeklyHoursWorked:  attendance.HoursInPeriod(records.Slots, userID, windows.Week).Value,
		WeeklyNetEarnings:  compensation.PerMemberNet(weekEarnings, userID, p.Split),
		WeeklyDaysOff:      weekly.Days(attendance.StatusDayOff),
		WeeklySickDays:     weekly.Days(attendance.StatusSick),
		VacationDaysLast90: attendance.DaysOfType(records.Statuses, userID, attendance.StatusVacation, windows.Vacation),
	}

	result := Compute(inputs, p.Config)
	snapshot.Rating = result.Rating
	snapshot.Breakdown = result.Breakdown

	return Outcome{Snapshot: snapshot, Result: result, Inputs: inputs, Windows: windows}
}

func (p *Pipeline) memberLock(userID generic.MemberID) *sync.Mutex {
	mu, _ := p.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) logger() logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.StandardLogger()
}
