package rating

import (
	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUTS
// =============================================================================

// ManualCounters are maintained by hand outside the record stores. They are
// carried from snapshot to snapshot untouched by recomputation.
type ManualCounters struct {
	Messages          int
	Initiatives       int
	Signals           int
	ProfitableSignals int
	Referrals         int
}

// Inputs are the scalars the engine scores. Each weekly field is measured
// over the current week; VacationDaysLast90 over the last 90 days.
type Inputs struct {
	Counters ManualCounters

	WeeklyHoursWorked  decimal.Decimal
	WeeklyNetEarnings  decimal.Decimal
	WeeklyDaysOff      int
	WeeklySickDays     int
	VacationDaysLast90 int
}

func (in Inputs) valueOf(f Factor) decimal.Decimal {
	switch f {
	case FactorWeeklyHours:
		return in.WeeklyHoursWorked
	case FactorWeeklyNetEarnings:
		return in.WeeklyNetEarnings
	case FactorReferrals:
		return decimal.NewFromInt(int64(in.Counters.Referrals))
	case FactorMessages:
		return decimal.NewFromInt(int64(in.Counters.Messages))
	case FactorInitiatives:
		return decimal.NewFromInt(int64(in.Counters.Initiatives))
	case FactorSignals:
		return decimal.NewFromInt(int64(in.Counters.Signals))
	case FactorProfitableSignals:
		return decimal.NewFromInt(int64(in.Counters.ProfitableSignals))
	case FactorWeeklyDaysOff:
		return decimal.NewFromInt(int64(in.WeeklyDaysOff))
	case FactorWeeklySickDays:
		return decimal.NewFromInt(int64(in.WeeklySickDays))
	case FactorVacationDays90:
		return decimal.NewFromInt(int64(in.VacationDaysLast90))
	}
	return decimal.Zero
}

// =============================================================================
// RESULT
// =============================================================================

// Line is one entry of the breakdown.
type Line struct {
	Factor Factor
	Input  decimal.Decimal // the input after clamping at zero
	Points generic.Amount  // in points
}

// Breakdown lists the point contribution of every factor, the base and the
// clamp adjustment. Its sum is the rating.
type Breakdown []Line

// Sum adds every line.
func (b Breakdown) Sum() decimal.Decimal {
	lines := make([]generic.Amount, len(b))
	for i, l := range b {
		lines[i] = l.Points
	}
	return generic.SumAmounts(generic.UnitPoints, lines...).Value
}

// Points returns the contribution of f, zero when absent.
func (b Breakdown) Points(f Factor) decimal.Decimal {
	for _, l := range b {
		if l.Factor == f {
			return l.Points.Value
		}
	}
	return decimal.Zero
}

// Map indexes the breakdown by factor.
func (b Breakdown) Map() map[Factor]decimal.Decimal {
	out := make(map[Factor]decimal.Decimal, len(b))
	for _, l := range b {
		out[l.Factor] = l.Points.Value
	}
	return out
}

// Result is a computed rating.
type Result struct {
	Rating    decimal.Decimal
	Raw       decimal.Decimal // before clamping
	Breakdown Breakdown
}

// =============================================================================
// ENGINE
// =============================================================================

// Compute scores in against cfg. It never fails: negative inputs count as
// zero, and a negative rate or cap disables the factor.
func Compute(in Inputs, cfg Config) Result {
	base := clampRange(cfg.Base, MinRating, MaxRating)
	breakdown := Breakdown{{Factor: FactorBase, Input: base, Points: points(base)}}
	raw := base

	for _, spec := range cfg.factors() {
		input := nonNegative(in.valueOf(spec.Factor))
		pts := points(saturate(input, spec.Config))
		if spec.Direction == Penalty {
			pts = pts.Neg()
		}
		breakdown = append(breakdown, Line{Factor: spec.Factor, Input: input, Points: pts})
		raw = raw.Add(pts.Value)
	}

	rating := clampRange(raw, MinRating, MaxRating)
	breakdown = append(breakdown, Line{
		Factor: FactorClamp,
		Input:  raw,
		Points: points(rating).Sub(points(raw)),
	})

	return Result{Rating: rating, Raw: raw, Breakdown: breakdown}
}

// saturate returns min(input * rate, cap), never negative.
func saturate(input decimal.Decimal, f FactorConfig) decimal.Decimal {
	rate := nonNegative(f.PointsPerUnit)
	limit := nonNegative(f.Cap)
	return decimal.Min(input.Mul(rate), limit)
}

func points(d decimal.Decimal) generic.Amount {
	return generic.NewAmountFromDecimal(d, generic.UnitPoints)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clampRange(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// =============================================================================
// FACADE
// =============================================================================

// ComputeRating scores one member. The snapshot supplies the manual
// counters and may be nil for a member who has none yet. The remaining
// arguments are the window-specific scalars, passed by name so each
// window stays visible at the call site.
func ComputeRating(
	userID generic.MemberID,
	snapshot *Snapshot,
	weeklyHours decimal.Decimal,
	weeklyNetEarnings decimal.Decimal,
	weeklyDaysOff int,
	weeklySickDays int,
	vacationDaysLast90 int,
	cfg Config,
) Result {
	var counters ManualCounters
	if snapshot != nil && snapshot.UserID == userID {
		counters = snapshot.Counters
	}
	return Compute(Inputs{
		Counters:           counters,
		WeeklyHoursWorked:  weeklyHours,
		WeeklyNetEarnings:  weeklyNetEarnings,
		WeeklyDaysOff:      weeklyDaysOff,
		WeeklySickDays:     weeklySickDays,
		VacationDaysLast90: vacationDaysLast90,
	}, cfg)
}
