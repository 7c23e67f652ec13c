/*
Package rating scores a member's recent performance on a 0-100 scale.

PURPOSE:
  The engine combines activity and attendance signals, measured over
  different windows, into one bounded KPI and an auditable breakdown that
  shows how many points each factor contributed.

SCORING PIPELINE:
  1. Base points
  2. Positive, saturating factors:  weekly hours, weekly net earnings, referrals
  3. Manual counters (linear, capped): messages, initiatives, signals, profitable signals
  4. Negative, saturating factors:  weekly days off, weekly sick days, vacation days in 90 days
  5. Clamp to [0, 100]; the clamp adjustment is its own breakdown line

  Each factor contributes min(input * PointsPerUnit, Cap) points, with the
  sign of its group. Inputs below zero count as zero.

WINDOWS:
  Attendance penalties and throughput bonuses look at the current week.
  Vacation looks back 90 days so that one good week cannot erase a long
  absence. The windows are separate named inputs, never one shared period.

GUARANTEES:
  - More of a positive input never lowers the rating
  - More of a negative input never raises it
  - 0 <= rating <= 100
  - The breakdown adds up to the rating exactly
  - Same inputs, same output

SEE ALSO:
  - engine.go: Compute
  - pipeline.go: Fetch records, derive inputs, persist the snapshot
  - factory/calibration.go: Loading the calibration table
*/
package rating

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FACTORS
// =============================================================================

// Factor names one line of the breakdown.
type Factor string

const (
	FactorBase              Factor = "base"
	FactorWeeklyHours       Factor = "weekly_hours"
	FactorWeeklyNetEarnings Factor = "weekly_net_earnings"
	FactorReferrals         Factor = "referrals"
	FactorMessages          Factor = "messages"
	FactorInitiatives       Factor = "initiatives"
	FactorSignals           Factor = "signals"
	FactorProfitableSignals Factor = "profitable_signals"
	FactorWeeklyDaysOff     Factor = "weekly_days_off"
	FactorWeeklySickDays    Factor = "weekly_sick_days"
	FactorVacationDays90    Factor = "vacation_days_90"
	FactorClamp             Factor = "clamp_adjustment"
)

// Direction is whether a factor adds or removes points.
type Direction int

const (
	Bonus Direction = iota
	Penalty
)

// =============================================================================
// CONFIG - the calibration table
// =============================================================================

var (
	MinRating = decimal.Zero
	MaxRating = decimal.NewFromInt(100)
)

// FactorConfig maps one input to points: min(input * PointsPerUnit, Cap).
type FactorConfig struct {
	PointsPerUnit decimal.Decimal
	Cap           decimal.Decimal
}

// NewFactor is a convenience constructor from floats, used for the defaults.
func NewFactor(perUnit, cap float64) FactorConfig {
	return FactorConfig{
		PointsPerUnit: decimal.NewFromFloat(perUnit),
		Cap:           decimal.NewFromFloat(cap),
	}
}

// Saturation returns the input at which the cap is reached, or zero when
// the factor is disabled.
func (f FactorConfig) Saturation() decimal.Decimal {
	if !f.PointsPerUnit.IsPositive() {
		return decimal.Zero
	}
	return f.Cap.Div(f.PointsPerUnit)
}

// Config is the full calibration table.
type Config struct {
	Base decimal.Decimal

	WeeklyHours       FactorConfig
	WeeklyNetEarnings FactorConfig
	Referrals         FactorConfig

	Messages          FactorConfig
	Initiatives       FactorConfig
	Signals           FactorConfig
	ProfitableSignals FactorConfig

	WeeklyDaysOff      FactorConfig
	WeeklySickDays     FactorConfig
	VacationDaysLast90 FactorConfig
}

// DefaultConfig is the built-in calibration. Best possible raw score is
// 120 and worst is 15, so both clamps are reachable.
func DefaultConfig() Config {
	return Config{
		Base: decimal.NewFromInt(50),

		WeeklyHours:       NewFactor(0.5, 20),  // full marks at 40h
		WeeklyNetEarnings: NewFactor(0.01, 15), // full marks at 1500 net
		Referrals:         NewFactor(2, 10),

		Messages:          NewFactor(0.02, 5),
		Initiatives:       NewFactor(1, 5),
		Signals:           NewFactor(0.2, 5),
		ProfitableSignals: NewFactor(0.5, 10),

		WeeklyDaysOff:      NewFactor(3, 15),
		WeeklySickDays:     NewFactor(2, 10),
		VacationDaysLast90: NewFactor(0.5, 10),
	}
}

type factorSpec struct {
	Factor    Factor
	Direction Direction
	Config    FactorConfig
}

// Factors lists every scored factor in breakdown order.
func (c Config) factors() []factorSpec {
	return []factorSpec{
		{FactorWeeklyHours, Bonus, c.WeeklyHours},
		{FactorWeeklyNetEarnings, Bonus, c.WeeklyNetEarnings},
		{FactorReferrals, Bonus, c.Referrals},
		{FactorMessages, Bonus, c.Messages},
		{FactorInitiatives, Bonus, c.Initiatives},
		{FactorSignals, Bonus, c.Signals},
		{FactorProfitableSignals, Bonus, c.ProfitableSignals},
		{FactorWeeklyDaysOff, Penalty, c.WeeklyDaysOff},
		{FactorWeeklySickDays, Penalty, c.WeeklySickDays},
		{FactorVacationDays90, Penalty, c.VacationDaysLast90},
	}
}

// FactorConfigFor returns the calibration of a scored factor.
func (c Config) FactorConfigFor(f Factor) (FactorConfig, bool) {
	for _, spec := range c.factors() {
		if spec.Factor == f {
			return spec.Config, true
		}
	}
	return FactorConfig{}, false
}

// Validate rejects tables that would break monotonicity or the bounds.
func (c Config) Validate() error {
	if c.Base.IsNegative() || c.Base.GreaterThan(MaxRating) {
		return fmt.Errorf("base %s outside [0, 100]", c.Base)
	}
	for _, spec := range c.factors() {
		if spec.Config.PointsPerUnit.IsNegative() {
			return fmt.Errorf("%s: negative points per unit %s", spec.Factor, spec.Config.PointsPerUnit)
		}
		if spec.Config.Cap.IsNegative() {
			return fmt.Errorf("%s: negative cap %s", spec.Factor, spec.Config.Cap)
		}
	}
	return nil
}

// ScoredFactors lists the configurable factors in breakdown order.
func (c Config) ScoredFactors() []Factor {
	specs := c.factors()
	out := make([]Factor, len(specs))
	for i, spec := range specs {
		out[i] = spec.Factor
	}
	return out
}

// SetFactor replaces the calibration of f. It reports false for a factor
// that is not scored.
func (c *Config) SetFactor(f Factor, fc FactorConfig) bool {
	switch f {
	case FactorWeeklyHours:
		c.WeeklyHours = fc
	case FactorWeeklyNetEarnings:
		c.WeeklyNetEarnings = fc
	case FactorReferrals:
		c.Referrals = fc
	case FactorMessages:
		c.Messages = fc
	case FactorInitiatives:
		c.Initiatives = fc
	case FactorSignals:
		c.Signals = fc
	case FactorProfitableSignals:
		c.ProfitableSignals = fc
	case FactorWeeklyDaysOff:
		c.WeeklyDaysOff = fc
	case FactorWeeklySickDays:
		c.WeeklySickDays = fc
	case FactorVacationDays90:
		c.VacationDaysLast90 = fc
	default:
		return false
	}
	return true
}
