package rating_test

import (
	"math/rand"
	"testing"

	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func neutral() rating.Inputs {
	return rating.Inputs{
		WeeklyHoursWorked: dec("20"),
		WeeklyNetEarnings: dec("300"),
		Counters:          rating.ManualCounters{Messages: 50, Initiatives: 1, Signals: 5, ProfitableSignals: 2, Referrals: 1},
	}
}

func score(in rating.Inputs) decimal.Decimal {
	return rating.Compute(in, rating.DefaultConfig()).Rating
}

// =============================================================================
// MONOTONICITY
// =============================================================================

func TestCompute_HoursMonotone(t *testing.T) {
	cfg := rating.DefaultConfig()
	hoursCap := cfg.WeeklyHours.Saturation()
	require.True(t, hoursCap.IsPositive())

	at := func(h decimal.Decimal) decimal.Decimal {
		in := neutral()
		in.WeeklyHoursWorked = h
		return score(in)
	}

	r10, r20, rCap := at(dec("10")), at(dec("20")), at(hoursCap)
	assert.True(t, r10.LessThanOrEqual(r20), "10h=%s 20h=%s", r10, r20)
	assert.True(t, r20.LessThanOrEqual(rCap), "20h=%s cap=%s", r20, rCap)

	// Saturation: past the cap nothing changes
	assert.True(t, at(hoursCap.Mul(dec("3"))).Equal(rCap))
}

func TestCompute_SickDaysMonotone(t *testing.T) {
	cfg := rating.DefaultConfig()
	sickCap := int(cfg.WeeklySickDays.Saturation().IntPart())

	at := func(days int) decimal.Decimal {
		in := neutral()
		in.WeeklySickDays = days
		return score(in)
	}

	r0, r3, rCap := at(0), at(3), at(sickCap)
	assert.True(t, r0.GreaterThanOrEqual(r3), "0=%s 3=%s", r0, r3)
	assert.True(t, r3.GreaterThanOrEqual(rCap), "3=%s cap=%s", r3, rCap)
	assert.True(t, at(sickCap*4).Equal(rCap))
}

func TestCompute_EveryFactorMonotone(t *testing.T) {
	// GIVEN: Random base vectors
	// WHEN: Raising one input at a time
	// THEN: Bonuses never lower the rating, penalties never raise it

	rng := rand.New(rand.NewSource(7))
	bumps := []struct {
		name  string
		bonus bool
		apply func(*rating.Inputs)
	}{
		{"hours", true, func(in *rating.Inputs) { in.WeeklyHoursWorked = in.WeeklyHoursWorked.Add(dec("3.5")) }},
		{"net", true, func(in *rating.Inputs) { in.WeeklyNetEarnings = in.WeeklyNetEarnings.Add(dec("120")) }},
		{"referrals", true, func(in *rating.Inputs) { in.Counters.Referrals++ }},
		{"messages", true, func(in *rating.Inputs) { in.Counters.Messages += 40 }},
		{"initiatives", true, func(in *rating.Inputs) { in.Counters.Initiatives++ }},
		{"signals", true, func(in *rating.Inputs) { in.Counters.Signals += 3 }},
		{"profitable", true, func(in *rating.Inputs) { in.Counters.ProfitableSignals++ }},
		{"days off", false, func(in *rating.Inputs) { in.WeeklyDaysOff++ }},
		{"sick", false, func(in *rating.Inputs) { in.WeeklySickDays++ }},
		{"vacation", false, func(in *rating.Inputs) { in.VacationDaysLast90 += 4 }},
	}

	for i := 0; i < 50; i++ {
		base := randomInputs(rng)
		before := score(base)
		for _, b := range bumps {
			in := base
			b.apply(&in)
			after := score(in)
			if b.bonus {
				require.True(t, after.GreaterThanOrEqual(before), "%s lowered %s -> %s", b.name, before, after)
			} else {
				require.True(t, after.LessThanOrEqual(before), "%s raised %s -> %s", b.name, before, after)
			}
		}
	}
}

// =============================================================================
// BOUNDS & BREAKDOWN
// =============================================================================

func TestCompute_BoundaryAtExtremes(t *testing.T) {
	cfg := rating.DefaultConfig()
	ten := decimal.NewFromInt(10)
	times10 := func(f rating.FactorConfig) decimal.Decimal { return f.Saturation().Mul(ten) }
	times10i := func(f rating.FactorConfig) int { return int(times10(f).IntPart()) }

	allBonus := rating.Inputs{
		WeeklyHoursWorked: times10(cfg.WeeklyHours),
		WeeklyNetEarnings: times10(cfg.WeeklyNetEarnings),
		Counters: rating.ManualCounters{
			Referrals:         times10i(cfg.Referrals),
			Messages:          times10i(cfg.Messages),
			Initiatives:       times10i(cfg.Initiatives),
			Signals:           times10i(cfg.Signals),
			ProfitableSignals: times10i(cfg.ProfitableSignals),
		},
	}
	allPenalty := rating.Inputs{
		WeeklyDaysOff:      times10i(cfg.WeeklyDaysOff),
		WeeklySickDays:     times10i(cfg.WeeklySickDays),
		VacationDaysLast90: times10i(cfg.VacationDaysLast90),
	}
	both := allBonus
	both.WeeklyDaysOff = allPenalty.WeeklyDaysOff
	both.WeeklySickDays = allPenalty.WeeklySickDays
	both.VacationDaysLast90 = allPenalty.VacationDaysLast90

	for name, in := range map[string]rating.Inputs{"bonus": allBonus, "penalty": allPenalty, "both": both} {
		t.Run(name, func(t *testing.T) {
			res := rating.Compute(in, cfg)
			assert.True(t, res.Rating.GreaterThanOrEqual(rating.MinRating), res.Rating.String())
			assert.True(t, res.Rating.LessThanOrEqual(rating.MaxRating), res.Rating.String())
			assert.True(t, res.Breakdown.Sum().Equal(res.Rating))
		})
	}

	assertDec(t, "100", rating.Compute(allBonus, cfg).Rating)
	assertDec(t, "15", rating.Compute(allPenalty, cfg).Rating)
}

func TestCompute_ClampLineAbsorbsOverflow(t *testing.T) {
	cfg := rating.DefaultConfig()
	cfg.Base = decimal.NewFromInt(5)
	in := rating.Inputs{WeeklySickDays: 10, WeeklyDaysOff: 10}

	res := rating.Compute(in, cfg)

	assertDec(t, "0", res.Rating)
	assertDec(t, "-20", res.Raw)
	assertDec(t, "20", res.Breakdown.Points(rating.FactorClamp))
}

func TestCompute_BreakdownSumsToRating(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := rating.DefaultConfig()

	for i := 0; i < 100; i++ {
		in := randomInputs(rng)
		res := rating.Compute(in, cfg)
		require.Truef(t, res.Breakdown.Sum().Equal(res.Rating), "vector %d: sum %s rating %s", i, res.Breakdown.Sum(), res.Rating)
		require.Len(t, res.Breakdown, 12)
		assert.Equal(t, rating.FactorBase, res.Breakdown[0].Factor)
		assert.Equal(t, rating.FactorClamp, res.Breakdown[len(res.Breakdown)-1].Factor)
	}
}

func TestCompute_NegativeInputsCountAsZero(t *testing.T) {
	in := rating.Inputs{
		WeeklyHoursWorked: dec("-12"),
		WeeklyNetEarnings: dec("-500"),
		WeeklySickDays:    -3,
	}
	res := rating.Compute(in, rating.DefaultConfig())
	assertDec(t, "50", res.Rating)
	assertDec(t, "0", res.Breakdown.Points(rating.FactorWeeklyHours))
	assertDec(t, "0", res.Breakdown.Points(rating.FactorWeeklySickDays))
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestCompute_EarnerOutranksSickMember(t *testing.T) {
	// GIVEN: X at the net-earnings cap with no sick days,
	//        Y with no earnings and 3 sick days, otherwise identical
	// THEN: X rates higher than Y

	cfg := rating.DefaultConfig()
	x := neutral()
	x.WeeklyNetEarnings = cfg.WeeklyNetEarnings.Saturation()
	x.WeeklySickDays = 0

	y := neutral()
	y.WeeklyNetEarnings = decimal.Zero
	y.WeeklySickDays = 3

	rx, ry := score(x), score(y)
	assert.True(t, rx.GreaterThan(ry), "X=%s Y=%s", rx, ry)
}

func TestCompute_IsPure(t *testing.T) {
	in := neutral()
	first := rating.Compute(in, rating.DefaultConfig())
	for i := 0; i < 5; i++ {
		again := rating.Compute(in, rating.DefaultConfig())
		require.True(t, again.Rating.Equal(first.Rating))
		require.Equal(t, first.Breakdown.Map(), again.Breakdown.Map())
	}
}

func TestCompute_DefaultBreakdown(t *testing.T) {
	res := rating.Compute(neutral(), rating.DefaultConfig())

	// 50 + 10 + 3 + 2 + 1 + 1 + 1 + 1 = 69
	assertDec(t, "50", res.Breakdown.Points(rating.FactorBase))
	assertDec(t, "10", res.Breakdown.Points(rating.FactorWeeklyHours))
	assertDec(t, "3", res.Breakdown.Points(rating.FactorWeeklyNetEarnings))
	assertDec(t, "2", res.Breakdown.Points(rating.FactorReferrals))
	assertDec(t, "1", res.Breakdown.Points(rating.FactorMessages))
	assertDec(t, "1", res.Breakdown.Points(rating.FactorInitiatives))
	assertDec(t, "1", res.Breakdown.Points(rating.FactorSignals))
	assertDec(t, "1", res.Breakdown.Points(rating.FactorProfitableSignals))
	assertDec(t, "0", res.Breakdown.Points(rating.FactorClamp))
	assertDec(t, "69", res.Rating)

	for _, l := range res.Breakdown {
		assert.Equal(t, generic.UnitPoints, l.Points.Unit, l.Factor)
	}
}

func TestComputeRating_CountersFromSnapshot(t *testing.T) {
	cfg := rating.DefaultConfig()

	withoutSnapshot := rating.ComputeRating("u1", nil, dec("10"), decimal.Zero, 0, 0, 0, cfg)
	assertDec(t, "55", withoutSnapshot.Rating)

	snap := rating.NewSnapshot("u1")
	snap.Counters = rating.ManualCounters{Initiatives: 3}
	withSnapshot := rating.ComputeRating("u1", &snap, dec("10"), decimal.Zero, 0, 0, 0, cfg)
	assertDec(t, "58", withSnapshot.Rating)

	other := rating.ComputeRating("u2", &snap, dec("10"), decimal.Zero, 0, 0, 0, cfg)
	assertDec(t, "55", other.Rating, "another member's counters are ignored")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, rating.DefaultConfig().Validate())

	bad := rating.DefaultConfig()
	bad.Base = dec("120")
	assert.Error(t, bad.Validate())

	bad = rating.DefaultConfig()
	bad.WeeklySickDays.Cap = dec("-1")
	assert.Error(t, bad.Validate())

	bad = rating.DefaultConfig()
	bad.Messages.PointsPerUnit = dec("-0.5")
	assert.Error(t, bad.Validate())
}

func TestConfig_FactorConfigFor(t *testing.T) {
	cfg := rating.DefaultConfig()
	fc, ok := cfg.FactorConfigFor(rating.FactorWeeklyHours)
	require.True(t, ok)
	assertDec(t, "40", fc.Saturation())

	_, ok = cfg.FactorConfigFor(rating.FactorBase)
	assert.False(t, ok)
}

func randomInputs(rng *rand.Rand) rating.Inputs {
	return rating.Inputs{
		WeeklyHoursWorked:  decimal.NewFromFloat(rng.Float64() * 80).Round(2),
		WeeklyNetEarnings:  decimal.NewFromFloat(rng.Float64()*4000 - 500).Round(2),
		WeeklyDaysOff:      rng.Intn(8),
		WeeklySickDays:     rng.Intn(8),
		VacationDaysLast90: rng.Intn(40),
		Counters: rating.ManualCounters{
			Messages:          rng.Intn(500),
			Initiatives:       rng.Intn(10),
			Signals:           rng.Intn(40),
			ProfitableSignals: rng.Intn(30),
			Referrals:         rng.Intn(8),
		},
	}
}
