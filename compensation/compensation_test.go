package compensation_test

import (
	"testing"
	"time"

	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
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

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func earning(id, owner string, amount string, participants ...string) compensation.Earning {
	ps := make([]generic.MemberID, len(participants))
	for i, p := range participants {
		ps[i] = generic.MemberID(p)
	}
	return compensation.Earning{
		ID:           generic.RecordID(id),
		UserID:       generic.MemberID(owner),
		Date:         date(2025, time.January, 10),
		Category:     compensation.CategorySpot,
		Amount:       dec(amount),
		Participants: ps,
	}
}

var cfg = compensation.DefaultConfig()

// =============================================================================
// SPLIT TESTS
// =============================================================================

func TestSplit_DefaultPoolRate_TwoParticipants(t *testing.T) {
	// GIVEN: 1000 gross, no explicit pool, participants A and B
	// WHEN: Splitting with the default 0.45 pool rate
	// THEN: pool=450, net=550, 275 each

	e := earning("e1", "A", "1000", "A", "B")

	split := compensation.SplitEarning(e, cfg)

	assertDec(t, "450", split.Pool)
	assertDec(t, "550", split.Net)
	assertDec(t, "275", split.PerParticipant)
	assertDec(t, "275", compensation.ShareOf(e, "A", cfg))
	assertDec(t, "275", compensation.ShareOf(e, "B", cfg))
	assertDec(t, "225", compensation.PoolShareOf(e, "A", cfg))
}

func TestSplit_ExplicitPoolWins(t *testing.T) {
	e := earning("e1", "A", "1000", "A")
	e.PoolAmount = decPtr("100")

	assertDec(t, "100", compensation.PoolOf(e, cfg))
	assertDec(t, "900", compensation.NetOf(e, cfg))
}

func TestSplit_NegativeExplicitPoolFallsBackToRate(t *testing.T) {
	e := earning("e1", "A", "200", "A")
	e.PoolAmount = decPtr("-5")

	assertDec(t, "90", compensation.PoolOf(e, cfg))
}

func TestSplit_PoolLargerThanAmount_NetClampedToZero(t *testing.T) {
	e := earning("e1", "A", "100", "A")
	e.PoolAmount = decPtr("150")

	assertDec(t, "0", compensation.NetOf(e, cfg))
	assertDec(t, "0", compensation.ShareOf(e, "A", cfg))
}

func TestSplit_NegativeAmountClampedToZero(t *testing.T) {
	e := earning("e1", "A", "-300", "A")

	split := compensation.SplitEarning(e, cfg)

	assertDec(t, "0", split.Gross)
	assertDec(t, "0", split.Pool)
	assertDec(t, "0", split.Net)
}

func TestSplit_EmptyParticipantsDefaultToOwner(t *testing.T) {
	// GIVEN: The same earning with no participants and with [owner]
	// THEN: Every split output is identical

	implicit := earning("e1", "owner", "777.77")
	explicit := earning("e1", "owner", "777.77", "owner")

	a := compensation.SplitEarning(implicit, cfg)
	b := compensation.SplitEarning(explicit, cfg)

	assert.Equal(t, []generic.MemberID{"owner"}, compensation.ParticipantsOf(implicit))
	assert.Equal(t, b.Participants, a.Participants)
	assertDec(t, b.Net.String(), a.Net)
	assertDec(t, b.Shares["owner"].String(), a.Shares["owner"])
	assertDec(t, b.PoolShares["owner"].String(), a.PoolShares["owner"])
}

func TestSplit_DuplicateAndBlankParticipantsIgnored(t *testing.T) {
	e := earning("e1", "A", "1000", "B", "", "B", "C")

	assert.Equal(t, []generic.MemberID{"B", "C"}, compensation.ParticipantsOf(e))
	assertDec(t, "0", compensation.ShareOf(e, "A", cfg), "owner outside the participant list gets nothing")
}

func TestSplit_NonParticipantGetsZero(t *testing.T) {
	e := earning("e1", "A", "1000", "A", "B")

	assertDec(t, "0", compensation.ShareOf(e, "Z", cfg))
	assertDec(t, "0", compensation.PoolShareOf(e, "Z", cfg))
	assert.False(t, compensation.IsParticipant(e, "Z"))
	assert.True(t, compensation.IsParticipant(e, "B"))
}

func TestSplit_Conservation(t *testing.T) {
	// GIVEN: Amounts that do not divide evenly between participants
	// THEN: Shares always add up to net exactly, and pool + net == gross

	cases := []struct {
		amount       string
		participants []string
	}{
		{"100", []string{"a", "b", "c"}},
		{"0.01", []string{"a", "b", "c"}},
		{"999.99", []string{"a", "b", "c", "d", "e", "f", "g"}},
		{"12345.678", []string{"a", "b"}},
		{"1", []string{"a"}},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			e := earning("e", "a", tc.amount, tc.participants...)
			split := compensation.SplitEarning(e, cfg)

			sum := decimal.Zero
			poolSum := decimal.Zero
			for _, p := range compensation.ParticipantsOf(e) {
				sum = sum.Add(compensation.ShareOf(e, p, cfg))
				poolSum = poolSum.Add(compensation.PoolShareOf(e, p, cfg))
			}
			assertDec(t, split.Net.String(), sum, "shares must add to net")
			assertDec(t, split.Pool.String(), poolSum, "pool shares must add to pool")
			assertDec(t, tc.amount, split.Pool.Add(split.Net), "pool + net must equal gross")
		})
	}
}

func TestSplit_RemainderGoesToFirstParticipant(t *testing.T) {
	e := earning("e1", "a", "100", "a", "b", "c")
	e.PoolAmount = decPtr("0")

	assertDec(t, "33.33333334", compensation.ShareOf(e, "a", cfg))
	assertDec(t, "33.33333333", compensation.ShareOf(e, "b", cfg))
	assertDec(t, "33.33333333", compensation.ShareOf(e, "c", cfg))
}

// =============================================================================
// ROLLUP TESTS
// =============================================================================

func TestRollup_Totals(t *testing.T) {
	records := []compensation.Earning{
		earning("e1", "A", "1000", "A", "B"),
		earning("e2", "A", "200"),
	}

	totals := compensation.Sum(records, compensation.Filter{}, cfg)

	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, generic.UnitUSD, totals.Net.Unit)
	assertDec(t, "1200", totals.Gross.Value)
	assertDec(t, "540", totals.Pool.Value)
	assertDec(t, "660", totals.Net.Value)
}

func TestRollup_WindowAndCategoryFilter(t *testing.T) {
	inside := earning("e1", "A", "100")
	outside := earning("e2", "A", "100")
	outside.Date = date(2025, time.February, 1)
	otherCategory := earning("e3", "A", "100")
	otherCategory.Category = compensation.CategoryNFT

	window := generic.NewPeriod(date(2025, time.January, 1), date(2025, time.January, 31))
	f := compensation.Filter{Window: &window, Category: compensation.CategorySpot}

	selected := compensation.Select([]compensation.Earning{inside, outside, otherCategory}, f)

	require.Len(t, selected, 1)
	assert.Equal(t, generic.RecordID("e1"), selected[0].ID)
}

func TestRollup_PerMemberNet_SoloRecords(t *testing.T) {
	// GIVEN: Three solo records netting 100, 200 and 300 for M
	// THEN: perMemberNet(M) = 600

	var records []compensation.Earning
	for i, amount := range []string{"100", "200", "300"} {
		e := earning("e"+amount, "M", amount, "M")
		e.PoolAmount = decPtr("0")
		e.Date = date(2025, time.January, i+1)
		records = append(records, e)
	}

	assertDec(t, "600", compensation.PerMemberNet(records, "M", cfg))

	ranking := compensation.ContributorRanking([]generic.MemberID{"M"}, records, nil, cfg)
	require.Len(t, ranking, 1)
	assertDec(t, "600", ranking[0].Net.Value)
}

func TestRollup_DeletedRecordDisappearsFromAggregates(t *testing.T) {
	records := []compensation.Earning{
		earning("e1", "A", "1000", "A"),
		earning("e2", "A", "1000", "A"),
	}
	before := compensation.PerMemberNet(records, "A", cfg)
	after := compensation.PerMemberNet(records[:1], "A", cfg)

	assertDec(t, "1100", before)
	assertDec(t, "550", after)
}

func TestRollup_TopContributors_TiesBrokenByFirstContribution(t *testing.T) {
	// GIVEN: B contributes first, A later, both with the same net; C earns more
	late := earning("late", "A", "100", "A")
	late.Date = date(2025, time.January, 20)
	early := earning("early", "B", "100", "B")
	early.Date = date(2025, time.January, 5)
	big := earning("big", "C", "1000", "C")
	big.Date = date(2025, time.January, 25)

	top := compensation.TopContributors([]compensation.Earning{late, big, early}, 3, cfg)

	require.Len(t, top, 3)
	assert.Equal(t, generic.MemberID("C"), top[0].Member)
	assert.Equal(t, generic.MemberID("B"), top[1].Member, "B contributed first")
	assert.Equal(t, generic.MemberID("A"), top[2].Member)

	assert.Len(t, compensation.TopContributors([]compensation.Earning{late, big, early}, 1, cfg), 1)
	assert.Empty(t, compensation.TopContributors([]compensation.Earning{late}, 0, cfg))
}

func TestRollup_CategoryBreakdown(t *testing.T) {
	spot := earning("e1", "A", "1000", "A", "B")
	nft := earning("e2", "C", "100", "C")
	nft.Category = compensation.CategoryNFT
	old := earning("e3", "A", "5000", "A")
	old.Date = date(2024, time.December, 1)

	window := generic.NewPeriod(date(2025, time.January, 1), date(2025, time.January, 31))
	rows := compensation.CategoryBreakdown([]compensation.Earning{spot, nft, old}, &window, cfg)

	require.Len(t, rows, len(compensation.Categories))
	for i, row := range rows {
		assert.Equal(t, compensation.Categories[i], row.Category, "rows follow category order")
	}

	var spotRow, nftRow, stakingRow compensation.CategoryRollup
	for _, row := range rows {
		switch row.Category {
		case compensation.CategorySpot:
			spotRow = row
		case compensation.CategoryNFT:
			nftRow = row
		case compensation.CategoryStaking:
			stakingRow = row
		}
	}

	assert.Equal(t, 1, spotRow.Count, "the December record is outside the window")
	assertDec(t, "1000", spotRow.Gross.Value)
	assertDec(t, "450", spotRow.Pool.Value)
	assertDec(t, "550", spotRow.Net.Value)
	require.Len(t, spotRow.TopParticipants, 2)
	assert.Equal(t, generic.MemberID("A"), spotRow.TopParticipants[0].Member)

	assert.Equal(t, 1, nftRow.Count)
	require.Len(t, nftRow.TopParticipants, 1)

	assert.Equal(t, 0, stakingRow.Count)
	assertDec(t, "0", stakingRow.Gross.Value)
	assert.Empty(t, stakingRow.TopParticipants)
}

func TestRollup_ContributorRanking_SortedByNet(t *testing.T) {
	records := []compensation.Earning{
		earning("e1", "A", "100", "A"),
		earning("e2", "B", "1000", "B"),
	}

	ranking := compensation.ContributorRanking([]generic.MemberID{"A", "B", "Z"}, records, nil, cfg)

	require.Len(t, ranking, 3)
	assert.Equal(t, generic.MemberID("B"), ranking[0].Member)
	assert.Equal(t, generic.MemberID("A"), ranking[1].Member)
	assert.Equal(t, generic.MemberID("Z"), ranking[2].Member)
	assertDec(t, "0", ranking[2].Net.Value)
	assertDec(t, "450", ranking[0].PoolShare.Value)
	assert.Equal(t, "450.00", ranking[0].PoolShare.Display())
}

func TestParseCategory(t *testing.T) {
	c, err := compensation.ParseCategory("polymarket")
	require.NoError(t, err)
	assert.Equal(t, compensation.CategoryPolymarket, c)

	_, err = compensation.ParseCategory("forex")
	assert.ErrorIs(t, err, generic.ErrInvalidKind)
}
