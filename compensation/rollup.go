package compensation

import (
	"sort"

	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FILTER
// =============================================================================

// Filter scopes a rollup. Zero values mean "everything".
type Filter struct {
	Window   *generic.Period
	Category Category
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e Earning) bool {
	if f.Window != nil && !f.Window.Contains(e.Date) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

func usd(d decimal.Decimal) generic.Amount { return generic.NewAmountFromDecimal(d, generic.UnitUSD) }

func zeroUSD() generic.Amount { return generic.ZeroAmount(generic.UnitUSD) }

// Select returns the records passing f, in input order.
func Select(records []Earning, f Filter) []Earning {
	out := make([]Earning, 0, len(records))
	for _, e := range records {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// TOTALS
// =============================================================================

// Totals sums a collection of earnings, in usd.
type Totals struct {
	Gross generic.Amount
	Pool  generic.Amount
	Net   generic.Amount
	Count int
}

// Sum computes gross, pool and net totals over the records passing f.
func Sum(records []Earning, f Filter, cfg Config) Totals {
	t := Totals{Gross: zeroUSD(), Pool: zeroUSD(), Net: zeroUSD()}
	for _, e := range records {
		if !f.Matches(e) {
			continue
		}
		t.Gross = t.Gross.Add(usd(ResolveAmount(e)))
		t.Pool = t.Pool.Add(usd(PoolOf(e, cfg)))
		t.Net = t.Net.Add(usd(NetOf(e, cfg)))
		t.Count++
	}
	return t
}

// PerMemberNet sums userID's net shares over every record they take part in.
func PerMemberNet(records []Earning, userID generic.MemberID, cfg Config) decimal.Decimal {
	total := decimal.Zero
	for _, e := range records {
		total = total.Add(ShareOf(e, userID, cfg))
	}
	return total
}

// PerMemberPool sums userID's pool shares.
func PerMemberPool(records []Earning, userID generic.MemberID, cfg Config) decimal.Decimal {
	total := decimal.Zero
	for _, e := range records {
		total = total.Add(PoolShareOf(e, userID, cfg))
	}
	return total
}

// =============================================================================
// CONTRIBUTORS
// =============================================================================

// Contributor is one member's accumulated split output, in usd.
type Contributor struct {
	Member    generic.MemberID
	Net       generic.Amount
	PoolShare generic.Amount
}

// accumulate replays SplitEarning over records. The returned order is the
// order of each member's first contribution, by record date and then by
// position in the input.
func accumulate(records []Earning, cfg Config) ([]generic.MemberID, map[generic.MemberID]*Contributor) {
	ordered := make([]Earning, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var firstSeen []generic.MemberID
	byMember := make(map[generic.MemberID]*Contributor)
	for _, e := range ordered {
		split := SplitEarning(e, cfg)
		for _, p := range split.Participants {
			c, ok := byMember[p]
			if !ok {
				c = &Contributor{Member: p, Net: zeroUSD(), PoolShare: zeroUSD()}
				byMember[p] = c
				firstSeen = append(firstSeen, p)
			}
			c.Net = c.Net.Add(usd(split.Shares[p]))
			c.PoolShare = c.PoolShare.Add(usd(split.PoolShares[p]))
		}
	}
	return firstSeen, byMember
}

// TopContributors returns the n members with the highest net. Ties go to
// the member who contributed first.
func TopContributors(records []Earning, n int, cfg Config) []Contributor {
	if n <= 0 {
		return []Contributor{}
	}
	order, byMember := accumulate(records, cfg)

	out := make([]Contributor, 0, len(order))
	for _, id := range order {
		out = append(out, *byMember[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Net.GreaterThan(out[j].Net)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// =============================================================================
// LEADERBOARDS
// =============================================================================

// CategoryRollup is one row of the category breakdown.
type CategoryRollup struct {
	Category        Category
	Gross           generic.Amount
	Pool            generic.Amount
	Net             generic.Amount
	Count           int
	TopParticipants []Contributor
}

// TopParticipantsPerCategory is how many leaders each category row shows.
const TopParticipantsPerCategory = 2

// CategoryBreakdown returns one row per category, in Categories order,
// covering the records dated inside window (all records when nil).
func CategoryBreakdown(records []Earning, window *generic.Period, cfg Config) []CategoryRollup {
	out := make([]CategoryRollup, 0, len(Categories))
	for _, c := range Categories {
		f := Filter{Window: window, Category: c}
		totals := Sum(records, f, cfg)
		out = append(out, CategoryRollup{
			Category:        c,
			Gross:           totals.Gross,
			Pool:            totals.Pool,
			Net:             totals.Net,
			Count:           totals.Count,
			TopParticipants: TopContributors(Select(records, f), TopParticipantsPerCategory, cfg),
		})
	}
	return out
}

// ContributorRanking ranks members by net share, highest first. Members
// with equal net keep their input order. window may be nil for all time.
func ContributorRanking(members []generic.MemberID, records []Earning, window *generic.Period, cfg Config) []Contributor {
	scoped := Select(records, Filter{Window: window})
	out := make([]Contributor, 0, len(members))
	for _, m := range members {
		out = append(out, Contributor{
			Member:    m,
			Net:       usd(PerMemberNet(scoped, m, cfg)),
			PoolShare: usd(PerMemberPool(scoped, m, cfg)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Net.GreaterThan(out[j].Net)
	})
	return out
}
