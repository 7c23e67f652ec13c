package compensation

import (
	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOLVE FUNCTIONS - one defaulting rule each
// =============================================================================

// ResolveAmount returns the gross amount, clamping negative values to zero.
func ResolveAmount(e Earning) decimal.Decimal {
	if e.Amount.IsNegative() {
		return decimal.Zero
	}
	return e.Amount
}

// PoolOf returns the explicit pool cut when present and non-negative,
// otherwise gross * PoolRate.
func PoolOf(e Earning, cfg Config) decimal.Decimal {
	if e.PoolAmount != nil && !e.PoolAmount.IsNegative() {
		return *e.PoolAmount
	}
	return ResolveAmount(e).Mul(cfg.PoolRate)
}

// NetOf returns max(gross - pool, 0).
func NetOf(e Earning, cfg Config) decimal.Decimal {
	net := ResolveAmount(e).Sub(PoolOf(e, cfg))
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// ParticipantsOf returns the ordered participant set: the explicit list with
// blanks and repeats removed, or the owner alone.
func ParticipantsOf(e Earning) []generic.MemberID {
	seen := make(map[generic.MemberID]bool, len(e.Participants))
	out := make([]generic.MemberID, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return []generic.MemberID{e.UserID}
	}
	return out
}

// IsParticipant reports whether userID shares in e.
func IsParticipant(e Earning, userID generic.MemberID) bool {
	for _, p := range ParticipantsOf(e) {
		if p == userID {
			return true
		}
	}
	return false
}

// ShareOf returns userID's part of the net amount.
func ShareOf(e Earning, userID generic.MemberID, cfg Config) decimal.Decimal {
	return divide(NetOf(e, cfg), ParticipantsOf(e), cfg.ShareScale)[userID]
}

// PoolShareOf returns userID's part of the pool cut, split the same way.
func PoolShareOf(e Earning, userID generic.MemberID, cfg Config) decimal.Decimal {
	return divide(PoolOf(e, cfg), ParticipantsOf(e), cfg.ShareScale)[userID]
}

// divide splits total evenly. Each share is truncated to scale places and
// the remainder is added to the first participant. Non-participants are
// absent from the map, so lookups for them yield zero.
func divide(total decimal.Decimal, participants []generic.MemberID, scale int32) map[generic.MemberID]decimal.Decimal {
	out := make(map[generic.MemberID]decimal.Decimal, len(participants))
	if len(participants) == 0 {
		return out
	}
	n := decimal.NewFromInt(int64(len(participants)))
	each := total.Div(n).Truncate(scale)
	remainder := total.Sub(each.Mul(n))
	for i, p := range participants {
		if i == 0 {
			out[p] = each.Add(remainder)
			continue
		}
		out[p] = each
	}
	return out
}

// =============================================================================
// SPLIT - everything about one earning at once
// =============================================================================

// Split is the full allocation of one earning.
type Split struct {
	Gross          decimal.Decimal
	Pool           decimal.Decimal
	Net            decimal.Decimal
	Participants   []generic.MemberID
	PerParticipant decimal.Decimal // the even share before remainder assignment
	Shares         map[generic.MemberID]decimal.Decimal
	PoolShares     map[generic.MemberID]decimal.Decimal
}

// SplitEarning computes pool, net and per-participant shares for e.
func SplitEarning(e Earning, cfg Config) Split {
	participants := ParticipantsOf(e)
	pool := PoolOf(e, cfg)
	net := NetOf(e, cfg)
	return Split{
		Gross:          ResolveAmount(e),
		Pool:           pool,
		Net:            net,
		Participants:   participants,
		PerParticipant: net.Div(decimal.NewFromInt(int64(len(participants)))).Truncate(cfg.ShareScale),
		Shares:         divide(net, participants, cfg.ShareScale),
		PoolShares:     divide(pool, participants, cfg.ShareScale),
	}
}
