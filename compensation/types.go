/*
Package compensation splits team earnings between the development pool and
the members who produced them, and rolls the splits up for leaderboards.

PURPOSE:
  Every recorded cash inflow ("earning") is divided in two: a pool cut kept
  for shared team development, and a net amount shared evenly between the
  participants. The same split is replayed over collections of earnings to
  produce totals, per-member net, top contributors and category breakdowns.

KEY RULES:
  pool  = explicit PoolAmount when set and non-negative, else Amount * PoolRate
  net   = max(Amount - pool, 0)
  share = net / len(participants) for participants, 0 for everyone else
  participants default to the record owner when empty

  Aggregates are never stored. They are recomputed from the live record set,
  so editing or deleting an earning changes every aggregate on the next call.

EXAMPLE:
  e := Earning{UserID: "a", Amount: 1000, Participants: ["a", "b"]}
  pool = 450, net = 550, share(a) = share(b) = 275

SEE ALSO:
  - split.go: Per-record resolve functions
  - rollup.go: Collection aggregates and leaderboards
*/
package compensation

import (
	"context"

	"github.com/dexim234/apevaultteams/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the market an earning came from.
// Implements generic.Kind.
type Category string

func (c Category) KindID() string     { return string(c) }
func (c Category) KindDomain() string { return Domain }

// Compile-time check that Category implements generic.Kind
var _ generic.Kind = Category("")

// Domain is the kind-registry domain for categories.
const Domain = "earning_category"

const (
	CategoryMemecoins  Category = "memecoins"
	CategoryFutures    Category = "futures"
	CategoryNFT        Category = "nft"
	CategorySpot       Category = "spot"
	CategoryPolymarket Category = "polymarket"
	CategoryStaking    Category = "staking"
	CategoryAirdrop    Category = "airdrop"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryMemecoins,
	CategoryFutures,
	CategoryNFT,
	CategorySpot,
	CategoryPolymarket,
	CategoryStaking,
	CategoryAirdrop,
}

func init() {
	for _, c := range Categories {
		generic.RegisterKind(c)
	}
}

// ParseCategory converts a stored or submitted string into a Category.
func ParseCategory(s string) (Category, error) {
	k, err := generic.ParseKind(Domain, s)
	if err != nil {
		return "", err
	}
	return k.(Category), nil
}

// =============================================================================
// EARNING
// =============================================================================

// Earning is one recorded cash inflow attributable to the team.
type Earning struct {
	ID       generic.RecordID
	UserID   generic.MemberID // owner; the default participant
	Date     generic.TimePoint
	Category Category

	// Amount is the gross inflow.
	Amount decimal.Decimal

	// PoolAmount overrides the configured pool rate when set.
	PoolAmount *decimal.Decimal

	// Participants share the net evenly. Empty means the owner alone.
	Participants []generic.MemberID

	Note      string
	CreatedAt generic.TimePoint
	UpdatedAt generic.TimePoint
}

// =============================================================================
// CONFIG
// =============================================================================

// DefaultPoolRate is the share of gross kept for the development pool.
var DefaultPoolRate = decimal.RequireFromString("0.45")

// DefaultShareScale is the number of decimal places kept in each share.
const DefaultShareScale int32 = 8

// Config holds the calibration parameters of the splitter.
type Config struct {
	PoolRate decimal.Decimal

	// ShareScale is how many decimal places a participant share keeps.
	// The truncation remainder goes to the first participant so the shares
	// always add up to net exactly.
	ShareScale int32
}

// DefaultConfig returns the standard split parameters.
func DefaultConfig() Config {
	return Config{PoolRate: DefaultPoolRate, ShareScale: DefaultShareScale}
}

// =============================================================================
// SOURCE - external collaborator
// =============================================================================

// Source fetches earnings. Implemented by the store adapters.
type Source interface {
	Earnings(ctx context.Context, q generic.Query) ([]Earning, error)
}

// Store adds the write side used by the API.
type Store interface {
	Source
	SaveEarning(ctx context.Context, e Earning) error
	GetEarning(ctx context.Context, id generic.RecordID) (*Earning, error)
	DeleteEarning(ctx context.Context, id generic.RecordID) error
}
