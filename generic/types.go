/*
Package generic provides the domain-agnostic building blocks of the team engine.

PURPOSE:
  This package contains the types every domain package shares: calendar days,
  inclusive periods, decimal quantities with a unit, member identifiers and the
  kind registry used to parse enumerations. The compensation, attendance and
  rating packages are all expressed in these terms.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 550 usd, 4.5 hours, 12 points)
  - MemberID / RecordID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, money is never a float
  2. Purity: Nothing here performs I/O
  3. Type Safety: Strong typing for IDs prevents mixing members and records

USAGE:
  net := generic.NewAmountFromDecimal(share, generic.UnitUSD)
  total = total.Add(net)
  fmt.Println(total.Display()) // "550.00"

SEE ALSO:
  - time.go: TimePoint (calendar day)
  - period.go: Period windows and overlap counting
  - kind.go: Enumeration registry
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

// Amount is a decimal quantity tagged with its unit. Rollups carry usd,
// work slots hours and the rating breakdown points.
type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitUSD    Unit = "usd"
	UnitHours  Unit = "hours"
	UnitPoints Unit = "points"
)

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

func ZeroAmount(unit Unit) Amount {
	return Amount{Value: decimal.Zero, Unit: unit}
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount               { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// Display formats the value with two decimals. Presentation only.
func (a Amount) Display() string {
	return a.Value.StringFixed(2)
}

// SumAmounts adds amounts of the same unit.
func SumAmounts(unit Unit, amounts ...Amount) Amount {
	total := ZeroAmount(unit)
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MemberID string
type RecordID string
