// Package rules implements deterministic key/value extraction of
// financial-contract fields from parsed documents.
package rules

import "strings"

// Field is one of the nine canonical contract attributes the engine
// extracts.
type Field string

const (
	FieldCounterparty         Field = "Counterparty"
	FieldInitialValuationDate Field = "Initial Valuation Date"
	FieldNotional             Field = "Notional"
	FieldValuationDate        Field = "Valuation Date"
	FieldMaturity             Field = "Maturity"
	FieldUnderlying           Field = "Underlying"
	FieldCoupon               Field = "Coupon"
	FieldBarrier              Field = "Barrier"
	FieldCalendar             Field = "Calendar"
)

// Fields lists the canonical fields in declaration order.
var Fields = []Field{
	FieldCounterparty,
	FieldInitialValuationDate,
	FieldNotional,
	FieldValuationDate,
	FieldMaturity,
	FieldUnderlying,
	FieldCoupon,
	FieldBarrier,
	FieldCalendar,
}

type fieldAliases struct {
	field   Field
	aliases []string // lowercase, checked in order
}

// aliasTable declares alias priority explicitly: the first field whose
// alias is contained in a candidate key wins. Declaration order matters;
// "Initial Valuation Date" must sit ahead of "Valuation Date" or the
// shorter alias would swallow both labels.
var aliasTable = []fieldAliases{
	{FieldCounterparty, []string{"party a"}},
	{FieldInitialValuationDate, []string{"initial valuation date"}},
	{FieldNotional, []string{"notional", "notional amount"}},
	{FieldValuationDate, []string{"valuation date"}},
	{FieldMaturity, []string{"termination date", "maturity date"}},
	{FieldUnderlying, []string{"underlying"}},
	{FieldCoupon, []string{"coupon"}},
	{FieldBarrier, []string{"barrier"}},
	{FieldCalendar, []string{"business day", "calendar"}},
}

// Resolve matches a candidate key against the alias table. Matching is
// case-insensitive substring containment; the first alias in declared
// order wins. Empty candidates never match.
func Resolve(candidate string) (Field, bool) {
	key := strings.ToLower(strings.TrimSpace(candidate))
	if key == "" {
		return "", false
	}
	for _, fa := range aliasTable {
		for _, alias := range fa.aliases {
			if strings.Contains(key, alias) {
				return fa.field, true
			}
		}
	}
	return "", false
}
