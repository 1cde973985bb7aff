// Package zakat totals classified items and computes the amount due.
package zakat

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

// Totals holds base-currency sums per classification.
type Totals struct {
	Zakatable     decimal.Decimal `json:"zakatable"`
	Deductible    decimal.Decimal `json:"deductible"`
	Exempt        decimal.Decimal `json:"exempt"`
	NotDeductible decimal.Decimal `json:"not_deductible"`
	NetWealth     decimal.Decimal `json:"net_wealth"`
	Unresolved    int             `json:"unresolved"`
	UnresolvedIDs []uuid.UUID     `json:"unresolved_ids,omitempty"`
}

// Aggregate sums items by classification. Flagged items are left out of every
// total and counted in Unresolved.
func Aggregate(items []model.LineItem) Totals {
	t := Totals{
		Zakatable:     decimal.Zero,
		Deductible:    decimal.Zero,
		Exempt:        decimal.Zero,
		NotDeductible: decimal.Zero,
	}
	for _, it := range items {
		switch it.Classification {
		case model.Zakatable:
			t.Zakatable = t.Zakatable.Add(it.ZakatableValue())
		case model.Deductible:
			t.Deductible = t.Deductible.Add(it.ConvertedAmount)
		case model.Exempt:
			t.Exempt = t.Exempt.Add(it.ConvertedAmount)
		case model.NotDeductible:
			t.NotDeductible = t.NotDeductible.Add(it.ConvertedAmount)
		case model.NeedsClarification:
			t.Unresolved++
			t.UnresolvedIDs = append(t.UnresolvedIDs, it.ID)
		default:
			panic(fmt.Sprintf("zakat: unhandled classification %q", it.Classification))
		}
	}
	t.NetWealth = t.Zakatable.Sub(t.Deductible)
	return t
}
