package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provenance records where an exchange rate or price came from.
type Provenance string

const (
	ProvenanceIdentity Provenance = "identity" // same currency, no lookup
	ProvenanceLive     Provenance = "live"
	ProvenanceCached   Provenance = "cached" // last-known live value
	ProvenanceStatic   Provenance = "static" // built-in fallback table
)

// LineItem is a single asset or liability entered by the user.
type LineItem struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	Amount                decimal.Decimal  `json:"amount"`
	Currency              string           `json:"currency"`
	ExchangeRate          decimal.Decimal  `json:"exchange_rate"` // Currency -> base currency
	ConvertedAmount       decimal.Decimal  `json:"converted_amount"`
	RateProvenance        Provenance       `json:"rate_provenance,omitempty"`
	Classification        Classification   `json:"classification"`
	IslamicRuling         string           `json:"islamic_ruling,omitempty"`
	QuestionType          QuestionType     `json:"question_type,omitempty"`
	ClarificationQuestion string           `json:"clarification_question,omitempty"`
	ClarificationAnswer   Answer           `json:"clarification_answer,omitempty"`
	MarketValue           *decimal.Decimal `json:"market_value,omitempty"`
}

// Resolved reports whether the item no longer needs clarification.
func (li LineItem) Resolved() bool {
	return li.Classification != NeedsClarification
}

// ZakatableValue is the base-currency value used for the zakatable total.
// A market value, when present, overrides the book amount.
func (li LineItem) ZakatableValue() decimal.Decimal {
	if li.MarketValue == nil {
		return li.ConvertedAmount
	}
	rate := li.ExchangeRate
	if rate.IsZero() {
		// Not yet normalized; treat as already in base currency.
		rate = decimal.NewFromInt(1)
	}
	return li.MarketValue.Mul(rate)
}

// Category is one of the four fixed balance-sheet groups used in business mode.
type Category string

const (
	CategoryCurrentAssets       Category = "current_assets"
	CategoryFixedAssets         Category = "fixed_assets"
	CategoryCurrentLiabilities  Category = "current_liabilities"
	CategoryLongTermLiabilities Category = "long_term_liabilities"
)

// Categories returns the four business categories in balance-sheet order.
func Categories() []Category {
	return []Category{CategoryCurrentAssets, CategoryFixedAssets, CategoryCurrentLiabilities, CategoryLongTermLiabilities}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCurrentAssets, CategoryFixedAssets, CategoryCurrentLiabilities, CategoryLongTermLiabilities:
		return true
	}
	return false
}

// IsLiability reports whether the category holds liabilities.
func (c Category) IsLiability() bool {
	return c == CategoryCurrentLiabilities || c == CategoryLongTermLiabilities
}

// CategoryEntry is a LineItem scoped to a business category.
type CategoryEntry struct {
	LineItem
	Category           Category `json:"category"`
	IsIslamicFinancing bool     `json:"is_islamic_financing"`
}

// Locked reports whether the entry is a conventional liability, which is
// permanently not deductible.
func (e CategoryEntry) Locked() bool {
	return e.Category.IsLiability() && !e.IsIslamicFinancing
}
