// Package rates supplies exchange rates and metal prices, falling back to a
// built-in table whenever a live source cannot answer.
package rates

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

// ErrUnknownCurrency is returned for currency codes the static table does not carry.
var ErrUnknownCurrency = errors.New("unknown currency")

// NormalizeCode upper-cases and trims an ISO 4217 code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StaticTable is the offline fallback: units of each currency per 1 USD and
// USD metal prices per gram.
type StaticTable struct {
	perUSD    map[string]decimal.Decimal
	goldUSD   decimal.Decimal
	silverUSD decimal.Decimal
}

// NewStaticTable builds a table. perUSD must contain USD.
func NewStaticTable(perUSD map[string]decimal.Decimal, goldUSD, silverUSD decimal.Decimal) (*StaticTable, error) {
	table := make(map[string]decimal.Decimal, len(perUSD))
	for code, v := range perUSD {
		if !v.IsPositive() {
			return nil, fmt.Errorf("static rate for %s must be positive, got %s", code, v)
		}
		table[NormalizeCode(code)] = v
	}
	if _, ok := table["USD"]; !ok {
		return nil, errors.New("static table must contain USD")
	}
	if !goldUSD.IsPositive() || !silverUSD.IsPositive() {
		return nil, errors.New("static metal prices must be positive")
	}
	return &StaticTable{perUSD: table, goldUSD: goldUSD, silverUSD: silverUSD}, nil
}

// DefaultStaticTable returns the built-in table. The metal prices can be
// replaced from configuration.
func DefaultStaticTable(goldUSD, silverUSD decimal.Decimal) *StaticTable {
	perUSD := map[string]string{
		"USD": "1",
		"EUR": "0.92",
		"GBP": "0.79",
		"CHF": "0.88",
		"CAD": "1.37",
		"AUD": "1.52",
		"SGD": "1.34",
		"JPY": "150",
		"CNY": "7.2",
		"SAR": "3.75",
		"AED": "3.6725",
		"QAR": "3.64",
		"KWD": "0.307",
		"BHD": "0.376",
		"OMR": "0.385",
		"JOD": "0.709",
		"EGP": "48.5",
		"MAD": "9.9",
		"TRY": "34",
		"PKR": "278",
		"INR": "84",
		"BDT": "120",
		"MYR": "4.4",
		"IDR": "16000",
		"NGN": "1600",
		"KES": "129",
		"ZAR": "18",
	}
	table := make(map[string]decimal.Decimal, len(perUSD))
	for code, v := range perUSD {
		table[code] = decimal.RequireFromString(v)
	}
	if !goldUSD.IsPositive() {
		goldUSD = decimal.RequireFromString("88.50")
	}
	if !silverUSD.IsPositive() {
		silverUSD = decimal.RequireFromString("1.05")
	}
	return &StaticTable{perUSD: table, goldUSD: goldUSD, silverUSD: silverUSD}
}

// Known reports whether code is in the table.
func (t *StaticTable) Known(code string) bool {
	_, ok := t.perUSD[NormalizeCode(code)]
	return ok
}

// Codes returns the supported currency codes, sorted.
func (t *StaticTable) Codes() []string {
	codes := make([]string, 0, len(t.perUSD))
	for code := range t.perUSD {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rate returns how many units of to one unit of from buys.
func (t *StaticTable) Rate(from, to string) (decimal.Decimal, error) {
	from, to = NormalizeCode(from), NormalizeCode(to)
	if from == to {
		if !t.Known(from) {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
		}
		return decimal.NewFromInt(1), nil
	}
	fromPerUSD, ok := t.perUSD[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toPerUSD, ok := t.perUSD[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	return toPerUSD.Div(fromPerUSD), nil
}

// MetalPrice returns the static price per gram in currency.
func (t *StaticTable) MetalPrice(metal model.NisabStandard, currency string) (decimal.Decimal, error) {
	usd := t.goldUSD
	if metal == model.StandardSilver {
		usd = t.silverUSD
	}
	rate, err := t.Rate("USD", currency)
	if err != nil {
		return decimal.Zero, err
	}
	return usd.Mul(rate), nil
}
