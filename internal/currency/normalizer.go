// Package currency converts entered amounts into the session's base currency.
package currency

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
)

// RateProvider is the subset of rates.Provider the normalizer needs.
type RateProvider interface {
	Known(code string) bool
	ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, model.Provenance, error)
}

// Conversion is the result of converting one amount.
type Conversion struct {
	Amount     decimal.Decimal
	Rate       decimal.Decimal
	Provenance model.Provenance
}

// Normalizer converts amounts between currencies.
type Normalizer struct {
	rates RateProvider
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(r RateProvider) *Normalizer {
	return &Normalizer{rates: r}
}

// Convert returns amount expressed in to. Converting a currency to itself
// returns amount unchanged.
func (n *Normalizer) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	from, to = rates.NormalizeCode(from), rates.NormalizeCode(to)
	if from == to {
		if !n.rates.Known(from) {
			return Conversion{}, fmt.Errorf("%w: %s", rates.ErrUnknownCurrency, from)
		}
		return Conversion{Amount: amount, Rate: decimal.NewFromInt(1), Provenance: model.ProvenanceIdentity}, nil
	}
	rate, prov, err := n.rates.ExchangeRate(ctx, from, to)
	if err != nil {
		return Conversion{}, fmt.Errorf("converting %s to %s: %w", from, to, err)
	}
	return Conversion{Amount: amount.Mul(rate), Rate: rate, Provenance: prov}, nil
}

// Normalize sets the converted fields of item from its original amount and currency.
func (n *Normalizer) Normalize(ctx context.Context, item *model.LineItem, base string) error {
	conv, err := n.Convert(ctx, item.Amount, item.Currency, base)
	if err != nil {
		return fmt.Errorf("normalizing %q: %w", item.Name, err)
	}
	item.ConvertedAmount = conv.Amount
	item.ExchangeRate = conv.Rate
	item.RateProvenance = conv.Provenance
	return nil
}

// Renormalize recomputes every item against a new base currency, always from
// the original amount/currency pair. Nothing is modified when base is unknown.
func (n *Normalizer) Renormalize(ctx context.Context, items []*model.LineItem, base string) error {
	base = rates.NormalizeCode(base)
	if !n.rates.Known(base) {
		return fmt.Errorf("%w: %s", rates.ErrUnknownCurrency, base)
	}

	type result struct {
		item *model.LineItem
		conv Conversion
	}
	results := make([]result, 0, len(items))
	for _, item := range items {
		conv, err := n.Convert(ctx, item.Amount, item.Currency, base)
		if err != nil {
			return fmt.Errorf("renormalizing %q: %w", item.Name, err)
		}
		results = append(results, result{item: item, conv: conv})
	}
	for _, r := range results {
		r.item.ConvertedAmount = r.conv.Amount
		r.item.ExchangeRate = r.conv.Rate
		r.item.RateProvenance = r.conv.Provenance
	}
	return nil
}
