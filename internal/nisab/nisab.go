// Package nisab computes the minimum-wealth threshold and checks eligibility.
package nisab

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
)

var (
	// ErrInvalidPrice rejects a zero or negative metal price, which would make
	// every amount of wealth look zakatable.
	ErrInvalidPrice = errors.New("metal price per gram must be positive")
	// ErrInvalidGrams rejects a zero or negative metal weight.
	ErrInvalidGrams = errors.New("nisab weight must be positive")
	// ErrCurrencyMismatch is returned when the price is denominated in a
	// different currency from the wealth being compared.
	ErrCurrencyMismatch = errors.New("nisab price currency does not match base currency")
)

// ComputeNisab returns pricePerGram × grams.
func ComputeNisab(pricePerGram, grams decimal.Decimal) (decimal.Decimal, error) {
	if !pricePerGram.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidPrice, pricePerGram)
	}
	if !grams.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidGrams, grams)
	}
	return pricePerGram.Mul(grams), nil
}

// MeetsNisab reports whether netWealth reaches the threshold. Equality counts.
func MeetsNisab(netWealth, threshold decimal.Decimal) bool {
	return netWealth.GreaterThanOrEqual(threshold)
}

// Threshold computes the threshold for cfg in baseCurrency. It is derived on
// every call so a changed price or standard is never served stale.
func Threshold(cfg model.NisabConfig, baseCurrency string) (decimal.Decimal, error) {
	if !cfg.Standard.Valid() {
		return decimal.Zero, fmt.Errorf("unknown nisab standard %q", cfg.Standard)
	}
	if rates.NormalizeCode(cfg.PriceCurrency) != rates.NormalizeCode(baseCurrency) {
		return decimal.Zero, fmt.Errorf("%w: price in %s, wealth in %s", ErrCurrencyMismatch, cfg.PriceCurrency, baseCurrency)
	}
	return ComputeNisab(cfg.PricePerGram, cfg.Standard.Grams())
}

// PriceSource answers metal prices per gram.
type PriceSource interface {
	MetalPrice(ctx context.Context, metal model.NisabStandard, currency string) (rates.Quote, error)
}

// Resolve builds threshold inputs in base. A pinned price is taken as given
// and the returned quote is nil; otherwise src is asked for the standard's
// metal.
func Resolve(ctx context.Context, src PriceSource, std model.NisabStandard, cal model.Calendar, base string, pinned *decimal.Decimal) (model.NisabConfig, *rates.Quote, error) {
	if !std.Valid() {
		return model.NisabConfig{}, nil, fmt.Errorf("unknown nisab standard %q", std)
	}
	if !cal.Valid() {
		return model.NisabConfig{}, nil, fmt.Errorf("unknown calendar %q", cal)
	}
	base = rates.NormalizeCode(base)
	cfg := model.NisabConfig{PriceCurrency: base, Standard: std, Calendar: cal}
	if pinned != nil {
		if !pinned.IsPositive() {
			return model.NisabConfig{}, nil, fmt.Errorf("%w: got %s", ErrInvalidPrice, pinned)
		}
		cfg.PricePerGram = *pinned
		return cfg, nil, nil
	}
	q, err := src.MetalPrice(ctx, std, base)
	if err != nil {
		return model.NisabConfig{}, nil, fmt.Errorf("looking up %s price: %w", std, err)
	}
	cfg.PricePerGram = q.Price
	return cfg, &q, nil
}
