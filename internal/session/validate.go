package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field       string
	ItemID      string
	Description string
}

func (e ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Description)
	}
	return fmt.Sprintf("invalid %s [%s]: %s", e.Field, e.ItemID, e.Description)
}

// CurrencyChecker tests whether a currency code is supported.
type CurrencyChecker interface {
	Known(code string) bool
}

// ItemInput is a line item as entered by the user.
type ItemInput struct {
	Name             string
	Amount           decimal.Decimal
	Currency         string
	MarketValue      *decimal.Decimal
	Category         model.Category // business mode only
	IslamicFinancing bool           // liabilities only
}

// ValidateInput checks an entry against the portfolio kind. Nothing is
// coerced: a negative amount is an error, not a zero.
func ValidateInput(in ItemInput, kind model.PortfolioKind, currencies CurrencyChecker, itemID string) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", ItemID: itemID, Description: "must not be empty"})
	}
	if in.Amount.IsNegative() {
		errs = append(errs, ValidationError{Field: "amount", ItemID: itemID, Description: fmt.Sprintf("%s is negative", in.Amount)})
	}
	if in.MarketValue != nil && in.MarketValue.IsNegative() {
		errs = append(errs, ValidationError{Field: "market_value", ItemID: itemID, Description: fmt.Sprintf("%s is negative", in.MarketValue)})
	}
	if !currencies.Known(in.Currency) {
		errs = append(errs, ValidationError{Field: "currency", ItemID: itemID, Description: fmt.Sprintf("unknown currency code %q", in.Currency)})
	}

	switch kind {
	case model.PortfolioBusiness:
		if !in.Category.Valid() {
			errs = append(errs, ValidationError{Field: "category", ItemID: itemID, Description: fmt.Sprintf("unknown category %q", in.Category)})
		} else if in.IslamicFinancing && !in.Category.IsLiability() {
			errs = append(errs, ValidationError{Field: "islamic_financing", ItemID: itemID, Description: "only applies to liabilities"})
		}
	default:
		if in.Category != "" {
			errs = append(errs, ValidationError{Field: "category", ItemID: itemID, Description: "categories are only used by business portfolios"})
		}
		if in.IslamicFinancing {
			errs = append(errs, ValidationError{Field: "islamic_financing", ItemID: itemID, Description: "only used by business portfolios"})
		}
	}
	return errs
}

func joinValidation(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return errors.Join(all...)
}

// UnresolvedError blocks finalizing while items still need clarification.
type UnresolvedError struct {
	Count int
	Items []model.LineItem
}

func (e *UnresolvedError) Error() string {
	names := make([]string, len(e.Items))
	for i, it := range e.Items {
		names[i] = it.Name
	}
	return fmt.Sprintf("%d item(s) still need clarification: %s", e.Count, strings.Join(names, ", "))
}
