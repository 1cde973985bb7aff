package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calendar selects the year basis used for the zakat rate.
type Calendar string

const (
	CalendarIslamic Calendar = "islamic"
	CalendarWestern Calendar = "western"
)

// Valid reports whether c is a known calendar.
func (c Calendar) Valid() bool {
	return c == CalendarIslamic || c == CalendarWestern
}

// NisabStandard selects the metal the threshold is measured against.
type NisabStandard string

const (
	StandardGold   NisabStandard = "gold"
	StandardSilver NisabStandard = "silver"
)

// Valid reports whether s is a known standard.
func (s NisabStandard) Valid() bool {
	return s == StandardGold || s == StandardSilver
}

// Grams returns the metal weight of the threshold: 85g gold or 595g silver.
func (s NisabStandard) Grams() decimal.Decimal {
	if s == StandardSilver {
		return decimal.NewFromInt(595)
	}
	return decimal.NewFromInt(85)
}

// NisabConfig holds the inputs of the threshold. PricePerGram is the price of
// the metal named by Standard, denominated in PriceCurrency.
type NisabConfig struct {
	PricePerGram  decimal.Decimal `json:"price_per_gram"`
	PriceCurrency string          `json:"price_currency"`
	Standard      NisabStandard   `json:"standard"`
	Calendar      Calendar        `json:"calendar"`
}

// HawlInfo is the current lunar holding period.
type HawlInfo struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
