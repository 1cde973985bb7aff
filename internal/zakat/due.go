package zakat

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/nisab"
)

var (
	islamicRate = decimal.RequireFromString("0.025")
	// Lunar rate scaled to the ~11 days a Gregorian year adds.
	westernRate = decimal.RequireFromString("0.02577")
)

// Rate returns the zakat rate for a calendar.
func Rate(cal model.Calendar) (decimal.Decimal, error) {
	switch cal {
	case model.CalendarIslamic:
		return islamicRate, nil
	case model.CalendarWestern:
		return westernRate, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown calendar %q", cal)
	}
}

// Due is netWealth × rate when the threshold is met and zero otherwise.
// Zakat is levied on the whole net wealth, not the excess above the threshold.
func Due(netWealth, threshold decimal.Decimal, cal model.Calendar) (decimal.Decimal, error) {
	rate, err := Rate(cal)
	if err != nil {
		return decimal.Zero, err
	}
	if !nisab.MeetsNisab(netWealth, threshold) {
		return decimal.Zero, nil
	}
	return netWealth.Mul(rate), nil
}

// Result is a full computation over one set of items.
type Result struct {
	Totals
	Threshold  decimal.Decimal `json:"nisab_threshold"`
	MeetsNisab bool            `json:"meets_nisab"`
	Rate       decimal.Decimal `json:"rate"`
	Calendar   model.Calendar  `json:"calendar"`
	Due        decimal.Decimal `json:"zakat_due"`
}

// Calculate aggregates items and applies the threshold and calendar rate.
// Unresolved items do not make it fail; callers decide whether to block.
func Calculate(items []model.LineItem, threshold decimal.Decimal, cal model.Calendar) (Result, error) {
	rate, err := Rate(cal)
	if err != nil {
		return Result{}, err
	}
	t := Aggregate(items)
	due, err := Due(t.NetWealth, threshold, cal)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Totals:     t,
		Threshold:  threshold,
		MeetsNisab: nisab.MeetsNisab(t.NetWealth, threshold),
		Rate:       rate,
		Calendar:   cal,
		Due:        due,
	}, nil
}
