package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/session"
	"github.com/cleared-dev/nisab/internal/zakat"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		cur  string
		want string
	}{
		{"0", "USD", "0.00 USD"},
		{"999.5", "", "999.50"},
		{"1000", "USD", "1,000.00 USD"},
		{"1234567.891", "EUR", "1,234,567.89 EUR"},
		{"-25000", "USD", "-25,000.00 USD"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(dec(tt.in), tt.cur))
		})
	}
}

func TestSummary(t *testing.T) {
	sum := session.Summary{
		Result: zakat.Result{
			Totals:     zakat.Totals{Zakatable: dec("15000"), Deductible: dec("5000"), NetWealth: dec("10000")},
			Threshold:  dec("7522.5"),
			MeetsNisab: true,
			Rate:       dec("0.025"),
			Calendar:   model.CalendarIslamic,
			Due:        dec("250"),
		},
		Currency:     "USD",
		HawlComplete: true,
	}
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sum))
	out := buf.String()
	assert.Contains(t, out, "15,000.00 USD")
	assert.Contains(t, out, "7,522.50 USD")
	assert.Contains(t, out, "2.5%")
	assert.Contains(t, out, "250.00 USD")
	assert.NotContains(t, out, "clarification")

	sum.HawlComplete = false
	sum.DaysUntilHawl = 100
	sum.Due = decimal.Zero
	sum.Unresolved = 2
	buf.Reset()
	require.NoError(t, Summary(&buf, sum))
	assert.Contains(t, buf.String(), "100 days remaining")
	assert.Contains(t, buf.String(), "2 item(s) need clarification")
}

func TestItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Items(&buf, nil, "USD"))
	assert.Contains(t, buf.String(), "No items.")

	entries := []model.CategoryEntry{
		{LineItem: model.LineItem{ID: uuid.New(), Name: "Cash", Amount: dec("100"), Currency: "EUR", ConvertedAmount: dec("110"), Classification: model.Zakatable}},
		{LineItem: model.LineItem{ID: uuid.New(), Name: "Shares", Amount: dec("50"), Currency: "USD", ConvertedAmount: dec("50"), Classification: model.NeedsClarification}},
	}
	buf.Reset()
	require.NoError(t, Items(&buf, entries, "USD"))
	out := buf.String()
	assert.Contains(t, out, "Cash")
	assert.Contains(t, out, "100.00 EUR")
	assert.Contains(t, out, "110.00")
	assert.Contains(t, out, "Needs clarification")
	assert.NotContains(t, out, "CATEGORY")

	entries[0].Category = model.CategoryCurrentAssets
	buf.Reset()
	require.NoError(t, Items(&buf, entries, "USD"))
	assert.Contains(t, buf.String(), "current_assets")
}

func TestRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Records(&buf, nil))
	assert.Contains(t, buf.String(), "No saved calculations.")

	recs := []model.CalculationRecord{{
		ID: uuid.New(), Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), EntityName: "Household",
		NetWealth: dec("10000"), ZakatDue: dec("250"), Currency: "USD", Paid: true,
	}}
	buf.Reset()
	require.NoError(t, Records(&buf, recs))
	assert.Contains(t, buf.String(), "2026-03-01")
	assert.Contains(t, buf.String(), "Household")
	assert.Contains(t, buf.String(), "paid")
}

func TestQuotesAndAdvisories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Quotes(&buf, []rates.Quote{
		{Metal: model.StandardGold, Price: dec("88.5"), Currency: "USD", SourceCount: 2, Provenance: model.ProvenanceLive},
		{Metal: model.StandardSilver, Price: dec("1.05"), Currency: "USD", Provenance: model.ProvenanceStatic},
	}))
	assert.Contains(t, buf.String(), "88.50 USD/g")
	assert.Contains(t, buf.String(), "2 sources")
	assert.Contains(t, buf.String(), "static")

	buf.Reset()
	require.NoError(t, Advisories(&buf, []rates.Advisory{{Subject: "USD->SAR", Provenance: model.ProvenanceCached, Reason: "timeout"}}))
	assert.Contains(t, buf.String(), "USD->SAR: using cached value (timeout)")
}

func TestHawl(t *testing.T) {
	start := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	now := start.Add(100 * 24 * time.Hour)

	var buf bytes.Buffer
	require.NoError(t, Hawl(&buf, start, now))
	out := buf.String()
	assert.Contains(t, out, "2025-06-20")
	assert.Contains(t, out, "254 days until the next anniversary")
	assert.NotContains(t, out, "first hawl complete")

	buf.Reset()
	require.NoError(t, Hawl(&buf, start, start.Add(400*24*time.Hour)))
	assert.Contains(t, buf.String(), "first hawl complete")

	buf.Reset()
	require.NoError(t, Hawl(&buf, start, start.Add(-10*24*time.Hour)))
	assert.Contains(t, buf.String(), "364 days until the next anniversary")
	assert.NotContains(t, buf.String(), "first hawl complete")
}
