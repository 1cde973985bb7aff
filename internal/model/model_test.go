package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationValid(t *testing.T) {
	for _, c := range Classifications() {
		assert.True(t, c.Valid(), "%s should be valid", c)
	}
	assert.False(t, Classification("partially_zakatable").Valid())
	assert.False(t, Classification("").Valid())
}

func TestClassificationJSONRejectsUnknown(t *testing.T) {
	var item LineItem
	err := json.Unmarshal([]byte(`{"classification":"maybe"}`), &item)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`{"classification":"not_deductible"}`), &item)
	require.NoError(t, err)
	assert.Equal(t, NotDeductible, item.Classification)
}

func TestZakatableValue(t *testing.T) {
	mv := decimal.RequireFromString("22000")
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{"book value", LineItem{ConvertedAmount: decimal.RequireFromString("20000"), ExchangeRate: decimal.NewFromInt(1)}, "20000"},
		{"market override", LineItem{ConvertedAmount: decimal.RequireFromString("20000"), ExchangeRate: decimal.NewFromInt(1), MarketValue: &mv}, "22000"},
		{"market override converted", LineItem{ConvertedAmount: decimal.RequireFromString("10000"), ExchangeRate: decimal.RequireFromString("0.5"), MarketValue: &mv}, "11000"},
		{"unnormalized", LineItem{MarketValue: &mv}, "22000"},
	}
	for _, tt := range tests {
		got := tt.item.ZakatableValue()
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s: got %s", tt.name, got)
	}
}

func TestCategoryEntryLocked(t *testing.T) {
	tests := []struct {
		category Category
		islamic  bool
		want     bool
	}{
		{CategoryCurrentLiabilities, false, true},
		{CategoryLongTermLiabilities, false, true},
		{CategoryCurrentLiabilities, true, false},
		{CategoryCurrentAssets, false, false},
		{CategoryFixedAssets, false, false},
	}
	for _, tt := range tests {
		e := CategoryEntry{Category: tt.category, IsIslamicFinancing: tt.islamic}
		assert.Equal(t, tt.want, e.Locked(), "%s islamic=%v", tt.category, tt.islamic)
	}
}

func TestCategoryEntryJSONFlattensLineItem(t *testing.T) {
	e := CategoryEntry{
		LineItem: LineItem{ID: uuid.New(), Name: "Bank Loan", Classification: NotDeductible},
		Category: CategoryLongTermLiabilities,
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Bank Loan"`)
	assert.Contains(t, string(data), `"category":"long_term_liabilities"`)

	var got CategoryEntry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, NotDeductible, got.Classification)
}

func TestNisabStandardGrams(t *testing.T) {
	assert.True(t, StandardGold.Grams().Equal(decimal.NewFromInt(85)))
	assert.True(t, StandardSilver.Grams().Equal(decimal.NewFromInt(595)))
}

func TestPortfolioEntityName(t *testing.T) {
	p := Portfolio{Kind: PortfolioBusiness, Name: "Aisha", CompanyName: "Noor Trading LLC"}
	assert.Equal(t, "Noor Trading LLC", p.EntityName())

	p = Portfolio{Kind: PortfolioPersonal, Name: "Aisha"}
	assert.Equal(t, "Aisha", p.EntityName())
}
