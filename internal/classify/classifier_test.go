package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/nisab/internal/model"
)

func TestClassify_KnownItems(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		want     model.Classification
		question model.QuestionType
	}{
		{"Cash on Hand", model.Zakatable, ""},
		{"cash", model.Zakatable, ""},
		{"  CASH   in  BANK ", model.Zakatable, ""},
		{"Gold & Silver", model.Zakatable, ""},
		{"Inventory", model.Zakatable, ""},
		{"Accounts Receivable", model.Zakatable, ""},
		{"Short-term Investments", model.NeedsClarification, model.QuestionAssetUse},
		{"short term investments", model.NeedsClarification, model.QuestionAssetUse},
		{"Real Estate", model.NeedsClarification, model.QuestionAssetUse},
		{"Property, Plant and Equipment", model.Exempt, ""},
		{"Prepaid Expenses", model.Exempt, ""},
		{"Security Deposits", model.NeedsClarification, model.QuestionDepositNature},
		{"Accounts Payable", model.NeedsClarification, model.QuestionFinancingType},
		{"Mortgage", model.NeedsClarification, model.QuestionFinancingType},
		{"Murabaha Financing", model.Deductible, ""},
		{"Accrued Expenses", model.Deductible, ""},
		{"Interest Payable", model.NotDeductible, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.name)
			assert.Equal(t, tt.want, res.Classification)
			assert.Equal(t, tt.question, res.QuestionType)
			assert.NotEmpty(t, res.Archetype)
			assert.NotEmpty(t, res.Ruling)
			if tt.question != "" {
				assert.NotEmpty(t, res.Question)
			}
		})
	}
}

func TestClassify_UnrecognisedNeedsClarification(t *testing.T) {
	res := Default().Classify("Rare Stamp Collection")

	assert.Equal(t, model.NeedsClarification, res.Classification)
	assert.Equal(t, model.QuestionOther, res.QuestionType)
	assert.Equal(t, QuestionOther, res.Question)
	assert.Empty(t, res.Archetype)
	assert.True(t, res.NeedsClarification())
}

func TestClassify_EmptyNameIsUnrecognised(t *testing.T) {
	res := Default().Classify("")
	assert.Equal(t, model.NeedsClarification, res.Classification)
	assert.Equal(t, model.QuestionOther, res.QuestionType)
}

func TestClassifyEntry_Liabilities(t *testing.T) {
	c := Default()

	for _, cat := range []model.Category{model.CategoryCurrentLiabilities, model.CategoryLongTermLiabilities} {
		t.Run(string(cat), func(t *testing.T) {
			conv := c.ClassifyEntry("Bank Loan", cat, false)
			assert.Equal(t, model.NotDeductible, conv.Classification)
			assert.Empty(t, conv.QuestionType)
			assert.Equal(t, "Bank Loan", conv.Archetype)

			isl := c.ClassifyEntry("Bank Loan", cat, true)
			assert.Equal(t, model.Deductible, isl.Classification)

			// Even a name that maps to deductible follows the flag.
			assert.Equal(t, model.NotDeductible, c.ClassifyEntry("Accrued Expenses", cat, false).Classification)
			assert.Equal(t, model.Deductible, c.ClassifyEntry("Unknown Debt", cat, true).Classification)
		})
	}
}

func TestClassifyEntry_FixedAssets(t *testing.T) {
	c := Default()

	known := c.ClassifyEntry("Equipment", model.CategoryFixedAssets, false)
	assert.Equal(t, model.Exempt, known.Classification)

	unknown := c.ClassifyEntry("Delivery Drones", model.CategoryFixedAssets, false)
	assert.Equal(t, model.NeedsClarification, unknown.Classification)
	assert.Equal(t, model.QuestionAssetUse, unknown.QuestionType)
	assert.Equal(t, QuestionAssetUse, unknown.Question)
}

func TestClassifyEntry_CurrentAssetsUseNameTable(t *testing.T) {
	c := Default()

	assert.Equal(t, model.Zakatable, c.ClassifyEntry("Inventory", model.CategoryCurrentAssets, false).Classification)

	unknown := c.ClassifyEntry("Mystery Balance", model.CategoryCurrentAssets, false)
	assert.Equal(t, model.QuestionOther, unknown.QuestionType)
}

func TestApply(t *testing.T) {
	item := model.LineItem{Name: "Bank Loan", ClarificationAnswer: model.AnswerConventional}
	Apply(&item, Default().Classify(item.Name))

	assert.Equal(t, model.NeedsClarification, item.Classification)
	assert.Equal(t, model.QuestionFinancingType, item.QuestionType)
	assert.Equal(t, QuestionFinancingType, item.ClarificationQuestion)
	assert.Empty(t, item.ClarificationAnswer)
}

func TestDefaultArchetypes_WellFormed(t *testing.T) {
	seen := map[string]string{}
	for _, a := range DefaultArchetypes() {
		require.True(t, a.Classification.Valid(), a.Name)
		if a.Classification == model.NeedsClarification {
			assert.NotEmpty(t, a.QuestionType, a.Name)
			assert.NotEmpty(t, a.Question, a.Name)
		} else {
			assert.Empty(t, a.QuestionType, a.Name)
		}
		if a.Category != "" {
			assert.True(t, a.Category.Valid(), a.Name)
		}
		for _, k := range append([]string{a.Name}, a.Aliases...) {
			if prev, ok := seen[key(k)]; ok {
				t.Errorf("%q in %s collides with %s", k, a.Name, prev)
			}
			seen[key(k)] = a.Name
		}
	}
}

func TestCommonItems(t *testing.T) {
	c := Default()

	personal := CommonItems(model.PortfolioPersonal)
	require.NotEmpty(t, personal)
	for _, tmpl := range personal {
		_, ok := c.Lookup(tmpl.Name)
		assert.True(t, ok, tmpl.Name)
		assert.Empty(t, tmpl.Category)
	}

	business := CommonItems(model.PortfolioBusiness)
	require.NotEmpty(t, business)
	cats := map[model.Category]bool{}
	for _, tmpl := range business {
		_, ok := c.Lookup(tmpl.Name)
		assert.True(t, ok, tmpl.Name)
		assert.True(t, tmpl.Category.Valid(), tmpl.Name)
		cats[tmpl.Category] = true
	}
	assert.Len(t, cats, len(model.Categories()))
}
