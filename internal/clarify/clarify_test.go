package clarify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/nisab/internal/model"
)

func flagged(name string, q model.QuestionType, amount string) *model.LineItem {
	d := decimal.RequireFromString(amount)
	return &model.LineItem{
		ID:              uuid.New(),
		Name:            name,
		Amount:          d,
		Currency:        "USD",
		ConvertedAmount: d,
		Classification:  model.NeedsClarification,
		QuestionType:    q,
	}
}

func resolved(name string, c model.Classification) *model.LineItem {
	return &model.LineItem{ID: uuid.New(), Name: name, Classification: c}
}

func TestResolve_Table(t *testing.T) {
	tests := []struct {
		q    model.QuestionType
		a    model.Answer
		want model.Classification
	}{
		{model.QuestionAssetUse, model.AnswerTrading, model.Zakatable},
		{model.QuestionAssetUse, model.AnswerOperations, model.Exempt},
		{model.QuestionFinancingType, model.AnswerIslamicFinancing, model.Deductible},
		{model.QuestionFinancingType, model.AnswerConventional, model.NotDeductible},
		{model.QuestionDepositNature, model.AnswerRefundableDeposit, model.Zakatable},
		{model.QuestionDepositNature, model.AnswerHeldForOthers, model.Deductible},
		{model.QuestionOther, model.AnswerAcknowledgeExempt, model.Exempt},
		{model.QuestionOther, model.AnswerTreatZakatable, model.Zakatable},
		{"", model.AnswerAcknowledgeExempt, model.Exempt},
	}
	for _, tt := range tests {
		t.Run(string(tt.q)+"/"+string(tt.a), func(t *testing.T) {
			got, err := Resolve(tt.q, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RejectsForeignAnswers(t *testing.T) {
	_, err := Resolve(model.QuestionAssetUse, model.AnswerConventional)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = Resolve(model.QuestionOther, "")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = Resolve(model.QuestionFinancingType, "maybe")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestNew_NothingToClarify(t *testing.T) {
	_, err := New([]*model.LineItem{resolved("Cash", model.Zakatable)})
	assert.ErrorIs(t, err, ErrNothingToClarify)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrNothingToClarify)
}

func TestWorkflow_WalksFlaggedItemsInOrder(t *testing.T) {
	cash := resolved("Cash", model.Zakatable)
	inv := flagged("Short-term Investments", model.QuestionAssetUse, "20000")
	loan := flagged("Bank Loan", model.QuestionFinancingType, "10000")
	dep := flagged("Security Deposits", model.QuestionDepositNature, "500")

	w, err := New([]*model.LineItem{cash, inv, loan, dep})
	require.NoError(t, err)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []uuid.UUID{inv.ID, loan.ID, dep.ID}, w.PendingIDs())

	cur, err := w.Current()
	require.NoError(t, err)
	assert.Same(t, inv, cur)

	mv := decimal.NewFromInt(22000)
	done, err := w.Answer(model.AnswerTrading, &mv)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, model.Zakatable, inv.Classification)
	assert.Equal(t, model.AnswerTrading, inv.ClarificationAnswer)
	require.NotNil(t, inv.MarketValue)
	assert.True(t, inv.ZakatableValue().Equal(mv))

	done, err = w.Answer(model.AnswerConventional, nil)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, model.NotDeductible, loan.Classification)

	done, err = w.Answer(model.AnswerHeldForOthers, nil)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, model.Deductible, dep.Classification)
	assert.Zero(t, w.Unanswered())

	_, err = w.Current()
	assert.ErrorIs(t, err, ErrDone)
}

func TestWorkflow_InvalidAnswerDoesNotAdvance(t *testing.T) {
	item := flagged("Bank Loan", model.QuestionFinancingType, "10000")
	w, err := New([]*model.LineItem{item})
	require.NoError(t, err)

	_, err = w.Answer(model.AnswerTrading, nil)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, 0, w.Index())
	assert.Equal(t, model.NeedsClarification, item.Classification)
}

func TestWorkflow_OtherIsNeverAutoResolved(t *testing.T) {
	item := flagged("Rare Stamps", model.QuestionOther, "300")
	w, err := New([]*model.LineItem{item})
	require.NoError(t, err)

	assert.ErrorIs(t, w.Next(), ErrAnswerRequired)
	assert.Equal(t, model.NeedsClarification, item.Classification)

	done, err := w.Answer(model.AnswerAcknowledgeExempt, nil)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, model.Exempt, item.Classification)
}

func TestWorkflow_BackKeepsAnswersAndReanswerIsIdempotent(t *testing.T) {
	a := flagged("Real Estate", model.QuestionAssetUse, "100000")
	b := flagged("Accounts Payable", model.QuestionFinancingType, "4000")
	w, err := New([]*model.LineItem{a, b})
	require.NoError(t, err)

	_, err = w.Answer(model.AnswerOperations, nil)
	require.NoError(t, err)

	w.Back()
	assert.Equal(t, 0, w.Index())
	assert.Equal(t, model.Exempt, a.Classification)

	for range 2 {
		w.Back()
		_, err = w.Answer(model.AnswerOperations, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, model.Exempt, a.Classification)
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, w.PendingIDs())

	// Back at the start stays put.
	w.Back()
	w.Back()
	assert.Equal(t, 0, w.Index())

	require.NoError(t, w.Next())
	assert.ErrorIs(t, w.Next(), ErrAnswerRequired)
}

func TestWorkflow_ChangingAnswerReclassifies(t *testing.T) {
	a := flagged("Real Estate", model.QuestionAssetUse, "100000")
	w, err := New([]*model.LineItem{a})
	require.NoError(t, err)

	_, err = w.Answer(model.AnswerTrading, nil)
	require.NoError(t, err)
	w.Back()
	_, err = w.Answer(model.AnswerOperations, nil)
	require.NoError(t, err)

	assert.Equal(t, model.Exempt, a.Classification)
	assert.Equal(t, model.AnswerOperations, a.ClarificationAnswer)
}

func TestWorkflow_NegativeMarketValue(t *testing.T) {
	a := flagged("Short-term Investments", model.QuestionAssetUse, "100")
	w, err := New([]*model.LineItem{a})
	require.NoError(t, err)

	neg := decimal.NewFromInt(-1)
	_, err = w.Answer(model.AnswerTrading, &neg)
	assert.ErrorIs(t, err, ErrNegativeMarketValue)
	assert.Nil(t, a.MarketValue)
	assert.Equal(t, 0, w.Index())
}

func TestWorkflow_MarketValueIgnoredWhenNotZakatable(t *testing.T) {
	a := flagged("Short-term Investments", model.QuestionAssetUse, "100")
	w, err := New([]*model.LineItem{a})
	require.NoError(t, err)

	mv := decimal.NewFromInt(150)
	_, err = w.Answer(model.AnswerOperations, &mv)
	require.NoError(t, err)
	assert.Nil(t, a.MarketValue)
}

func TestResume(t *testing.T) {
	a := flagged("Real Estate", model.QuestionAssetUse, "1")
	b := flagged("Bank Loan", model.QuestionFinancingType, "2")
	c := flagged("Security Deposits", model.QuestionDepositNature, "3")
	a.Classification = model.Exempt
	a.ClarificationAnswer = model.AnswerOperations

	// b was removed before resuming; c is new.
	gone := uuid.New()
	w, err := Resume([]*model.LineItem{a, c}, []uuid.UUID{a.ID, gone, b.ID}, 2)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, w.PendingIDs())
	assert.Equal(t, 1, w.Index())
	cur, err := w.Current()
	require.NoError(t, err)
	assert.Same(t, c, cur)
}

func TestResume_ClampsIndex(t *testing.T) {
	a := flagged("Real Estate", model.QuestionAssetUse, "1")

	w, err := Resume([]*model.LineItem{a}, []uuid.UUID{a.ID}, 9)
	require.NoError(t, err)
	assert.True(t, w.Done())

	w, err = Resume([]*model.LineItem{a}, nil, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Index())

	_, err = Resume([]*model.LineItem{resolved("Cash", model.Zakatable)}, nil, 0)
	assert.ErrorIs(t, err, ErrNothingToClarify)
}

func TestApply_NonZakatableAnswerDropsMarketValue(t *testing.T) {
	a := flagged("Short-term Investments", model.QuestionAssetUse, "20000")

	mv := decimal.NewFromInt(22000)
	require.NoError(t, Apply(a, model.AnswerTrading, &mv))
	require.NotNil(t, a.MarketValue)

	require.NoError(t, Apply(a, model.AnswerOperations, nil))
	assert.Nil(t, a.MarketValue)

	require.NoError(t, Apply(a, model.AnswerTrading, nil))
	assert.Nil(t, a.MarketValue)
	assert.Equal(t, "20000", a.ZakatableValue().String())
}

func TestAssetOptions(t *testing.T) {
	for _, q := range []model.QuestionType{
		model.QuestionAssetUse, model.QuestionFinancingType, model.QuestionDepositNature, model.QuestionOther,
	} {
		opts := AssetOptions(q)
		require.Len(t, opts, len(Options(q)))
		for _, opt := range opts {
			assert.NotEqual(t, model.Deductible, opt.Result, "%s/%s", q, opt.Answer)
		}
	}

	got := AssetOptions(model.QuestionDepositNature)
	assert.Equal(t, model.Exempt, got[1].Result)
	assert.Equal(t, model.Deductible, Options(model.QuestionDepositNature)[1].Result)
}

func TestWorkflow_SetOptions(t *testing.T) {
	dep := flagged("Security Deposits", model.QuestionDepositNature, "500")
	w, err := New([]*model.LineItem{dep})
	require.NoError(t, err)
	w.SetOptions(func(it *model.LineItem) []Option { return AssetOptions(it.QuestionType) })

	assert.Equal(t, AssetOptions(model.QuestionDepositNature), w.Options(dep))
	done, err := w.Answer(model.AnswerHeldForOthers, nil)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, model.Exempt, dep.Classification)
}
