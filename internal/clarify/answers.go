package clarify

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/nisab/internal/model"
)

// ErrInvalidAnswer is returned when an answer does not belong to the question.
var ErrInvalidAnswer = errors.New("answer does not fit the question")

// Option is one allowed answer to a question type.
type Option struct {
	Answer model.Answer
	Label  string
	Result model.Classification
}

var options = map[model.QuestionType][]Option{
	model.QuestionAssetUse: {
		{Answer: model.AnswerTrading, Label: "Held for trading or sale", Result: model.Zakatable},
		{Answer: model.AnswerOperations, Label: "Used in business operations", Result: model.Exempt},
	},
	model.QuestionFinancingType: {
		{Answer: model.AnswerIslamicFinancing, Label: "Islamic financing", Result: model.Deductible},
		{Answer: model.AnswerConventional, Label: "Conventional / interest-based", Result: model.NotDeductible},
	},
	model.QuestionDepositNature: {
		{Answer: model.AnswerRefundableDeposit, Label: "Refundable deposit I paid", Result: model.Zakatable},
		{Answer: model.AnswerHeldForOthers, Label: "Held on behalf of others", Result: model.Deductible},
	},
	model.QuestionOther: {
		{Answer: model.AnswerAcknowledgeExempt, Label: "I am unsure; treat as exempt", Result: model.Exempt},
		{Answer: model.AnswerTreatZakatable, Label: "Count it as zakatable", Result: model.Zakatable},
	},
}

// Options lists the answers accepted for a question type. An empty type is
// treated as QuestionOther.
func Options(q model.QuestionType) []Option {
	if q == "" {
		q = model.QuestionOther
	}
	return options[q]
}

// AssetOptions lists the answers for an entry on the asset side of a
// business balance sheet. Assets are never deductible, so answers that would
// deduct resolve to exempt.
func AssetOptions(q model.QuestionType) []Option {
	opts := append([]Option(nil), Options(q)...)
	for i := range opts {
		if opts[i].Result == model.Deductible {
			opts[i].Result = model.Exempt
		}
	}
	return opts
}

// OptionsFunc picks the answers offered for an item.
type OptionsFunc func(it *model.LineItem) []Option

// ItemOptions is the default OptionsFunc, keyed on the item's question type.
func ItemOptions(it *model.LineItem) []Option {
	return Options(it.QuestionType)
}

// Resolve maps an answer to its classification.
func Resolve(q model.QuestionType, a model.Answer) (model.Classification, error) {
	return choose(Options(q), q, a)
}

func choose(opts []Option, q model.QuestionType, a model.Answer) (model.Classification, error) {
	for _, opt := range opts {
		if opt.Answer == a {
			return opt.Result, nil
		}
	}
	return "", fmt.Errorf("%w: %q for %q", ErrInvalidAnswer, a, q)
}
