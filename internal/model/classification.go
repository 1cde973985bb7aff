package model

import "fmt"

// Classification is the zakat treatment assigned to a line item.
type Classification string

const (
	Zakatable          Classification = "zakatable"
	Deductible         Classification = "deductible"
	Exempt             Classification = "exempt"
	NotDeductible      Classification = "not_deductible"
	NeedsClarification Classification = "needs_clarification"
)

// Classifications returns every classification in display order.
func Classifications() []Classification {
	return []Classification{Zakatable, Deductible, Exempt, NotDeductible, NeedsClarification}
}

// Valid reports whether c is one of the five known classifications.
func (c Classification) Valid() bool {
	switch c {
	case Zakatable, Deductible, Exempt, NotDeductible, NeedsClarification:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (c Classification) Label() string {
	switch c {
	case Zakatable:
		return "Zakatable"
	case Deductible:
		return "Deductible"
	case Exempt:
		return "Exempt"
	case NotDeductible:
		return "Not deductible"
	case NeedsClarification:
		return "Needs clarification"
	}
	return string(c)
}

// ParseClassification converts a stored string into a Classification.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown classification %q", s)
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown classification %q", string(c))
	}
	return []byte(c), nil
}

// UnmarshalText rejects anything outside the closed set so decoded state
// can never hold a sixth value.
func (c *Classification) UnmarshalText(text []byte) error {
	parsed, err := ParseClassification(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// QuestionType is the shape of a clarification question.
type QuestionType string

const (
	QuestionAssetUse      QuestionType = "asset_use"
	QuestionFinancingType QuestionType = "financing_type"
	QuestionDepositNature QuestionType = "deposit_nature"
	QuestionOther         QuestionType = "other"
)

// Answer is a user's reply to a clarification question.
type Answer string

const (
	AnswerTrading           Answer = "trading"
	AnswerOperations        Answer = "operations"
	AnswerIslamicFinancing  Answer = "islamic_financing"
	AnswerConventional      Answer = "conventional"
	AnswerRefundableDeposit Answer = "refundable_deposit"
	AnswerHeldForOthers     Answer = "held_for_others"
	AnswerAcknowledgeExempt Answer = "acknowledge_exempt"
	AnswerTreatZakatable    Answer = "treat_zakatable"
)
