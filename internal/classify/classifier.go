// Package classify assigns an initial zakat classification to line items.
package classify

import (
	"strings"
	"unicode"

	"github.com/cleared-dev/nisab/internal/model"
)

// Archetype is a known kind of line item and its default treatment.
type Archetype struct {
	Name           string
	Aliases        []string
	Classification model.Classification
	QuestionType   model.QuestionType
	Question       string
	Ruling         string
	Category       model.Category // suggested business category, empty for personal-only items
}

// Result is the classifier's verdict for one item.
type Result struct {
	Classification model.Classification
	Ruling         string
	QuestionType   model.QuestionType
	Question       string
	Archetype      string // empty when the name was not recognised
}

// NeedsClarification reports whether the result carries a question.
func (r Result) NeedsClarification() bool {
	return r.Classification == model.NeedsClarification
}

// Classifier looks item names up in an archetype table.
type Classifier struct {
	archetypes []Archetype
	byKey      map[string]Archetype
}

// NewClassifier indexes archetypes by normalized name and alias.
func NewClassifier(archetypes []Archetype) *Classifier {
	byKey := make(map[string]Archetype)
	for _, a := range archetypes {
		byKey[key(a.Name)] = a
		for _, alias := range a.Aliases {
			byKey[key(alias)] = a
		}
	}
	return &Classifier{archetypes: archetypes, byKey: byKey}
}

// Default returns a classifier over DefaultArchetypes.
func Default() *Classifier {
	return NewClassifier(DefaultArchetypes())
}

// All returns the archetype table.
func (c *Classifier) All() []Archetype {
	return c.archetypes
}

// Lookup finds the archetype matching name.
func (c *Classifier) Lookup(name string) (Archetype, bool) {
	a, ok := c.byKey[key(name)]
	return a, ok
}

// Classify returns the initial classification for an individual line item.
// Unrecognised names always need clarification; no ruling is guessed.
func (c *Classifier) Classify(name string) Result {
	a, ok := c.Lookup(name)
	if !ok {
		return Result{
			Classification: model.NeedsClarification,
			Ruling:         rulingUnrecognised,
			QuestionType:   model.QuestionOther,
			Question:       QuestionOther,
		}
	}
	return Result{
		Classification: a.Classification,
		Ruling:         a.Ruling,
		QuestionType:   a.QuestionType,
		Question:       a.Question,
		Archetype:      a.Name,
	}
}

// ClassifyEntry classifies a business entry. Liabilities are decided by the
// financing flag alone; unrecognised fixed assets get the asset-use question.
func (c *Classifier) ClassifyEntry(name string, category model.Category, islamicFinancing bool) Result {
	if category.IsLiability() {
		res := Result{Classification: model.NotDeductible, Ruling: rulingConventional}
		if islamicFinancing {
			res = Result{Classification: model.Deductible, Ruling: rulingIslamicDebt}
		}
		if a, ok := c.Lookup(name); ok {
			res.Archetype = a.Name
		}
		return res
	}

	res := c.Classify(name)
	if category == model.CategoryFixedAssets && res.Archetype == "" {
		res.QuestionType = model.QuestionAssetUse
		res.Question = QuestionAssetUse
		res.Ruling = rulingFixedAsset
	}
	return res
}

// Apply copies a result onto item.
func Apply(item *model.LineItem, res Result) {
	item.Classification = res.Classification
	item.IslamicRuling = res.Ruling
	item.QuestionType = res.QuestionType
	item.ClarificationQuestion = res.Question
	item.ClarificationAnswer = ""
}

func key(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := fields[:0]
	for _, f := range fields {
		if f != "and" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
