// Package clarify walks the user through the items that need a ruling.
package clarify

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

var (
	ErrNothingToClarify    = errors.New("no items need clarification")
	ErrAnswerRequired      = errors.New("current item has not been answered")
	ErrDone                = errors.New("clarification is complete")
	ErrNegativeMarketValue = errors.New("market value must not be negative")
)

// Workflow is a linear, resumable pass over the items that were flagged
// needs_clarification when it started. Answered items stay in the list so
// going back can revisit them.
type Workflow struct {
	pending []*model.LineItem
	index   int
	options OptionsFunc
}

// New starts a workflow over every flagged item, in order.
func New(items []*model.LineItem) (*Workflow, error) {
	w := &Workflow{options: ItemOptions}
	for _, it := range items {
		if it.Classification == model.NeedsClarification {
			w.pending = append(w.pending, it)
		}
	}
	if len(w.pending) == 0 {
		return nil, ErrNothingToClarify
	}
	return w, nil
}

// Resume rebuilds a workflow from a saved pending list and index. Items that
// no longer exist are dropped; newly flagged items are appended.
func Resume(items []*model.LineItem, pendingIDs []uuid.UUID, index int) (*Workflow, error) {
	byID := make(map[uuid.UUID]*model.LineItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	w := &Workflow{options: ItemOptions}
	seen := make(map[uuid.UUID]bool)
	for i, id := range pendingIDs {
		it, ok := byID[id]
		if !ok {
			if i < index {
				index--
			}
			continue
		}
		w.pending = append(w.pending, it)
		seen[id] = true
	}
	for _, it := range items {
		if !seen[it.ID] && it.Classification == model.NeedsClarification {
			w.pending = append(w.pending, it)
		}
	}
	if len(w.pending) == 0 {
		return nil, ErrNothingToClarify
	}
	w.index = min(max(index, 0), len(w.pending))
	return w, nil
}

// PendingIDs returns the ordered item IDs covered by the workflow.
func (w *Workflow) PendingIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(w.pending))
	for i, it := range w.pending {
		ids[i] = it.ID
	}
	return ids
}

// Index is the position of the current item.
func (w *Workflow) Index() int { return w.index }

// Len is the number of items covered.
func (w *Workflow) Len() int { return len(w.pending) }

// Done reports whether the index reached the end.
func (w *Workflow) Done() bool { return w.index >= len(w.pending) }

// Unanswered counts covered items still flagged.
func (w *Workflow) Unanswered() int {
	n := 0
	for _, it := range w.pending {
		if it.Classification == model.NeedsClarification {
			n++
		}
	}
	return n
}

// SetOptions replaces how the answers for an item are chosen.
func (w *Workflow) SetOptions(fn OptionsFunc) {
	if fn == nil {
		fn = ItemOptions
	}
	w.options = fn
}

// Options lists the answers accepted for it.
func (w *Workflow) Options(it *model.LineItem) []Option {
	return w.options(it)
}

// Current returns the item under the cursor.
func (w *Workflow) Current() (*model.LineItem, error) {
	if w.Done() {
		return nil, ErrDone
	}
	return w.pending[w.index], nil
}

// Answer resolves the current item and advances. It reports whether the
// workflow is now complete.
func (w *Workflow) Answer(answer model.Answer, marketValue *decimal.Decimal) (bool, error) {
	it, err := w.Current()
	if err != nil {
		return true, err
	}
	if err := ApplyFrom(w.options(it), it, answer, marketValue); err != nil {
		return false, err
	}
	w.index++
	return w.Done(), nil
}

// Apply records answer on item. marketValue, when given for an answer that
// makes the item zakatable, replaces the book amount in the zakatable total.
// Any other answer drops an earlier market value.
func Apply(it *model.LineItem, answer model.Answer, marketValue *decimal.Decimal) error {
	return ApplyFrom(Options(it.QuestionType), it, answer, marketValue)
}

// ApplyFrom is Apply restricted to opts.
func ApplyFrom(opts []Option, it *model.LineItem, answer model.Answer, marketValue *decimal.Decimal) error {
	class, err := choose(opts, it.QuestionType, answer)
	if err != nil {
		return fmt.Errorf("answering %q: %w", it.Name, err)
	}
	if marketValue != nil && marketValue.IsNegative() {
		return fmt.Errorf("answering %q: %w", it.Name, ErrNegativeMarketValue)
	}
	switch {
	case class != model.Zakatable:
		it.MarketValue = nil
	case marketValue != nil:
		mv := *marketValue
		it.MarketValue = &mv
	}
	it.Classification = class
	it.ClarificationAnswer = answer
	return nil
}

// Back moves to the previous item. Answers are kept.
func (w *Workflow) Back() {
	if w.index > 0 {
		w.index--
	}
}

// Next moves forward past an item that already has an answer.
func (w *Workflow) Next() error {
	it, err := w.Current()
	if err != nil {
		return err
	}
	if it.ClarificationAnswer == "" {
		return fmt.Errorf("%q: %w", it.Name, ErrAnswerRequired)
	}
	w.index++
	return nil
}
