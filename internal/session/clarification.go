package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/clarify"
	"github.com/cleared-dev/nisab/internal/model"
)

// Question is the clarification prompt for the current item.
type Question struct {
	Item     model.LineItem   `json:"item"`
	Position int              `json:"position"` // 1-based
	Total    int              `json:"total"`
	Options  []clarify.Option `json:"options"`
}

// Unresolved counts entries still flagged.
func (s *Session) Unresolved() int {
	n := 0
	for _, e := range s.entries {
		if e.Classification == model.NeedsClarification {
			n++
		}
	}
	return n
}

// workflow rebuilds the clarification cursor over the live entries and hands
// it to fn, saving its position afterwards.
func (s *Session) workflow(fn func(w *clarify.Workflow) error) error {
	w, err := clarify.Resume(s.itemPtrs(), s.pending, s.index)
	if err != nil {
		return err
	}
	w.SetOptions(s.options)
	err = fn(w)
	s.pending, s.index = w.PendingIDs(), w.Index()
	return err
}

// options lists the answers for it. Business asset entries cannot be
// answered into a deduction.
func (s *Session) options(it *model.LineItem) []clarify.Option {
	if s.Kind == model.PortfolioBusiness {
		if e, err := s.find(it.ID); err == nil && !e.Category.IsLiability() {
			return clarify.AssetOptions(it.QuestionType)
		}
	}
	return clarify.ItemOptions(it)
}

// Current returns the question under the cursor.
func (s *Session) Current() (Question, error) {
	var q Question
	err := s.workflow(func(w *clarify.Workflow) error {
		it, err := w.Current()
		if err != nil {
			return err
		}
		q = Question{Item: *it, Position: w.Index() + 1, Total: w.Len(), Options: w.Options(it)}
		return nil
	})
	return q, err
}

// Answer resolves the current item and advances. It reports whether the
// cursor reached the end.
func (s *Session) Answer(answer model.Answer, marketValue *decimal.Decimal) (bool, error) {
	var done bool
	err := s.workflow(func(w *clarify.Workflow) error {
		it, err := w.Current()
		if err != nil {
			return err
		}
		name := it.Name
		done, err = w.Answer(answer, marketValue)
		if err != nil {
			return err
		}
		s.log.Debug("item clarified",
			zap.String("name", name),
			zap.String("answer", string(answer)))
		return nil
	})
	return done, err
}

// Back moves the cursor to the previous item.
func (s *Session) Back() error {
	return s.workflow(func(w *clarify.Workflow) error {
		w.Back()
		return nil
	})
}

// Next moves past an already answered item.
func (s *Session) Next() error {
	return s.workflow(func(w *clarify.Workflow) error {
		return w.Next()
	})
}

// AnswerItem resolves a specific entry out of order, for example to change
// an earlier answer. Locked conventional liabilities cannot be reclassified.
func (s *Session) AnswerItem(id uuid.UUID, answer model.Answer, marketValue *decimal.Decimal) (model.CategoryEntry, error) {
	e, err := s.find(id)
	if err != nil {
		return model.CategoryEntry{}, err
	}
	if e.Locked() {
		return model.CategoryEntry{}, fmt.Errorf("%q: %w", e.Name, ErrLockedClassification)
	}
	if e.QuestionType == "" {
		return model.CategoryEntry{}, fmt.Errorf("%q: %w", e.Name, ErrNoQuestion)
	}

	if err := clarify.ApplyFrom(s.options(&e.LineItem), &e.LineItem, answer, marketValue); err != nil {
		return model.CategoryEntry{}, err
	}
	return *e, nil
}
