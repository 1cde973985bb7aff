package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cleared-dev/nisab/internal/store"
)

// ErrNoDraft is returned when a portfolio has no saved draft.
var ErrNoDraft = errors.New("no draft session")

func draftKey(portfolioID uuid.UUID) string {
	return "sessions/" + portfolioID.String()
}

// SaveDraft persists s under its portfolio, replacing any earlier draft.
func SaveDraft(ctx context.Context, st store.Store, s *Session) error {
	if err := store.SaveJSON(ctx, st, draftKey(s.PortfolioID), s.Snapshot()); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// LoadDraft restores the draft of a portfolio.
func LoadDraft(ctx context.Context, st store.Store, portfolioID uuid.UUID, deps Deps) (*Session, error) {
	var snap Snapshot
	err := store.LoadJSON(ctx, st, draftKey(portfolioID), &snap)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}
	return Restore(snap, deps)
}

// DiscardDraft deletes a portfolio's draft. A missing draft is not an error.
func DiscardDraft(ctx context.Context, st store.Store, portfolioID uuid.UUID) error {
	err := st.Delete(ctx, draftKey(portfolioID))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("discarding draft: %w", err)
	}
	return nil
}
