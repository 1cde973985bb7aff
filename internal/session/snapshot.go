package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
)

// Snapshot is the persisted form of a draft session.
type Snapshot struct {
	ID           uuid.UUID             `json:"id"`
	PortfolioID  uuid.UUID             `json:"portfolio_id"`
	Kind         model.PortfolioKind   `json:"kind"`
	BaseCurrency string                `json:"base_currency"`
	Nisab        model.NisabConfig     `json:"nisab"`
	HawlStart    *time.Time            `json:"hawl_start,omitempty"`
	CompanyID    *uuid.UUID            `json:"company_id,omitempty"`
	Entries      []model.CategoryEntry `json:"entries"`
	PendingIDs   []uuid.UUID           `json:"pending_ids,omitempty"`
	Index        int                   `json:"index"`
}

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.ID,
		PortfolioID:  s.PortfolioID,
		Kind:         s.Kind,
		BaseCurrency: s.BaseCurrency,
		Nisab:        s.Nisab,
		HawlStart:    s.HawlStart,
		CompanyID:    s.CompanyID,
		Entries:      s.Entries(),
		PendingIDs:   append([]uuid.UUID(nil), s.pending...),
		Index:        s.index,
	}
}

// Restore rebuilds a session from a snapshot. Entries are trusted as saved;
// only the kind and base currency are checked.
func Restore(snap Snapshot, deps Deps) (*Session, error) {
	if !snap.Kind.Valid() {
		return nil, fmt.Errorf("restoring session %s: unknown portfolio kind %q", snap.ID, snap.Kind)
	}
	if !deps.Rates.Known(snap.BaseCurrency) {
		return nil, fmt.Errorf("restoring session %s: %w: %s", snap.ID, rates.ErrUnknownCurrency, snap.BaseCurrency)
	}
	s := &Session{
		ID:           snap.ID,
		PortfolioID:  snap.PortfolioID,
		Kind:         snap.Kind,
		BaseCurrency: snap.BaseCurrency,
		Nisab:        snap.Nisab,
		HawlStart:    snap.HawlStart,
		CompanyID:    snap.CompanyID,
		pending:      snap.PendingIDs,
		index:        snap.Index,
	}
	for _, e := range snap.Entries {
		s.entries = append(s.entries, &e)
	}
	s.wire(deps)
	return s, nil
}
