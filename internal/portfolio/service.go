// Package portfolio manages portfolios, their calculation history and the
// companies of personal portfolios.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoActivePortfolio = errors.New("no active portfolio")
	ErrNotPersonal       = errors.New("companies can only be added to personal portfolios")
	ErrDuplicate         = errors.New("already exists")
)

const (
	portfolioPrefix = "portfolios/"
	activeKey       = "meta/active"
)

// Service stores portfolios as whole documents, so every change to a
// portfolio, including appending a record, is a single write.
type Service struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	mu    sync.Mutex
}

// NewService creates a portfolio Service. A nil logger or clock is replaced
// by a no-op logger and time.Now.
func NewService(st store.Store, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, log: logger, now: now}
}

func portfolioKey(id uuid.UUID) string {
	return portfolioPrefix + id.String()
}

// Create adds a portfolio. The first portfolio becomes active.
func (s *Service) Create(ctx context.Context, kind model.PortfolioKind, name, company string) (model.Portfolio, error) {
	name, company = strings.TrimSpace(name), strings.TrimSpace(company)
	if !kind.Valid() {
		return model.Portfolio{}, fmt.Errorf("unknown portfolio kind %q", kind)
	}
	if name == "" {
		return model.Portfolio{}, errors.New("portfolio name must not be empty")
	}
	if kind == model.PortfolioPersonal && company != "" {
		return model.Portfolio{}, errors.New("company name is only used by business portfolios")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.Portfolio{
		ID:          uuid.New(),
		Kind:        kind,
		Name:        name,
		CompanyName: company,
		CreatedAt:   s.now().UTC(),
		Records:     []model.CalculationRecord{},
	}
	if err := s.put(ctx, p); err != nil {
		return model.Portfolio{}, err
	}
	if _, err := s.activeID(ctx); errors.Is(err, ErrNoActivePortfolio) {
		if err := s.store.Save(ctx, activeKey, []byte(p.ID.String())); err != nil {
			return model.Portfolio{}, fmt.Errorf("activating portfolio: %w", err)
		}
	}
	s.log.Info("portfolio created", zap.String("portfolio", p.ID.String()), zap.String("kind", string(kind)))
	return p, nil
}

// List returns all portfolios, oldest first.
func (s *Service) List(ctx context.Context) ([]model.Portfolio, error) {
	keys, err := s.store.Keys(ctx, portfolioPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing portfolios: %w", err)
	}
	out := make([]model.Portfolio, 0, len(keys))
	for _, k := range keys {
		var p model.Portfolio
		if err := store.LoadJSON(ctx, s.store, k, &p); err != nil {
			return nil, fmt.Errorf("loading portfolio: %w", err)
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Get loads one portfolio.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Portfolio, error) {
	var p model.Portfolio
	err := store.LoadJSON(ctx, s.store, portfolioKey(id), &p)
	if errors.Is(err, store.ErrNotFound) {
		return model.Portfolio{}, fmt.Errorf("portfolio %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// Find resolves a portfolio by ID, ID prefix or case-insensitive name.
func (s *Service) Find(ctx context.Context, ref string) (model.Portfolio, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.Get(ctx, id)
	}
	all, err := s.List(ctx)
	if err != nil {
		return model.Portfolio{}, err
	}
	var matches []model.Portfolio
	for _, p := range all {
		if strings.EqualFold(p.Name, ref) || strings.EqualFold(p.CompanyName, ref) ||
			(len(ref) >= 4 && strings.HasPrefix(p.ID.String(), strings.ToLower(ref))) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return model.Portfolio{}, fmt.Errorf("portfolio %q: %w", ref, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Portfolio{}, fmt.Errorf("%q matches %d portfolios", ref, len(matches))
	}
}

// Activate makes id the active portfolio.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Save(ctx, activeKey, []byte(id.String())); err != nil {
		return fmt.Errorf("activating portfolio: %w", err)
	}
	return nil
}

// Active returns the active portfolio.
func (s *Service) Active(ctx context.Context) (model.Portfolio, error) {
	id, err := s.activeID(ctx)
	if err != nil {
		return model.Portfolio{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) activeID(ctx context.Context) (uuid.UUID, error) {
	raw, err := s.store.Load(ctx, activeKey)
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, ErrNoActivePortfolio
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading active portfolio: %w", err)
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("active portfolio id %q: %w", raw, err)
	}
	return id, nil
}

func (s *Service) put(ctx context.Context, p model.Portfolio) error {
	if err := store.SaveJSON(ctx, s.store, portfolioKey(p.ID), p); err != nil {
		return fmt.Errorf("saving portfolio %s: %w", p.ID, err)
	}
	return nil
}

// update loads a portfolio, applies fn and writes it back in one Save.
// Nothing is written if fn fails.
func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(p *model.Portfolio) error) (model.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Get(ctx, id)
	if err != nil {
		return model.Portfolio{}, err
	}
	if err := fn(&p); err != nil {
		return model.Portfolio{}, err
	}
	if err := s.put(ctx, p); err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}
