// Package session holds one user's in-progress calculation: the entered items,
// base currency, threshold inputs and clarification progress.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/classify"
	"github.com/cleared-dev/nisab/internal/currency"
	"github.com/cleared-dev/nisab/internal/hawl"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/nisab"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/zakat"
)

var (
	ErrNotFound             = errors.New("line item not found")
	ErrLockedClassification = errors.New("conventional liabilities are never deductible")
	ErrNoQuestion           = errors.New("line item has no clarification question")
)

// Rates is what a session needs from the rate provider.
type Rates interface {
	currency.RateProvider
}

// Deps are the collaborators of a session.
type Deps struct {
	Rates      Rates
	Classifier *classify.Classifier // defaults to classify.Default()
	Logger     *zap.Logger
	Now        func() time.Time
}

// Session is a single calculation in progress. It is not safe for concurrent
// use; one user edits one session at a time.
type Session struct {
	ID           uuid.UUID
	PortfolioID  uuid.UUID
	Kind         model.PortfolioKind
	BaseCurrency string
	Nisab        model.NisabConfig
	HawlStart    *time.Time
	CompanyID    *uuid.UUID // set when calculating for a company of a personal portfolio

	entries []*model.CategoryEntry
	pending []uuid.UUID
	index   int

	rates      Rates
	normalizer *currency.Normalizer
	classifier *classify.Classifier
	log        *zap.Logger
	now        func() time.Time
}

// New creates an empty session.
func New(portfolioID uuid.UUID, kind model.PortfolioKind, base string, cfg model.NisabConfig, deps Deps) (*Session, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown portfolio kind %q", kind)
	}
	base = rates.NormalizeCode(base)
	if !deps.Rates.Known(base) {
		return nil, fmt.Errorf("base currency: %w: %s", rates.ErrUnknownCurrency, base)
	}
	if cfg.PriceCurrency == "" {
		cfg.PriceCurrency = base
	}
	s := &Session{
		ID:           uuid.New(),
		PortfolioID:  portfolioID,
		Kind:         kind,
		BaseCurrency: base,
		Nisab:        cfg,
	}
	s.wire(deps)
	return s, nil
}

func (s *Session) wire(deps Deps) {
	s.rates = deps.Rates
	s.normalizer = currency.NewNormalizer(deps.Rates)
	s.classifier = deps.Classifier
	if s.classifier == nil {
		s.classifier = classify.Default()
	}
	s.log = deps.Logger
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.now = deps.Now
	if s.now == nil {
		s.now = time.Now
	}
}

// Entries returns copies of all entries in entry order.
func (s *Session) Entries() []model.CategoryEntry {
	out := make([]model.CategoryEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

// Items returns copies of the line items in entry order.
func (s *Session) Items() []model.LineItem {
	out := make([]model.LineItem, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.LineItem
	}
	return out
}

// Get returns a copy of one entry.
func (s *Session) Get(id uuid.UUID) (model.CategoryEntry, error) {
	e, err := s.find(id)
	if err != nil {
		return model.CategoryEntry{}, err
	}
	return *e, nil
}

// Find looks an entry up by ID, ID prefix or case-insensitive name.
func (s *Session) Find(ref string) (model.CategoryEntry, error) {
	ref = strings.TrimSpace(ref)
	var matches []*model.CategoryEntry
	for _, e := range s.entries {
		if e.ID.String() == ref || strings.EqualFold(e.Name, ref) {
			return *e, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(e.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 1 {
		return *matches[0], nil
	}
	if len(matches) > 1 {
		return model.CategoryEntry{}, fmt.Errorf("%q matches %d items", ref, len(matches))
	}
	return model.CategoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func (s *Session) find(id uuid.UUID) (*model.CategoryEntry, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Session) itemPtrs() []*model.LineItem {
	out := make([]*model.LineItem, len(s.entries))
	for i, e := range s.entries {
		out[i] = &e.LineItem
	}
	return out
}

// Add validates, converts and classifies a new entry.
func (s *Session) Add(ctx context.Context, in ItemInput) (model.CategoryEntry, error) {
	if err := joinValidation(ValidateInput(in, s.Kind, s.rates, "")); err != nil {
		return model.CategoryEntry{}, err
	}

	e := &model.CategoryEntry{
		LineItem: model.LineItem{
			ID:       uuid.New(),
			Name:     strings.TrimSpace(in.Name),
			Amount:   in.Amount,
			Currency: rates.NormalizeCode(in.Currency),
		},
		Category:           in.Category,
		IsIslamicFinancing: in.IslamicFinancing,
	}
	if in.MarketValue != nil {
		mv := *in.MarketValue
		e.MarketValue = &mv
	}
	if err := s.normalizer.Normalize(ctx, &e.LineItem, s.BaseCurrency); err != nil {
		return model.CategoryEntry{}, err
	}
	s.classify(e)

	s.entries = append(s.entries, e)
	s.log.Debug("item added",
		zap.String("item", e.ID.String()),
		zap.String("name", e.Name),
		zap.String("classification", string(e.Classification)))
	return *e, nil
}

// AddTemplates adds the common starter items for the session's kind with a
// zero amount in the base currency. Items already present by name are skipped.
func (s *Session) AddTemplates(ctx context.Context) ([]model.CategoryEntry, error) {
	var added []model.CategoryEntry
	for _, tmpl := range classify.CommonItems(s.Kind) {
		if _, err := s.Find(tmpl.Name); err == nil {
			continue
		}
		e, err := s.Add(ctx, ItemInput{
			Name:     tmpl.Name,
			Amount:   decimal.Zero,
			Currency: s.BaseCurrency,
			Category: tmpl.Category,
		})
		if err != nil {
			return added, fmt.Errorf("adding template %q: %w", tmpl.Name, err)
		}
		added = append(added, e)
	}
	return added, nil
}

// Edit holds the fields to change; nil fields are left alone.
type Edit struct {
	Name             *string
	Amount           *decimal.Decimal
	Currency         *string
	MarketValue      *decimal.Decimal
	ClearMarketValue bool
	Category         *model.Category
	IslamicFinancing *bool
}

// Edit changes an entry. Amount and currency edits reconvert from the new
// pair; changing what the item is (name, category, financing) reclassifies it.
func (s *Session) Edit(ctx context.Context, id uuid.UUID, ed Edit) (model.CategoryEntry, error) {
	e, err := s.find(id)
	if err != nil {
		return model.CategoryEntry{}, err
	}

	in := ItemInput{
		Name:             e.Name,
		Amount:           e.Amount,
		Currency:         e.Currency,
		MarketValue:      e.MarketValue,
		Category:         e.Category,
		IslamicFinancing: e.IsIslamicFinancing,
	}
	reclassify := false
	if ed.Name != nil && strings.TrimSpace(*ed.Name) != e.Name {
		in.Name = *ed.Name
		reclassify = true
	}
	if ed.Amount != nil {
		in.Amount = *ed.Amount
	}
	if ed.Currency != nil {
		in.Currency = *ed.Currency
	}
	if ed.ClearMarketValue {
		in.MarketValue = nil
	}
	if ed.MarketValue != nil {
		in.MarketValue = ed.MarketValue
	}
	if ed.Category != nil && *ed.Category != e.Category {
		in.Category = *ed.Category
		reclassify = true
	}
	if ed.IslamicFinancing != nil && *ed.IslamicFinancing != e.IsIslamicFinancing {
		in.IslamicFinancing = *ed.IslamicFinancing
		reclassify = true
	}
	if err := joinValidation(ValidateInput(in, s.Kind, s.rates, e.ID.String())); err != nil {
		return model.CategoryEntry{}, err
	}

	next := *e
	next.Name = strings.TrimSpace(in.Name)
	next.Amount = in.Amount
	next.Currency = rates.NormalizeCode(in.Currency)
	next.MarketValue = nil
	if in.MarketValue != nil {
		mv := *in.MarketValue
		next.MarketValue = &mv
	}
	next.Category = in.Category
	next.IsIslamicFinancing = in.IslamicFinancing
	if err := s.normalizer.Normalize(ctx, &next.LineItem, s.BaseCurrency); err != nil {
		return model.CategoryEntry{}, err
	}
	if reclassify {
		s.classify(&next)
	}

	*e = next
	return next, nil
}

// Remove deletes an entry.
func (s *Session) Remove(id uuid.UUID) error {
	i := slices.IndexFunc(s.entries, func(e *model.CategoryEntry) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return nil
}

// Reset removes every entry and clarification progress.
func (s *Session) Reset() {
	s.entries = nil
	s.pending = nil
	s.index = 0
}

// Renormalize switches the base currency and recomputes every converted
// amount and the threshold price from their original values. Nothing changes
// if any conversion fails.
func (s *Session) Renormalize(ctx context.Context, base string) error {
	base = rates.NormalizeCode(base)
	if !s.rates.Known(base) {
		return fmt.Errorf("%w: %s", rates.ErrUnknownCurrency, base)
	}

	cfg := s.Nisab
	if cfg.PricePerGram.IsPositive() && cfg.PriceCurrency != "" {
		conv, err := s.normalizer.Convert(ctx, cfg.PricePerGram, cfg.PriceCurrency, base)
		if err != nil {
			return fmt.Errorf("converting nisab price: %w", err)
		}
		cfg.PricePerGram = conv.Amount
	}
	cfg.PriceCurrency = base

	if err := s.normalizer.Renormalize(ctx, s.itemPtrs(), base); err != nil {
		return err
	}
	s.log.Info("renormalized",
		zap.String("from", s.BaseCurrency),
		zap.String("to", base),
		zap.Int("items", len(s.entries)))
	s.BaseCurrency = base
	s.Nisab = cfg
	return nil
}

// SetNisab replaces the threshold inputs after checking they produce a
// usable threshold in the base currency.
func (s *Session) SetNisab(ctx context.Context, cfg model.NisabConfig) error {
	if cfg.PriceCurrency == "" {
		cfg.PriceCurrency = s.BaseCurrency
	}
	if !cfg.Calendar.Valid() {
		return fmt.Errorf("unknown calendar %q", cfg.Calendar)
	}
	if rates.NormalizeCode(cfg.PriceCurrency) != s.BaseCurrency && cfg.PricePerGram.IsPositive() {
		conv, err := s.normalizer.Convert(ctx, cfg.PricePerGram, cfg.PriceCurrency, s.BaseCurrency)
		if err != nil {
			return fmt.Errorf("converting nisab price: %w", err)
		}
		cfg.PricePerGram = conv.Amount
		cfg.PriceCurrency = s.BaseCurrency
	}
	if _, err := nisab.Threshold(cfg, s.BaseCurrency); err != nil {
		return err
	}
	s.Nisab = cfg
	return nil
}

// SetHawlStart sets or clears the holding-period start.
func (s *Session) SetHawlStart(start *time.Time) {
	if start == nil {
		s.HawlStart = nil
		return
	}
	t := *start
	s.HawlStart = &t
}

func (s *Session) classify(e *model.CategoryEntry) {
	var res classify.Result
	if s.Kind == model.PortfolioBusiness {
		res = s.classifier.ClassifyEntry(e.Name, e.Category, e.IsIslamicFinancing)
	} else {
		res = s.classifier.Classify(e.Name)
	}
	classify.Apply(&e.LineItem, res)
}

// Summary is a calculation over the current entries.
type Summary struct {
	zakat.Result
	Currency      string          `json:"currency"`
	HawlComplete  bool            `json:"hawl_complete"`
	Hawl          *model.HawlInfo `json:"hawl,omitempty"`
	DaysUntilHawl int             `json:"days_until_hawl,omitempty"`
}

// Calculate computes totals and zakat due without blocking on unresolved
// items; they are reported in Unresolved. Zakat is zero until the first full
// lunar year since the hawl start has passed.
func (s *Session) Calculate() (Summary, error) {
	threshold, err := nisab.Threshold(s.Nisab, s.BaseCurrency)
	if err != nil {
		return Summary{}, fmt.Errorf("computing nisab: %w", err)
	}
	res, err := zakat.Calculate(s.Items(), threshold, s.Nisab.Calendar)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Result: res, Currency: s.BaseCurrency, HawlComplete: true}
	if s.HawlStart != nil {
		now := s.now()
		info := hawl.Info(*s.HawlStart, now)
		sum.Hawl = &info
		sum.DaysUntilHawl = hawl.DaysUntil(*s.HawlStart, now)
		if !hawl.Completed(*s.HawlStart, now) {
			sum.HawlComplete = false
			sum.Due = decimal.Zero
		}
	}
	return sum, nil
}

// Finalize snapshots the calculation into a record. It fails with an
// *UnresolvedError while any item still needs clarification.
func (s *Session) Finalize(entityName string) (model.CalculationRecord, error) {
	sum, err := s.Calculate()
	if err != nil {
		return model.CalculationRecord{}, err
	}
	if sum.Unresolved > 0 {
		var items []model.LineItem
		for _, it := range s.Items() {
			if it.Classification == model.NeedsClarification {
				items = append(items, it)
			}
		}
		return model.CalculationRecord{}, &UnresolvedError{Count: sum.Unresolved, Items: items}
	}

	rec := model.CalculationRecord{
		ID:              uuid.New(),
		Date:            s.now().UTC(),
		EntityName:      entityName,
		TotalAssets:     sum.Zakatable,
		TotalDeductions: sum.Deductible,
		NetWealth:       sum.NetWealth,
		NisabThreshold:  sum.Threshold,
		Rate:            sum.Rate,
		ZakatDue:        sum.Due,
		Currency:        s.BaseCurrency,
		Calendar:        s.Nisab.Calendar,
		MeetsNisab:      sum.MeetsNisab,
		HawlComplete:    sum.HawlComplete,
		LineItems:       s.Entries(),
	}
	if s.CompanyID != nil {
		cid := *s.CompanyID
		rec.CompanyID = &cid
	}
	s.log.Info("calculation finalized",
		zap.String("record", rec.ID.String()),
		zap.String("net_wealth", rec.NetWealth.StringFixed(2)),
		zap.String("zakat_due", rec.ZakatDue.StringFixed(2)),
		zap.String("currency", rec.Currency))
	return rec, nil
}
