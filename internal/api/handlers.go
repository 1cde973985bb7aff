package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/hawl"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/nisab"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/session"
)

const dateFormat = "2006-01-02"

type itemRequest struct {
	Name             string           `json:"name"`
	Amount           decimal.Decimal  `json:"amount"`
	Currency         string           `json:"currency"`
	MarketValue      *decimal.Decimal `json:"market_value,omitempty"`
	Category         model.Category   `json:"category,omitempty"`
	IslamicFinancing bool             `json:"islamic_financing,omitempty"`
	Answer           model.Answer     `json:"answer,omitempty"`
}

type calculateRequest struct {
	Kind          model.PortfolioKind `json:"kind"`
	BaseCurrency  string              `json:"base_currency"`
	Calendar      model.Calendar      `json:"calendar"`
	NisabStandard model.NisabStandard `json:"nisab_standard"`
	PricePerGram  *decimal.Decimal    `json:"price_per_gram,omitempty"` // in BaseCurrency
	HawlStart     string              `json:"hawl_start,omitempty"`
	Items         []itemRequest       `json:"items"`
}

type calculateResponse struct {
	session.Summary
	Items      []model.CategoryEntry `json:"items"`
	Price      *rates.Quote          `json:"price,omitempty"`
	Advisories []rates.Advisory      `json:"advisories,omitempty"`
}

// defaultPrice converts the configured pinned price into base. It returns nil
// when no price is pinned.
func (s *Server) defaultPrice(ctx context.Context, base string) (*decimal.Decimal, error) {
	pinned := s.defaults.PricePerGram
	if pinned == nil {
		return nil, nil
	}
	from := s.defaults.PriceCurrency
	if from == "" {
		from = s.defaults.BaseCurrency
	}
	if rates.NormalizeCode(from) == rates.NormalizeCode(base) {
		return pinned, nil
	}
	rate, _, err := s.provider.ExchangeRate(ctx, from, base)
	if err != nil {
		return nil, fmt.Errorf("converting pinned price: %w", err)
	}
	p := pinned.Mul(rate)
	return &p, nil
}

func (s *Server) calculateHandler(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.Kind == "" {
		req.Kind = model.PortfolioPersonal
	}
	if req.BaseCurrency == "" {
		req.BaseCurrency = s.defaults.BaseCurrency
	}
	if req.Calendar == "" {
		req.Calendar = s.defaults.Calendar
	}
	if req.NisabStandard == "" {
		req.NisabStandard = s.defaults.NisabStandard
	}
	start := s.defaults.HawlStart
	if req.HawlStart != "" {
		t, err := time.Parse(dateFormat, req.HawlStart)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: hawl_start: %v", errBadRequest, err))
			return
		}
		start = &t
	}

	ctx := r.Context()
	pinned := req.PricePerGram
	if pinned == nil {
		p, err := s.defaultPrice(ctx, req.BaseCurrency)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		pinned = p
	}
	cfg, quote, err := nisab.Resolve(ctx, s.provider, req.NisabStandard, req.Calendar, req.BaseCurrency, pinned)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sess, err := session.New(uuid.Nil, req.Kind, req.BaseCurrency, cfg, session.Deps{
		Rates:  s.provider,
		Logger: s.logger,
		Now:    s.now,
	})
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sess.SetHawlStart(start)

	for i, it := range req.Items {
		e, err := sess.Add(ctx, session.ItemInput{
			Name:             it.Name,
			Amount:           it.Amount,
			Currency:         it.Currency,
			MarketValue:      it.MarketValue,
			Category:         it.Category,
			IslamicFinancing: it.IslamicFinancing,
		})
		if err != nil {
			s.writeError(w, fmt.Errorf("items[%d]: %w", i, err))
			return
		}
		if it.Answer != "" {
			if _, err := sess.AnswerItem(e.ID, it.Answer, nil); err != nil {
				s.writeError(w, fmt.Errorf("items[%d]: %w", i, err))
				return
			}
		}
	}

	sum, err := sess.Calculate()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{
		Summary:    sum,
		Items:      sess.Entries(),
		Price:      quote,
		Advisories: s.provider.Advisories(),
	})
}

type hawlResponse struct {
	model.HawlInfo
	DaysRemaining int     `json:"days_remaining"`
	Progress      float64 `json:"progress"`
	Complete      bool    `json:"complete"`
}

func (s *Server) hawlHandler(w http.ResponseWriter, r *http.Request) {
	start := s.defaults.HawlStart
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(dateFormat, v)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: start: %v", errBadRequest, err))
			return
		}
		start = &t
	}
	if start == nil {
		s.writeError(w, fmt.Errorf("%w: no hawl start configured", errBadRequest))
		return
	}
	now := s.now()
	writeJSON(w, http.StatusOK, hawlResponse{
		HawlInfo:      hawl.Info(*start, now),
		DaysRemaining: hawl.DaysUntil(*start, now),
		Progress:      hawl.Progress(*start, now),
		Complete:      hawl.Completed(*start, now),
	})
}

type priceResponse struct {
	rates.Quote
	Advisories []rates.Advisory `json:"advisories,omitempty"`
}

func (s *Server) priceHandler(w http.ResponseWriter, r *http.Request) {
	metal := model.NisabStandard(strings.ToLower(mux.Vars(r)["metal"]))
	if !metal.Valid() {
		s.writeError(w, fmt.Errorf("%w: unknown metal %q", errBadRequest, metal))
		return
	}
	cur := r.URL.Query().Get("currency")
	if cur == "" {
		cur = s.defaults.BaseCurrency
	}
	q, err := s.provider.MetalPrice(r.Context(), metal, rates.NormalizeCode(cur))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{Quote: q, Advisories: s.provider.Advisories()})
}

type portfolioSummary struct {
	ID          uuid.UUID           `json:"id"`
	Kind        model.PortfolioKind `json:"kind"`
	Name        string              `json:"name"`
	CompanyName string              `json:"company_name,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	Records     int                 `json:"records"`
	Companies   []model.Company     `json:"companies,omitempty"`
}

func (s *Server) listPortfoliosHandler(w http.ResponseWriter, r *http.Request) {
	if s.portfolios == nil {
		writeJSON(w, http.StatusOK, []portfolioSummary{})
		return
	}
	all, err := s.portfolios.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]portfolioSummary, len(all))
	for i, p := range all {
		out[i] = portfolioSummary{
			ID:          p.ID,
			Kind:        p.Kind,
			Name:        p.Name,
			CompanyName: p.CompanyName,
			CreatedAt:   p.CreatedAt,
			Records:     len(p.Records),
			Companies:   p.Companies,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	if s.portfolios == nil {
		http.NotFound(w, r)
		return
	}
	p, err := s.portfolios.Find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.portfolios.Records(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []model.CalculationRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
