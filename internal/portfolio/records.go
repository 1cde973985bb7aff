package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/model"
)

// AppendRecord adds a finalized record to the portfolio's history.
func (s *Service) AppendRecord(ctx context.Context, portfolioID uuid.UUID, rec model.CalculationRecord) error {
	if rec.ID == uuid.Nil {
		return errors.New("record has no id")
	}
	_, err := s.update(ctx, portfolioID, func(p *model.Portfolio) error {
		if slices.ContainsFunc(p.Records, func(r model.CalculationRecord) bool { return r.ID == rec.ID }) {
			return fmt.Errorf("record %s: %w", rec.ID, ErrDuplicate)
		}
		if rec.CompanyID != nil && !slices.ContainsFunc(p.Companies, func(c model.Company) bool { return c.ID == *rec.CompanyID }) {
			return fmt.Errorf("company %s: %w", rec.CompanyID, ErrNotFound)
		}
		p.Records = append(p.Records, rec)
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	s.log.Info("record saved",
		zap.String("portfolio", portfolioID.String()),
		zap.String("record", rec.ID.String()),
		zap.String("zakat_due", rec.ZakatDue.StringFixed(2)))
	return nil
}

// Records returns a portfolio's history, oldest first.
func (s *Service) Records(ctx context.Context, portfolioID uuid.UUID) ([]model.CalculationRecord, error) {
	p, err := s.Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return p.Records, nil
}

func findRecord(p *model.Portfolio, ref string) (int, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	found := -1
	for i, r := range p.Records {
		id := r.ID.String()
		if id == ref {
			return i, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(id, ref) {
			if found >= 0 {
				return -1, fmt.Errorf("%q matches more than one record", ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("record %q: %w", ref, ErrNotFound)
	}
	return found, nil
}

// Record finds a record by ID or ID prefix.
func (s *Service) Record(ctx context.Context, portfolioID uuid.UUID, ref string) (model.CalculationRecord, error) {
	p, err := s.Get(ctx, portfolioID)
	if err != nil {
		return model.CalculationRecord{}, err
	}
	i, err := findRecord(&p, ref)
	if err != nil {
		return model.CalculationRecord{}, err
	}
	return p.Records[i], nil
}

// MarkPaid sets the paid flag, the only field that changes after saving.
func (s *Service) MarkPaid(ctx context.Context, portfolioID uuid.UUID, ref string, paid bool) (model.CalculationRecord, error) {
	var out model.CalculationRecord
	_, err := s.update(ctx, portfolioID, func(p *model.Portfolio) error {
		i, err := findRecord(p, ref)
		if err != nil {
			return err
		}
		r := &p.Records[i]
		r.Paid = paid
		r.PaidAt = nil
		if paid {
			at := s.now().UTC()
			r.PaidAt = &at
		}
		out = *r
		return nil
	})
	return out, err
}

// DeleteRecord removes a record from the history.
func (s *Service) DeleteRecord(ctx context.Context, portfolioID uuid.UUID, ref string) (model.CalculationRecord, error) {
	var out model.CalculationRecord
	_, err := s.update(ctx, portfolioID, func(p *model.Portfolio) error {
		i, err := findRecord(p, ref)
		if err != nil {
			return err
		}
		out = p.Records[i]
		p.Records = slices.Delete(p.Records, i, i+1)
		return nil
	})
	if err == nil {
		s.log.Info("record deleted", zap.String("record", out.ID.String()))
	}
	return out, err
}
