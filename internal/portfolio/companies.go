package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cleared-dev/nisab/internal/model"
)

// AddCompany registers a lightweight company under a personal portfolio.
func (s *Service) AddCompany(ctx context.Context, portfolioID uuid.UUID, name string) (model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Company{}, errors.New("company name must not be empty")
	}
	var c model.Company
	_, err := s.update(ctx, portfolioID, func(p *model.Portfolio) error {
		if p.Kind != model.PortfolioPersonal {
			return ErrNotPersonal
		}
		if slices.ContainsFunc(p.Companies, func(x model.Company) bool { return strings.EqualFold(x.Name, name) }) {
			return fmt.Errorf("company %q: %w", name, ErrDuplicate)
		}
		c = model.Company{ID: uuid.New(), Name: name, CreatedAt: s.now().UTC()}
		p.Companies = append(p.Companies, c)
		return nil
	})
	return c, err
}

// Companies lists the companies of a portfolio.
func (s *Service) Companies(ctx context.Context, portfolioID uuid.UUID) ([]model.Company, error) {
	p, err := s.Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return p.Companies, nil
}

// FindCompany resolves a company by ID, ID prefix or name.
func FindCompany(p model.Portfolio, ref string) (model.Company, error) {
	ref = strings.TrimSpace(ref)
	for _, c := range p.Companies {
		if c.ID.String() == strings.ToLower(ref) || strings.EqualFold(c.Name, ref) ||
			(len(ref) >= 4 && strings.HasPrefix(c.ID.String(), strings.ToLower(ref))) {
			return c, nil
		}
	}
	return model.Company{}, fmt.Errorf("company %q: %w", ref, ErrNotFound)
}

// RemoveCompany deletes a company. Records already saved for it keep their
// company id.
func (s *Service) RemoveCompany(ctx context.Context, portfolioID uuid.UUID, ref string) (model.Company, error) {
	var removed model.Company
	_, err := s.update(ctx, portfolioID, func(p *model.Portfolio) error {
		c, err := FindCompany(*p, ref)
		if err != nil {
			return err
		}
		removed = c
		p.Companies = slices.DeleteFunc(p.Companies, func(x model.Company) bool { return x.ID == c.ID })
		return nil
	})
	return removed, err
}
