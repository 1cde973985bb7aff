package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationRecord is an immutable snapshot of a finalized calculation.
// Only Paid and PaidAt change after creation.
type CalculationRecord struct {
	ID              uuid.UUID       `json:"id"`
	Date            time.Time       `json:"date"`
	EntityName      string          `json:"entity_name"`
	CompanyID       *uuid.UUID      `json:"company_id,omitempty"`
	TotalAssets     decimal.Decimal `json:"total_assets"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetWealth       decimal.Decimal `json:"net_wealth"`
	NisabThreshold  decimal.Decimal `json:"nisab_threshold"`
	Rate            decimal.Decimal `json:"rate"`
	ZakatDue        decimal.Decimal `json:"zakat_due"`
	Currency        string          `json:"currency"`
	Calendar        Calendar        `json:"calendar"`
	MeetsNisab      bool            `json:"meets_nisab"`
	HawlComplete    bool            `json:"hawl_complete"`
	LineItems       []CategoryEntry `json:"line_items"`
	Paid            bool            `json:"paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

// PortfolioKind distinguishes individual from business portfolios.
type PortfolioKind string

const (
	PortfolioPersonal PortfolioKind = "personal"
	PortfolioBusiness PortfolioKind = "business"
)

// Valid reports whether k is a known kind.
func (k PortfolioKind) Valid() bool {
	return k == PortfolioPersonal || k == PortfolioBusiness
}

// Portfolio owns the calculation history of one entity.
type Portfolio struct {
	ID          uuid.UUID           `json:"id"`
	Kind        PortfolioKind       `json:"kind"`
	Name        string              `json:"name"`
	CompanyName string              `json:"company_name,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	Records     []CalculationRecord `json:"records"`
	Companies   []Company           `json:"companies,omitempty"` // personal portfolios only
}

// EntityName is the name printed on records: the company for business
// portfolios, the owner otherwise.
func (p Portfolio) EntityName() string {
	if p.Kind == PortfolioBusiness && p.CompanyName != "" {
		return p.CompanyName
	}
	return p.Name
}

// Company is a lightweight business owned by a personal portfolio.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
