package rates

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

// ExchangeSource fetches live exchange rates.
type ExchangeSource interface {
	ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// MetalSource fetches a live metal price per gram.
type MetalSource interface {
	Name() string
	PricePerGram(ctx context.Context, metal model.NisabStandard, currency string) (decimal.Decimal, error)
}

func newRestyClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return client
}

// HTTPExchangeSource queries a `/latest?base=X&symbols=Y` style endpoint.
type HTTPExchangeSource struct {
	client *resty.Client
}

// NewHTTPExchangeSource builds a resty-backed exchange source.
func NewHTTPExchangeSource(baseURL, apiKey string, timeout time.Duration) *HTTPExchangeSource {
	return &HTTPExchangeSource{client: newRestyClient(baseURL, apiKey, timeout)}
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// ExchangeRate implements ExchangeSource.
func (s *HTTPExchangeSource) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = NormalizeCode(from), NormalizeCode(to)
	result := new(latestResponse)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"base": from, "symbols": to}).
		SetResult(result).
		Get("/latest")
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching %s->%s rate: %w", from, to, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return decimal.Zero, fmt.Errorf("rate api error: status %d", resp.StatusCode())
	}
	rate, ok := result.Rates[to]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate api returned no usable %s rate", to)
	}
	return rate, nil
}

// HTTPMetalSource queries a `/v1/{metal}?currency=X` endpoint returning
// `{"price_per_gram": ..., "currency": ...}`.
type HTTPMetalSource struct {
	name   string
	client *resty.Client
}

// NewHTTPMetalSource builds a resty-backed metal price source.
func NewHTTPMetalSource(baseURL, apiKey string, timeout time.Duration) *HTTPMetalSource {
	return &HTTPMetalSource{name: baseURL, client: newRestyClient(baseURL, apiKey, timeout)}
}

// Name identifies the source in logs and advisories.
func (s *HTTPMetalSource) Name() string { return s.name }

type metalResponse struct {
	PricePerGram decimal.Decimal `json:"price_per_gram"`
	Currency     string          `json:"currency"`
}

// PricePerGram implements MetalSource.
func (s *HTTPMetalSource) PricePerGram(ctx context.Context, metal model.NisabStandard, currency string) (decimal.Decimal, error) {
	currency = NormalizeCode(currency)
	result := new(metalResponse)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("currency", currency).
		SetResult(result).
		Get("/v1/" + string(metal))
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching %s price: %w", metal, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return decimal.Zero, fmt.Errorf("metal api error: status %d", resp.StatusCode())
	}
	if NormalizeCode(result.Currency) != currency {
		return decimal.Zero, fmt.Errorf("metal api answered in %q, wanted %s", result.Currency, currency)
	}
	if !result.PricePerGram.IsPositive() {
		return decimal.Zero, fmt.Errorf("metal api returned non-positive price %s", result.PricePerGram)
	}
	return result.PricePerGram, nil
}
