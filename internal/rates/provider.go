package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/model"
)

// DefaultTimeout bounds every live lookup.
const DefaultTimeout = 5 * time.Second

// Quote is a metal price per gram.
type Quote struct {
	Metal       model.NisabStandard `json:"metal"`
	Price       decimal.Decimal     `json:"price"`
	Currency    string              `json:"currency"`
	AsOf        time.Time           `json:"as_of"`
	SourceCount int                 `json:"source_count"`
	Provenance  model.Provenance    `json:"provenance"`
}

// Advisory is a non-fatal notice that a live lookup failed and a fallback
// value was used instead.
type Advisory struct {
	Subject    string           `json:"subject"`
	Provenance model.Provenance `json:"provenance"`
	Reason     string           `json:"reason"`
	At         time.Time        `json:"at"`
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s: using %s value (%s)", a.Subject, a.Provenance, a.Reason)
}

type cachedRate struct {
	rate decimal.Decimal
	at   time.Time
}

// Provider answers rate and price questions. It never fails for a currency
// the static table knows: live failures fall back to the last live value,
// then to the static table, and leave an Advisory behind.
type Provider struct {
	static  *StaticTable
	fx      ExchangeSource
	metals  []MetalSource
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu         sync.Mutex
	lastRates  map[string]cachedRate
	lastQuotes map[string]Quote
	advisories []Advisory
}

// Option configures a Provider.
type Option func(*Provider)

// WithExchangeSource sets the live exchange-rate source.
func WithExchangeSource(src ExchangeSource) Option {
	return func(p *Provider) { p.fx = src }
}

// WithMetalSources sets the live metal price sources; their answers are averaged.
func WithMetalSources(srcs ...MetalSource) Option {
	return func(p *Provider) { p.metals = append(p.metals, srcs...) }
}

// WithTimeout bounds each live call.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider creates a Provider over a static fallback table.
func NewProvider(static *StaticTable, opts ...Option) *Provider {
	p := &Provider{
		static:     static,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
		now:        time.Now,
		lastRates:  make(map[string]cachedRate),
		lastQuotes: make(map[string]Quote),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Static returns the fallback table.
func (p *Provider) Static() *StaticTable {
	return p.static
}

// Known reports whether code is a supported currency.
func (p *Provider) Known(code string) bool {
	return p.static.Known(code)
}

// ExchangeRate returns the rate from -> to and where it came from. The only
// error is ErrUnknownCurrency.
func (p *Provider) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, model.Provenance, error) {
	from, to = NormalizeCode(from), NormalizeCode(to)
	if !p.static.Known(from) {
		return decimal.Zero, "", fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	if !p.static.Known(to) {
		return decimal.Zero, "", fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	if from == to {
		return decimal.NewFromInt(1), model.ProvenanceIdentity, nil
	}

	key := from + "->" + to
	if p.fx != nil {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		rate, err := p.fx.ExchangeRate(callCtx, from, to)
		cancel()
		if err == nil {
			p.mu.Lock()
			p.lastRates[key] = cachedRate{rate: rate, at: p.now()}
			p.mu.Unlock()
			return rate, model.ProvenanceLive, nil
		}
		p.logger.Warn("live exchange rate failed, falling back", zap.String("pair", key), zap.Error(err))

		p.mu.Lock()
		cached, ok := p.lastRates[key]
		p.mu.Unlock()
		if ok {
			p.advise(key, model.ProvenanceCached, err)
			return cached.rate, model.ProvenanceCached, nil
		}
		p.advise(key, model.ProvenanceStatic, err)
	}

	rate, err := p.static.Rate(from, to)
	if err != nil {
		return decimal.Zero, "", err
	}
	return rate, model.ProvenanceStatic, nil
}

// GoldPricePerGram returns the gold price per gram in currency.
func (p *Provider) GoldPricePerGram(ctx context.Context, currency string) (Quote, error) {
	return p.MetalPrice(ctx, model.StandardGold, currency)
}

// MetalPrice queries every live metal source concurrently and averages the
// successful answers.
func (p *Provider) MetalPrice(ctx context.Context, metal model.NisabStandard, currency string) (Quote, error) {
	currency = NormalizeCode(currency)
	if !p.static.Known(currency) {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
	key := string(metal) + "/" + currency

	if len(p.metals) > 0 {
		prices, errs := p.queryMetals(ctx, metal, currency)
		if len(prices) > 0 {
			sum := decimal.Zero
			for _, price := range prices {
				sum = sum.Add(price)
			}
			q := Quote{
				Metal:       metal,
				Price:       sum.Div(decimal.NewFromInt(int64(len(prices)))),
				Currency:    currency,
				AsOf:        p.now(),
				SourceCount: len(prices),
				Provenance:  model.ProvenanceLive,
			}
			p.mu.Lock()
			p.lastQuotes[key] = q
			p.mu.Unlock()
			return q, nil
		}

		reason := fmt.Errorf("all %d metal sources failed: %v", len(p.metals), errs[0])
		p.logger.Warn("live metal price failed, falling back", zap.String("quote", key), zap.Error(reason))

		p.mu.Lock()
		cached, ok := p.lastQuotes[key]
		p.mu.Unlock()
		if ok {
			p.advise(key, model.ProvenanceCached, reason)
			cached.Provenance = model.ProvenanceCached
			return cached, nil
		}
		p.advise(key, model.ProvenanceStatic, reason)
	}

	price, err := p.static.MetalPrice(metal, currency)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Metal:      metal,
		Price:      price,
		Currency:   currency,
		AsOf:       p.now(),
		Provenance: model.ProvenanceStatic,
	}, nil
}

func (p *Provider) queryMetals(ctx context.Context, metal model.NisabStandard, currency string) ([]decimal.Decimal, []error) {
	type answer struct {
		price decimal.Decimal
		err   error
	}
	answers := make([]answer, len(p.metals))

	var wg sync.WaitGroup
	for i, src := range p.metals {
		wg.Add(1)
		go func(i int, src MetalSource) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			price, err := src.PricePerGram(callCtx, metal, currency)
			if err != nil {
				err = fmt.Errorf("%s: %w", src.Name(), err)
			}
			answers[i] = answer{price: price, err: err}
		}(i, src)
	}
	wg.Wait()

	var prices []decimal.Decimal
	var errs []error
	for _, a := range answers {
		if a.err != nil {
			errs = append(errs, a.err)
			continue
		}
		prices = append(prices, a.price)
	}
	return prices, errs
}

func (p *Provider) advise(subject string, prov model.Provenance, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advisories = append(p.advisories, Advisory{
		Subject:    subject,
		Provenance: prov,
		Reason:     err.Error(),
		At:         p.now(),
	})
}

// Advisories returns the fallback notices collected so far and clears them.
func (p *Provider) Advisories() []Advisory {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.advisories
	p.advisories = nil
	return out
}

// Refresh warms the cache for both metals in currency. Failures are already
// reported as advisories, so only an unknown currency is returned.
func (p *Provider) Refresh(ctx context.Context, currency string) ([]Quote, error) {
	var quotes []Quote
	for _, metal := range []model.NisabStandard{model.StandardGold, model.StandardSilver} {
		q, err := p.MetalPrice(ctx, metal, currency)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
