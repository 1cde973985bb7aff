package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// CacheKey is where the cache is persisted between runs.
const CacheKey = "rates/cache"

// CachedRate is a last-known live exchange rate.
type CachedRate struct {
	Rate decimal.Decimal `json:"rate"`
	At   time.Time       `json:"at"`
}

// Cache holds the provider's last-known live values so they survive a
// restart. Keys are "FROM->TO" for rates and "metal/CUR" for quotes.
type Cache struct {
	Rates  map[string]CachedRate `json:"rates"`
	Quotes map[string]Quote      `json:"quotes"`
}

// Cache returns a copy of the last-known live values.
func (p *Provider) Cache() Cache {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := Cache{
		Rates:  make(map[string]CachedRate, len(p.lastRates)),
		Quotes: make(map[string]Quote, len(p.lastQuotes)),
	}
	for k, v := range p.lastRates {
		c.Rates[k] = CachedRate{Rate: v.rate, At: v.at}
	}
	for k, v := range p.lastQuotes {
		c.Quotes[k] = v
	}
	return c
}

// Seed loads previously saved values. Entries already present from this
// process are newer and are kept.
func (p *Provider) Seed(c Cache) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range c.Rates {
		if _, ok := p.lastRates[k]; !ok {
			p.lastRates[k] = cachedRate{rate: v.Rate, at: v.At}
		}
	}
	for k, v := range c.Quotes {
		if _, ok := p.lastQuotes[k]; !ok {
			p.lastQuotes[k] = v
		}
	}
}
