package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/store"
)

// FileName is the config file at the workspace root.
const FileName = "nisab.yaml"

// DateFormat is used for hawl_start.
const DateFormat = "2006-01-02"

// Environment overrides.
const (
	EnvRatesAPIKey = "NISAB_RATES_API_KEY"
	EnvMongoURI    = "NISAB_MONGO_URI"
	EnvLogLevel    = "NISAB_LOG_LEVEL"
	EnvServerAddr  = "NISAB_SERVER_ADDR"
)

// Config represents the top-level nisab.yaml configuration.
type Config struct {
	Entity  EntityConfig  `yaml:"entity"`
	Zakat   ZakatConfig   `yaml:"zakat"`
	Rates   RatesConfig   `yaml:"rates"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Git     GitConfig     `yaml:"git"`
	Server  ServerConfig  `yaml:"server"`
}

// EntityConfig identifies who the workspace calculates for.
type EntityConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // personal | business
	Company string `yaml:"company,omitempty"`
}

// ZakatConfig holds the calculation defaults for new sessions.
type ZakatConfig struct {
	BaseCurrency  string `yaml:"base_currency"`
	Calendar      string `yaml:"calendar"`       // islamic | western
	NisabStandard string `yaml:"nisab_standard"` // gold | silver
	HawlStart     string `yaml:"hawl_start,omitempty"`
	// PricePerGram pins the metal price in the base currency instead of
	// asking the rate provider.
	PricePerGram string `yaml:"price_per_gram,omitempty"`
}

// RatesConfig configures the live rate sources and the offline fallback.
type RatesConfig struct {
	FXURL           string   `yaml:"fx_url,omitempty"`
	MetalURLs       []string `yaml:"metal_urls,omitempty"`
	APIKey          string   `yaml:"api_key,omitempty"`
	Timeout         string   `yaml:"timeout"`
	RefreshSchedule string   `yaml:"refresh_schedule"`
	StaticGoldUSD   string   `yaml:"static_gold_usd"`
	StaticSilverUSD string   `yaml:"static_silver_usd"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // sqlite | mongodb | memory
	Path          string `yaml:"path,omitempty"`
	MongoURI      string `yaml:"mongo_uri,omitempty"`
	MongoDatabase string `yaml:"mongo_database,omitempty"`
}

// LoggingConfig controls zap output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// GitConfig controls committing exported records.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// ServerConfig configures `nisab serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a nisab.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(name string, kind model.PortfolioKind, company string) *Config {
	return &Config{
		Entity: EntityConfig{
			Name:    name,
			Type:    string(kind),
			Company: company,
		},
		Zakat: ZakatConfig{
			BaseCurrency:  "USD",
			Calendar:      string(model.CalendarIslamic),
			NisabStandard: string(model.StandardGold),
		},
		Rates: RatesConfig{
			Timeout:         rates.DefaultTimeout.String(),
			RefreshSchedule: "0 6 * * *",
			StaticGoldUSD:   "88.50",
			StaticSilverUSD: "1.05",
		},
		Storage: StorageConfig{
			Driver:        store.DriverSQLite,
			Path:          "data/nisab.db",
			MongoDatabase: "nisab",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Nisab",
			AuthorEmail: "nisab@localhost",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// ApplyEnv overrides secrets and deployment settings from the process
// environment, falling back to envFile (a .env file) when set. A missing
// envFile is not an error.
func ApplyEnv(cfg *Config, envFile string) error {
	vals := map[string]string{}
	if envFile != "" {
		fileVals, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
		maps.Copy(vals, fileVals)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := vals[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvRatesAPIKey); ok {
		cfg.Rates.APIKey = v
	}
	if v, ok := lookup(EnvMongoURI); ok {
		cfg.Storage.MongoURI = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvServerAddr); ok {
		cfg.Server.Addr = v
	}
	return nil
}

// Validate checks enumerated values and parses every typed field.
func (c *Config) Validate() error {
	var errs []error
	if !model.PortfolioKind(c.Entity.Type).Valid() {
		errs = append(errs, fmt.Errorf("entity.type: unknown %q", c.Entity.Type))
	}
	if !model.Calendar(c.Zakat.Calendar).Valid() {
		errs = append(errs, fmt.Errorf("zakat.calendar: unknown %q", c.Zakat.Calendar))
	}
	if !model.NisabStandard(c.Zakat.NisabStandard).Valid() {
		errs = append(errs, fmt.Errorf("zakat.nisab_standard: unknown %q", c.Zakat.NisabStandard))
	}
	if _, err := c.HawlStart(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PinnedPrice(); err != nil {
		errs = append(errs, err)
	}
	static, err := c.StaticTable()
	if err != nil {
		errs = append(errs, err)
	} else if !static.Known(c.Zakat.BaseCurrency) {
		errs = append(errs, fmt.Errorf("zakat.base_currency: %w: %q", rates.ErrUnknownCurrency, c.Zakat.BaseCurrency))
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	switch c.Storage.Driver {
	case store.DriverSQLite, store.DriverMemory:
	case store.DriverMongoDB:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("storage.mongo_uri: required for the mongodb driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// HawlStart parses zakat.hawl_start; nil when unset.
func (c *Config) HawlStart() (*time.Time, error) {
	if c.Zakat.HawlStart == "" {
		return nil, nil
	}
	t, err := time.Parse(DateFormat, c.Zakat.HawlStart)
	if err != nil {
		return nil, fmt.Errorf("zakat.hawl_start: %w", err)
	}
	return &t, nil
}

// PinnedPrice parses zakat.price_per_gram; nil when unset.
func (c *Config) PinnedPrice() (*decimal.Decimal, error) {
	if c.Zakat.PricePerGram == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(c.Zakat.PricePerGram)
	if err != nil {
		return nil, fmt.Errorf("zakat.price_per_gram: %w", err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("zakat.price_per_gram: must be positive, got %s", d)
	}
	return &d, nil
}

// Timeout parses rates.timeout, defaulting to rates.DefaultTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Rates.Timeout == "" {
		return rates.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Rates.Timeout)
	if err != nil {
		return 0, fmt.Errorf("rates.timeout: %w", err)
	}
	return d, nil
}

// StaticTable builds the offline fallback table from the configured metal
// prices.
func (c *Config) StaticTable() (*rates.StaticTable, error) {
	gold, err := decimal.NewFromString(c.Rates.StaticGoldUSD)
	if err != nil {
		return nil, fmt.Errorf("rates.static_gold_usd: %w", err)
	}
	silver, err := decimal.NewFromString(c.Rates.StaticSilverUSD)
	if err != nil {
		return nil, fmt.Errorf("rates.static_silver_usd: %w", err)
	}
	if !gold.IsPositive() || !silver.IsPositive() {
		return nil, errors.New("rates: static metal prices must be positive")
	}
	return rates.DefaultStaticTable(gold, silver), nil
}

// Provider builds the rate provider: the static table always, plus the live
// sources that are configured.
func (c *Config) Provider(logger *zap.Logger) (*rates.Provider, error) {
	static, err := c.StaticTable()
	if err != nil {
		return nil, err
	}
	timeout, err := c.Timeout()
	if err != nil {
		return nil, err
	}
	opts := []rates.Option{rates.WithTimeout(timeout), rates.WithLogger(logger)}
	if c.Rates.FXURL != "" {
		opts = append(opts, rates.WithExchangeSource(rates.NewHTTPExchangeSource(c.Rates.FXURL, c.Rates.APIKey, timeout)))
	}
	var metals []rates.MetalSource
	for _, u := range c.Rates.MetalURLs {
		metals = append(metals, rates.NewHTTPMetalSource(u, c.Rates.APIKey, timeout))
	}
	if len(metals) > 0 {
		opts = append(opts, rates.WithMetalSources(metals...))
	}
	return rates.NewProvider(static, opts...), nil
}

// StoreOptions maps the storage section onto store.Options, resolving a
// relative sqlite path against root.
func (c *Config) StoreOptions(root string) store.Options {
	path := c.Storage.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return store.Options{
		Driver:        c.Storage.Driver,
		Path:          path,
		MongoURI:      c.Storage.MongoURI,
		MongoDatabase: c.Storage.MongoDatabase,
	}
}
