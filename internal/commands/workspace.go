package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/auditlog"
	"github.com/cleared-dev/nisab/internal/config"
	"github.com/cleared-dev/nisab/internal/gitops"
	"github.com/cleared-dev/nisab/internal/logger"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/nisab"
	"github.com/cleared-dev/nisab/internal/portfolio"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/session"
	"github.com/cleared-dev/nisab/internal/store"
)

// actor is recorded in the audit log for CLI actions.
const actor = "cli"

// workspace is everything a command needs from a nisab directory.
type workspace struct {
	root       string
	cfgPath    string
	cfg        *config.Config
	log        *zap.Logger
	store      store.Store
	rates      *rates.Provider
	portfolios *portfolio.Service
	now        func() time.Time
}

func openWorkspace(ctx context.Context, repoDir string) (*workspace, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfgPath := filepath.Join(root, config.FileName)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found in %s; run `nisab init` first", config.FileName, root)
		}
		return nil, err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	provider, err := cfg.Provider(logger.Named(log, "rates"))
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.StoreOptions(root))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var cache rates.Cache
	switch err := store.LoadJSON(ctx, st, rates.CacheKey, &cache); {
	case err == nil:
		provider.Seed(cache)
	case !errors.Is(err, store.ErrNotFound):
		log.Warn("ignoring unreadable rate cache", zap.Error(err))
	}

	return &workspace{
		root:       root,
		cfgPath:    cfgPath,
		cfg:        cfg,
		log:        log,
		store:      st,
		rates:      provider,
		portfolios: portfolio.NewService(st, logger.Named(log, "portfolio"), nil),
		now:        time.Now,
	}, nil
}

// Close persists the rate cache and releases the store.
func (w *workspace) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.SaveJSON(ctx, w.store, rates.CacheKey, w.rates.Cache()); err != nil {
		w.log.Warn("failed to save rate cache", zap.Error(err))
	}
	if err := w.store.Close(); err != nil {
		w.log.Warn("failed to close store", zap.Error(err))
	}
	_ = w.log.Sync()
}

func (w *workspace) deps() session.Deps {
	return session.Deps{Rates: w.rates, Logger: logger.Named(w.log, "session"), Now: w.now}
}

// nisabConfig resolves the threshold inputs for base from config.
func (w *workspace) nisabConfig(ctx context.Context, base string) (model.NisabConfig, error) {
	pinned, err := w.cfg.PinnedPrice()
	if err != nil {
		return model.NisabConfig{}, err
	}
	if pinned != nil && rates.NormalizeCode(base) != rates.NormalizeCode(w.cfg.Zakat.BaseCurrency) {
		rate, _, err := w.rates.ExchangeRate(ctx, w.cfg.Zakat.BaseCurrency, base)
		if err != nil {
			return model.NisabConfig{}, fmt.Errorf("converting pinned price: %w", err)
		}
		p := pinned.Mul(rate)
		pinned = &p
	}
	cfg, _, err := nisab.Resolve(ctx, w.rates, model.NisabStandard(w.cfg.Zakat.NisabStandard),
		model.Calendar(w.cfg.Zakat.Calendar), base, pinned)
	return cfg, err
}

// session loads the active portfolio's draft or starts a new one from config.
func (w *workspace) session(ctx context.Context) (model.Portfolio, *session.Session, error) {
	p, err := w.portfolios.Active(ctx)
	if err != nil {
		return model.Portfolio{}, nil, err
	}
	s, err := session.LoadDraft(ctx, w.store, p.ID, w.deps())
	if err == nil {
		return p, s, nil
	}
	if !errors.Is(err, session.ErrNoDraft) {
		return model.Portfolio{}, nil, err
	}

	nc, err := w.nisabConfig(ctx, w.cfg.Zakat.BaseCurrency)
	if err != nil {
		return model.Portfolio{}, nil, err
	}
	s, err = session.New(p.ID, p.Kind, w.cfg.Zakat.BaseCurrency, nc, w.deps())
	if err != nil {
		return model.Portfolio{}, nil, err
	}
	start, err := w.cfg.HawlStart()
	if err != nil {
		return model.Portfolio{}, nil, err
	}
	s.SetHawlStart(start)
	return p, s, nil
}

func (w *workspace) saveSession(ctx context.Context, s *session.Session) error {
	return session.SaveDraft(ctx, w.store, s)
}

// refreshNisab re-derives the metal price for the session's base currency so
// a calculation never uses a stale quote.
func (w *workspace) refreshNisab(ctx context.Context, s *session.Session) error {
	nc, err := w.nisabConfig(ctx, s.BaseCurrency)
	if err != nil {
		return err
	}
	return s.SetNisab(ctx, nc)
}

// audit appends to the audit log; failures are reported but not fatal.
func (w *workspace) audit(action auditlog.Action, portfolioID, subject, details, commit string) {
	err := auditlog.Append(w.root, auditlog.Entry{
		Timestamp:   w.now().UTC(),
		Actor:       actor,
		Action:      action,
		PortfolioID: portfolioID,
		Subject:     subject,
		Details:     details,
		CommitHash:  commit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
	}
}

// commit records paths in git when auto-commit is on. It returns the short
// hash, or "" when nothing was committed.
func (w *workspace) commit(message string, paths ...string) string {
	if !w.cfg.Git.AutoCommit || !gitops.Available() || !gitops.IsRepo(w.root) {
		return ""
	}
	hash, err := gitops.CommitPaths(w.root, message, w.author(), paths...)
	if err != nil {
		if !errors.Is(err, gitops.ErrNothingToCommit) {
			fmt.Fprintf(os.Stderr, "warning: git commit failed: %v\n", err)
		}
		return ""
	}
	return hash
}

func (w *workspace) author() gitops.Author {
	return gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
}
