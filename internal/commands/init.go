package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/auditlog"
	"github.com/cleared-dev/nisab/internal/config"
	"github.com/cleared-dev/nisab/internal/gitops"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/portfolio"
	"github.com/cleared-dev/nisab/internal/store"
)

func newInitCommand() *cobra.Command {
	var name, kind, company, base string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new nisab workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, name, model.PortfolioKind(kind), company, base, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the person or household (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&kind, "type", string(model.PortfolioPersonal), "portfolio type: personal or business")
	cmd.Flags().StringVar(&company, "company", "", "company name for a business portfolio")
	cmd.Flags().StringVar(&base, "base", "USD", "base currency")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(ctx context.Context, dir, name string, kind model.PortfolioKind, company, base string, useGit bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if kind == model.PortfolioPersonal && company != "" {
		return fmt.Errorf("--company is only used with --type %s", model.PortfolioBusiness)
	}
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	// Create directory structure.
	dirs := []string{
		"data",
		"records",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write nisab.yaml.
	cfg := config.Default(name, kind, company)
	cfg.Zakat.BaseCurrency = base
	useGit = useGit && gitops.Available()
	cfg.Git.AutoCommit = useGit
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write .gitignore.
	gitignore := "data/\n.env\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Create the first portfolio; it becomes active.
	st, err := store.Open(ctx, cfg.StoreOptions(dir))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()
	p, err := portfolio.NewService(st, nil, nil).Create(ctx, kind, name, company)
	if err != nil {
		return err
	}
	if err := auditlog.Append(dir, auditlog.Entry{
		Timestamp:   p.CreatedAt,
		Actor:       actor,
		Action:      auditlog.ActionPortfolioCreated,
		PortfolioID: p.ID.String(),
		Subject:     p.EntityName(),
		Details:     string(kind),
	}); err != nil {
		return err
	}

	// Initialize git and create initial commit.
	hash := "no git"
	if useGit {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		hash, err = gitops.CommitPaths(dir, "init: Initialize "+name, author, ".")
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}

	fmt.Printf("Initialized nisab workspace at %s (%s)\n", dir, hash)
	fmt.Printf("Active portfolio: %s [%s] %s\n", p.EntityName(), p.Kind, p.ID)
	return nil
}
