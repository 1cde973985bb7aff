package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/auditlog"
	"github.com/cleared-dev/nisab/internal/lineitems"
	"github.com/cleared-dev/nisab/internal/report"
	"github.com/cleared-dev/nisab/internal/session"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv...]",
		Short: "Import line items from CSV",
		Long: "Reads name,amount,currency[,market_value,category,islamic_financing] rows. Without " +
			"arguments, every CSV in import/ is read and moved to import/processed/. " +
			"Nothing is added unless every row is valid.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				return runImport(ctx, ws, args)
			})
		},
	}
}

func runImport(ctx context.Context, ws *workspace, paths []string) error {
	fromInbox := len(paths) == 0
	if fromInbox {
		files, err := lineitems.Scan(ws.root)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No CSV files in import/.")
			return nil
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}

	p, s, err := ws.session(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, path := range paths {
		n, err := importFile(ctx, s, path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d item(s)\n", filepath.Base(path), n)
		total += n
	}
	if err := ws.saveSession(ctx, s); err != nil {
		return err
	}

	for _, path := range paths {
		ws.audit(auditlog.ActionItemsImported, p.ID.String(), filepath.Base(path), "", "")
		if fromInbox {
			if err := lineitems.MarkProcessed(ws.root, filepath.Base(path)); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Imported %d item(s); %d need clarification\n", total, s.Unresolved())
	if err := report.Advisories(os.Stdout, ws.rates.Advisories()); err != nil {
		return err
	}
	return report.Items(os.Stdout, s.Entries(), s.BaseCurrency)
}

func importFile(ctx context.Context, s *session.Session, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := lineitems.ReadItems(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for _, row := range rows {
		cur := row.Currency
		if cur == "" {
			cur = s.BaseCurrency
		}
		_, err := s.Add(ctx, session.ItemInput{
			Name:             row.Name,
			Amount:           row.Amount,
			Currency:         cur,
			MarketValue:      row.MarketValue,
			Category:         row.Category,
			IslamicFinancing: row.IslamicFinancing,
		})
		if err != nil {
			return 0, fmt.Errorf("%s line %d: %w", filepath.Base(path), row.Line, err)
		}
	}
	return len(rows), nil
}
