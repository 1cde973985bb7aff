package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/auditlog"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/report"
	"github.com/cleared-dev/nisab/internal/session"
)

func newItemCommand(opts *globalOptions) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the line items of the current calculation",
	}
	itemCmd.AddCommand(
		newItemAddCommand(opts),
		newItemListCommand(opts),
		newItemEditCommand(opts),
		newItemRemoveCommand(opts),
		newItemResetCommand(opts),
		newItemTemplateCommand(opts),
	)
	return itemCmd
}

type itemFlags struct {
	currency    string
	marketValue string
	category    string
	islamic     bool
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency of the amount (default: base currency)")
	cmd.Flags().StringVar(&f.marketValue, "market-value", "", "current market value, in the item's currency")
	cmd.Flags().StringVar(&f.category, "category", "", "business category: current_assets, fixed_assets, current_liabilities, long_term_liabilities")
	cmd.Flags().BoolVar(&f.islamic, "islamic", false, "liability is Islamic (Sharia-compliant) financing")
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}

func parseOptionalAmount(field, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseAmount(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func newItemAddCommand(opts *globalOptions) *cobra.Command {
	var f itemFlags

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add a line item and classify it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				amount, err := parseAmount("amount", args[1])
				if err != nil {
					return err
				}
				mv, err := parseOptionalAmount("market value", f.marketValue)
				if err != nil {
					return err
				}
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				cur := f.currency
				if cur == "" {
					cur = s.BaseCurrency
				}
				e, err := s.Add(ctx, session.ItemInput{
					Name:             args[0],
					Amount:           amount,
					Currency:         cur,
					MarketValue:      mv,
					Category:         model.Category(f.category),
					IslamicFinancing: f.islamic,
				})
				if err != nil {
					return err
				}
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				printEntry(e, s.BaseCurrency)
				return report.Advisories(os.Stdout, ws.rates.Advisories())
			})
		},
	}
	f.register(cmd)
	return cmd
}

func printEntry(e model.CategoryEntry, base string) {
	fmt.Printf("%s  %s  %s -> %s: %s\n", e.ID.String()[:8], e.Name,
		report.Amount(e.Amount, e.Currency), report.Amount(e.ZakatableValue(), base), e.Classification.Label())
	if e.IslamicRuling != "" {
		fmt.Printf("  %s\n", e.IslamicRuling)
	}
	if !e.Resolved() {
		fmt.Printf("  Needs clarification: %s\n  Run `nisab clarify` to answer.\n", e.ClarificationQuestion)
	}
}

func newItemListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List line items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				return report.Items(os.Stdout, s.Entries(), s.BaseCurrency)
			})
		},
	}
}

func newItemEditCommand(opts *globalOptions) *cobra.Command {
	var f itemFlags
	var name, amount string
	var clearMV bool

	cmd := &cobra.Command{
		Use:   "edit <item>",
		Short: "Edit a line item by ID, ID prefix or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				e, err := s.Find(args[0])
				if err != nil {
					return err
				}

				var ed session.Edit
				flags := cmd.Flags()
				if flags.Changed("name") {
					ed.Name = &name
				}
				if flags.Changed("amount") {
					d, err := parseAmount("amount", amount)
					if err != nil {
						return err
					}
					ed.Amount = &d
				}
				if flags.Changed("currency") {
					ed.Currency = &f.currency
				}
				if ed.MarketValue, err = parseOptionalAmount("market value", f.marketValue); err != nil {
					return err
				}
				ed.ClearMarketValue = clearMV
				if flags.Changed("category") {
					c := model.Category(f.category)
					ed.Category = &c
				}
				if flags.Changed("islamic") {
					ed.IslamicFinancing = &f.islamic
				}

				updated, err := s.Edit(ctx, e.ID, ed)
				if err != nil {
					return err
				}
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				printEntry(updated, s.BaseCurrency)
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "new name (reclassifies the item)")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().BoolVar(&clearMV, "clear-market-value", false, "drop the market value")
	return cmd
}

func newItemRemoveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item>",
		Short: "Remove a line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				e, err := s.Find(args[0])
				if err != nil {
					return err
				}
				if err := s.Remove(e.ID); err != nil {
					return err
				}
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				fmt.Printf("Removed %s\n", e.Name)
				return nil
			})
		},
	}
}

func newItemResetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard every line item of the current calculation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				n := len(s.Entries())
				s.Reset()
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				ws.audit(auditlog.ActionSessionReset, p.ID.String(), s.ID.String(), fmt.Sprintf("%d items", n), "")
				fmt.Printf("Discarded %d item(s)\n", n)
				return nil
			})
		},
	}
}

func newItemTemplateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Add the common starter items for this portfolio type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				added, err := s.AddTemplates(ctx)
				if err != nil {
					return err
				}
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				fmt.Printf("Added %d template item(s); set amounts with `nisab item edit <item> --amount`\n", len(added))
				return report.Items(os.Stdout, s.Entries(), s.BaseCurrency)
			})
		},
	}
}
