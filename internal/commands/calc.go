package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/auditlog"
	"github.com/cleared-dev/nisab/internal/lineitems"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/portfolio"
	"github.com/cleared-dev/nisab/internal/report"
	"github.com/cleared-dev/nisab/internal/session"
)

func newBaseCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "base <currency>",
		Short: "Change the base currency and reconvert every item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				from := s.BaseCurrency
				if err := s.Renormalize(ctx, args[0]); err != nil {
					return err
				}
				if err := ws.refreshNisab(ctx, s); err != nil {
					return err
				}
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				ws.audit(auditlog.ActionRenormalized, p.ID.String(), s.ID.String(), from+"->"+s.BaseCurrency, "")
				fmt.Printf("Base currency: %s -> %s\n", from, s.BaseCurrency)
				if err := report.Advisories(os.Stdout, ws.rates.Advisories()); err != nil {
					return err
				}
				return report.Items(os.Stdout, s.Entries(), s.BaseCurrency)
			})
		},
	}
}

func newCalcCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Show the zakat calculation for the current items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				if err := ws.refreshNisab(ctx, s); err != nil {
					return err
				}
				sum, err := s.Calculate()
				if err != nil {
					return err
				}
				if err := ws.saveSession(ctx, s); err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(sum)
				}
				if err := report.Advisories(os.Stdout, ws.rates.Advisories()); err != nil {
					return err
				}
				return report.Summary(os.Stdout, sum)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the calculation as JSON")
	return cmd
}

func newSaveCommand(opts *globalOptions) *cobra.Command {
	var companyRef string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the calculation to the portfolio history",
		Long:  "Fails while any item still needs clarification. The saved record is exported to records/<id>.csv.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				entity := p.EntityName()
				if companyRef != "" {
					c, err := portfolio.FindCompany(p, companyRef)
					if err != nil {
						return err
					}
					s.CompanyID = &c.ID
					entity = c.Name
				}
				if err := ws.refreshNisab(ctx, s); err != nil {
					return err
				}

				rec, err := s.Finalize(entity)
				var unresolved *session.UnresolvedError
				if errors.As(err, &unresolved) {
					_ = ws.saveSession(ctx, s)
					return fmt.Errorf("%w; run `nisab clarify`", err)
				}
				if err != nil {
					return err
				}
				if err := ws.portfolios.AppendRecord(ctx, p.ID, rec); err != nil {
					return err
				}

				rel, err := lineitems.ExportRecord(ws.root, rec)
				if err != nil {
					return err
				}
				hash := ws.commit(fmt.Sprintf("record: %s %s", entity, rec.Date.Format("2006-01-02")), rel)
				ws.audit(auditlog.ActionRecordSaved, p.ID.String(), rec.ID.String(),
					fmt.Sprintf("due %s %s", rec.ZakatDue.StringFixed(2), rec.Currency), hash)
				if hash != "" {
					_ = ws.commit("audit: record saved", filepath.Join("logs", "audit-log.csv"))
				}
				if err := session.DiscardDraft(ctx, ws.store, p.ID); err != nil {
					return err
				}

				fmt.Printf("Saved record %s for %s: zakat due %s\n", rec.ID, entity, report.Amount(rec.ZakatDue, rec.Currency))
				if !rec.HawlComplete {
					fmt.Println("Hawl is not complete; nothing is due yet.")
				} else if !rec.MeetsNisab {
					fmt.Println("Net wealth is below the nisab.")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&companyRef, "company", "", "save for a company of a personal portfolio")
	return cmd
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved calculations of the active portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Active(ctx)
				if err != nil {
					return err
				}
				recs, err := ws.portfolios.Records(ctx, p.ID)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(recs)
				}
				return report.Records(os.Stdout, recs)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func newPaidCommand(opts *globalOptions) *cobra.Command {
	var unpaid bool

	cmd := &cobra.Command{
		Use:   "paid <record>",
		Short: "Mark a saved calculation as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Active(ctx)
				if err != nil {
					return err
				}
				rec, err := ws.portfolios.MarkPaid(ctx, p.ID, args[0], !unpaid)
				if err != nil {
					return err
				}
				action, state := auditlog.ActionRecordPaid, "paid"
				if unpaid {
					action, state = auditlog.ActionRecordUnpaid, "unpaid"
				}
				ws.audit(action, p.ID.String(), rec.ID.String(), "", "")
				fmt.Printf("Record %s marked %s\n", rec.ID.String()[:8], state)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "mark as unpaid instead")
	return cmd
}

func newRecordCommand(opts *globalOptions) *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect or delete saved calculations",
	}
	recordCmd.AddCommand(
		&cobra.Command{
			Use:   "show <record>",
			Short: "Show a saved calculation and its items",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
					p, err := ws.portfolios.Active(ctx)
					if err != nil {
						return err
					}
					rec, err := ws.portfolios.Record(ctx, p.ID, args[0])
					if err != nil {
						return err
					}
					return showRecord(rec)
				})
			},
		},
		&cobra.Command{
			Use:   "delete <record>",
			Short: "Delete a saved calculation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
					p, err := ws.portfolios.Active(ctx)
					if err != nil {
						return err
					}
					rec, err := ws.portfolios.DeleteRecord(ctx, p.ID, args[0])
					if err != nil {
						return err
					}
					ws.audit(auditlog.ActionRecordDeleted, p.ID.String(), rec.ID.String(),
						fmt.Sprintf("due %s %s", rec.ZakatDue.StringFixed(2), rec.Currency), "")
					fmt.Printf("Deleted record %s\n", rec.ID.String()[:8])
					return nil
				})
			},
		},
	)
	return recordCmd
}

func showRecord(rec model.CalculationRecord) error {
	if err := report.Records(os.Stdout, []model.CalculationRecord{rec}); err != nil {
		return err
	}
	return report.Items(os.Stdout, rec.LineItems, rec.Currency)
}
