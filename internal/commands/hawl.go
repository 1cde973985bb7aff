package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/config"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/report"
)

func newHawlCommand(opts *globalOptions) *cobra.Command {
	var start string
	var clearStart bool

	cmd := &cobra.Command{
		Use:   "hawl",
		Short: "Show or set the start of the lunar holding period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}

				if start != "" || clearStart {
					var t *time.Time
					if start != "" {
						parsed, err := time.Parse(config.DateFormat, start)
						if err != nil {
							return fmt.Errorf("invalid --start %q: %w", start, err)
						}
						if parsed.After(ws.now()) {
							return errors.New("hawl start must not be in the future")
						}
						t = &parsed
					}
					if err := setConfigHawlStart(ws.cfgPath, start); err != nil {
						return err
					}
					s.SetHawlStart(t)
					if err := ws.saveSession(ctx, s); err != nil {
						return err
					}
				}

				if s.HawlStart == nil {
					fmt.Println("No hawl start set; use `nisab hawl --start YYYY-MM-DD`.")
					return nil
				}
				return report.Hawl(os.Stdout, *s.HawlStart, ws.now())
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "date wealth first reached the nisab (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearStart, "clear", false, "remove the hawl start")
	return cmd
}

// setConfigHawlStart rewrites zakat.hawl_start in the file on disk, leaving
// environment overrides out of it.
func setConfigHawlStart(path, start string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Zakat.HawlStart = start
	return config.Save(path, cfg)
}

func newPriceCommand(opts *globalOptions) *cobra.Command {
	var metal, currency string

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show metal prices per gram and the nisab threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				cur := currency
				if cur == "" {
					cur = ws.cfg.Zakat.BaseCurrency
				}
				metals := []model.NisabStandard{model.StandardGold, model.StandardSilver}
				if metal != "" {
					m := model.NisabStandard(metal)
					if !m.Valid() {
						return fmt.Errorf("unknown metal %q", metal)
					}
					metals = []model.NisabStandard{m}
				}

				for _, m := range metals {
					q, err := ws.rates.MetalPrice(ctx, m, cur)
					if err != nil {
						return err
					}
					if err := report.Quotes(os.Stdout, []rates.Quote{q}); err != nil {
						return err
					}
					fmt.Printf("        nisab (%s g): %s\n", m.Grams(), report.Amount(q.Price.Mul(m.Grams()), q.Currency))
				}
				return report.Advisories(os.Stdout, ws.rates.Advisories())
			})
		},
	}
	cmd.Flags().StringVar(&metal, "metal", "", "gold or silver (default: both)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency (default: base currency)")
	return cmd
}
