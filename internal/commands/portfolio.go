package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/auditlog"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/portfolio"
)

func newPortfolioCommand(opts *globalOptions) *cobra.Command {
	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage portfolios",
	}

	var kind, company string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Create(ctx, model.PortfolioKind(kind), args[0], company)
				if err != nil {
					return err
				}
				ws.audit(auditlog.ActionPortfolioCreated, p.ID.String(), p.EntityName(), string(p.Kind), "")
				fmt.Printf("Created portfolio %s [%s] %s\n", p.EntityName(), p.Kind, p.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&kind, "type", string(model.PortfolioPersonal), "portfolio type: personal or business")
	create.Flags().StringVar(&company, "company", "", "company name for a business portfolio")

	list := &cobra.Command{
		Use:   "list",
		Short: "List portfolios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				all, err := ws.portfolios.List(ctx)
				if err != nil {
					return err
				}
				active, err := ws.portfolios.Active(ctx)
				if err != nil && !errors.Is(err, portfolio.ErrNoActivePortfolio) {
					return err
				}
				for _, p := range all {
					marker := " "
					if p.ID == active.ID {
						marker = "*"
					}
					fmt.Printf("%s %s  %-24s %-9s %d record(s)\n", marker, p.ID.String()[:8], p.EntityName(), p.Kind, len(p.Records))
				}
				return nil
			})
		},
	}

	use := &cobra.Command{
		Use:   "use <portfolio>",
		Short: "Make a portfolio active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Find(ctx, args[0])
				if err != nil {
					return err
				}
				if err := ws.portfolios.Activate(ctx, p.ID); err != nil {
					return err
				}
				fmt.Printf("Active portfolio: %s [%s]\n", p.EntityName(), p.Kind)
				return nil
			})
		},
	}

	portfolioCmd.AddCommand(create, list, use)
	return portfolioCmd
}

func newCompanyCommand(opts *globalOptions) *cobra.Command {
	companyCmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies of the active personal portfolio",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Active(ctx)
				if err != nil {
					return err
				}
				c, err := ws.portfolios.AddCompany(ctx, p.ID, args[0])
				if err != nil {
					return err
				}
				ws.audit(auditlog.ActionCompanyAdded, p.ID.String(), c.Name, c.ID.String(), "")
				fmt.Printf("Added company %s %s\n", c.Name, c.ID)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Active(ctx)
				if err != nil {
					return err
				}
				companies, err := ws.portfolios.Companies(ctx, p.ID)
				if err != nil {
					return err
				}
				if len(companies) == 0 {
					fmt.Println("No companies.")
				}
				for _, c := range companies {
					fmt.Printf("%s  %s\n", c.ID.String()[:8], c.Name)
				}
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <company>",
		Short: "Remove a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				p, err := ws.portfolios.Active(ctx)
				if err != nil {
					return err
				}
				c, err := ws.portfolios.RemoveCompany(ctx, p.ID, args[0])
				if err != nil {
					return err
				}
				ws.audit(auditlog.ActionCompanyRemoved, p.ID.String(), c.Name, c.ID.String(), "")
				fmt.Printf("Removed company %s\n", c.Name)
				return nil
			})
		},
	}

	companyCmd.AddCommand(add, list, remove)
	return companyCmd
}
