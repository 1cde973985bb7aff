package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/buildinfo"
)

type globalOptions struct {
	repo string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:     "nisab",
		Short:   "Zakat classification and calculation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "workspace directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newItemCommand(opts),
		newClarifyCommand(opts),
		newBaseCommand(opts),
		newCalcCommand(opts),
		newSaveCommand(opts),
		newHistoryCommand(opts),
		newPaidCommand(opts),
		newRecordCommand(opts),
		newPortfolioCommand(opts),
		newCompanyCommand(opts),
		newHawlCommand(opts),
		newPriceCommand(opts),
		newImportCommand(opts),
		newWatchCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}

// run opens the workspace for the duration of fn.
func (o *globalOptions) run(cmd *cobra.Command, fn func(ctx context.Context, ws *workspace) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := openWorkspace(ctx, o.repo)
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ctx, ws)
}
