package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/nisab/internal/clarify"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/session"
)

func newClarifyCommand(opts *globalOptions) *cobra.Command {
	var itemRef, answer, marketValue string

	cmd := &cobra.Command{
		Use:   "clarify",
		Short: "Answer the questions for items that need clarification",
		Long: "Without flags, walks through every flagged item interactively. Type the option " +
			"number or answer, b to go back, s to skip an answered item, q to stop. Progress is saved.\n" +
			"With --item and --answer, answers one item directly.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				mv, err := parseOptionalAmount("market value", marketValue)
				if err != nil {
					return err
				}
				_, s, err := ws.session(ctx)
				if err != nil {
					return err
				}
				if itemRef != "" || answer != "" {
					if itemRef == "" || answer == "" {
						return errors.New("--item and --answer must be used together")
					}
					e, err := s.Find(itemRef)
					if err != nil {
						return err
					}
					updated, err := s.AnswerItem(e.ID, model.Answer(answer), mv)
					if err != nil {
						return err
					}
					if err := ws.saveSession(ctx, s); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", updated.Name, updated.Classification.Label())
					return nil
				}

				err = runClarify(cmd.InOrStdin(), cmd.OutOrStdout(), s)
				if saveErr := ws.saveSession(ctx, s); saveErr != nil {
					return saveErr
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&itemRef, "item", "", "item to answer (ID, ID prefix or name)")
	cmd.Flags().StringVar(&answer, "answer", "", "answer for --item")
	cmd.Flags().StringVar(&marketValue, "market-value", "", "market value when the answer makes the item zakatable")
	return cmd
}

// runClarify drives the session's clarification cursor from line input.
func runClarify(in io.Reader, out io.Writer, s *session.Session) error {
	scanner := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		q, err := s.Current()
		switch {
		case errors.Is(err, clarify.ErrNothingToClarify):
			fmt.Fprintln(out, "Nothing to clarify.")
			return nil
		case errors.Is(err, clarify.ErrDone):
			fmt.Fprintf(out, "All questions answered. %d item(s) still unresolved.\n", s.Unresolved())
			return nil
		case err != nil:
			return err
		}

		fmt.Fprintf(out, "\n[%d/%d] %s (%s %s)\n%s\n", q.Position, q.Total, q.Item.Name,
			q.Item.Amount.StringFixed(2), q.Item.Currency, q.Item.ClarificationQuestion)
		if q.Item.ClarificationAnswer != "" {
			fmt.Fprintf(out, "Current answer: %s\n", q.Item.ClarificationAnswer)
		}
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s [%s] -> %s\n", i+1, opt.Label, opt.Answer, opt.Result.Label())
		}

		line, ok := read("> ")
		if !ok {
			return nil
		}
		switch line {
		case "q":
			return nil
		case "b":
			if err := s.Back(); err != nil {
				return err
			}
			continue
		case "s":
			if err := s.Next(); err != nil {
				fmt.Fprintf(out, "%v\n", err)
			}
			continue
		}

		opt, ok := pickOption(q.Options, line)
		if !ok {
			fmt.Fprintf(out, "Unknown answer %q\n", line)
			continue
		}
		var mv *decimal.Decimal
		if opt.Result == model.Zakatable && q.Item.QuestionType == model.QuestionAssetUse {
			raw, _ := read("Market value (blank to use the amount): ")
			if mv, err = parseOptionalAmount("market value", raw); err != nil {
				fmt.Fprintf(out, "%v\n", err)
				continue
			}
		}
		if _, err := s.Answer(opt.Answer, mv); err != nil {
			fmt.Fprintf(out, "%v\n", err)
		}
	}
}

func pickOption(options []clarify.Option, input string) (clarify.Option, bool) {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	for _, opt := range options {
		if strings.EqualFold(string(opt.Answer), input) {
			return opt, true
		}
	}
	return clarify.Option{}, false
}
