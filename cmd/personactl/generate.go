package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/genpersona/api/internal/app"
	"github.com/genpersona/api/internal/persona"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [seed...]",
	Short: "Generate a persona document",
	Long: `Generates a UX persona document from the seed given as arguments.
With no arguments a seed is drawn from the corpus at SEED_PATH.

The document is written to stdout. Degraded and raw results are written too,
with a warning on stderr.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		var (
			seed = strings.Join(args, " ")
			res  *persona.DocumentResult
			err  error
		)
		if seed == "" {
			seed, res, err = a.Service.SubmitRandom(ctx)
		} else {
			res, err = a.Service.Submit(ctx, seed)
		}
		if err != nil {
			return err
		}

		if res.Status != persona.StatusValid {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v after %d attempts (seed: %s)\n", res.Err(), res.Attempts, seed)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Document)
		return nil
	})
}

var nameCmd = &cobra.Command{
	Use:   "name <seed...>",
	Short: "Issue a unique persona name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			rec, err := a.Service.SubmitName(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		})
	},
}
