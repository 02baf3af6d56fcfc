package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/genpersona/api/internal/app"
	"github.com/genpersona/api/internal/eventbus"
	"github.com/genpersona/api/internal/llm"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the generative service answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			start := time.Now()
			text, err := a.Breaker.Generate(ctx, llm.Request{
				UserPrompt:  "Reply with the single word: pong",
				Model:       a.Config.PersonaModel,
				Temperature: llm.Temperature(0),
			})
			if err != nil {
				return fmt.Errorf("ping %s: %w", a.Config.LLMProvider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s answered in %s: %q\n",
				a.Config.LLMProvider, time.Since(start).Round(time.Millisecond), text)
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print generation events published on NATS",
	RunE: func(cmd *cobra.Command, _ []string) error {
		withInfra = true
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if a.Bus == nil {
				return fmt.Errorf("NATS_URL is not set or unreachable")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl-C to stop)\n", eventbus.SubjectWildcard)
			return a.Bus.Subscribe(ctx, eventbus.SubjectWildcard, func(e eventbus.Event) {
				_ = printJSONLine(cmd, e)
			})
		})
	},
}

func printJSONLine(cmd *cobra.Command, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
