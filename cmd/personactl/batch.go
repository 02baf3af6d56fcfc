package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/genpersona/api/internal/app"
	"github.com/genpersona/api/internal/persona"
	"github.com/genpersona/api/internal/seeds"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchLimit       int
	batchConcurrency int
	batchNames       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate personas for every seed in the corpus",
	Long: `Runs generation for the first --limit seeds of the corpus at SEED_PATH,
--concurrency at a time. All workers share one name cache, so names stay
unique across the batch. Each result is printed as one JSON line.

A transport failure stops the batch; degraded results do not.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchLimit, "limit", "n", 10, "Maximum seeds to process (0 for all)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 4, "Seeds processed in parallel")
	batchCmd.Flags().BoolVar(&batchNames, "names", false, "Issue names instead of documents")
}

type batchLine struct {
	Seed     string              `json:"seed"`
	Status   string              `json:"status,omitempty"`
	Attempts int                 `json:"attempts"`
	Document string              `json:"document,omitempty"`
	Name     *persona.NameRecord `json:"name,omitempty"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		items := a.Seeds.All()
		if len(items) == 0 {
			return seeds.ErrUnavailable
		}
		if batchLimit > 0 && batchLimit < len(items) {
			items = items[:batchLimit]
		}

		var (
			mu       sync.Mutex
			degraded int
		)
		emit := func(line batchLine) error {
			mu.Lock()
			defer mu.Unlock()
			if line.Status != "" && line.Status != string(persona.StatusValid) {
				degraded++
			}
			return printJSONLine(cmd, line)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(batchConcurrency, 1))
		for _, seed := range items {
			g.Go(func() error {
				if batchNames {
					rec, err := a.Service.SubmitName(gctx, seed)
					if err != nil {
						return err
					}
					return emit(batchLine{Seed: seed, Attempts: rec.Attempts, Name: rec})
				}

				res, err := a.Service.Submit(gctx, seed)
				if errors.Is(err, persona.ErrGenerationExhausted) {
					a.Logger().Warn("seed produced nothing", zap.String("seed", seed))
					return nil
				}
				if err != nil {
					return fmt.Errorf("seed %q: %w", seed, err)
				}
				return emit(batchLine{Seed: seed, Status: string(res.Status), Attempts: res.Attempts, Document: res.Document})
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "processed %d seeds, %d not fully valid\n", len(items), degraded)
		return nil
	})
}
