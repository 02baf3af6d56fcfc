// Command personactl runs persona generation from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/genpersona/api/internal/app"
	"github.com/genpersona/api/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose   bool
	withInfra bool
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "personactl",
	Short: "Generate UX personas and persona names",
	Long: `personactl drives the persona generator directly, without the HTTP server.

Configuration is read from the same environment variables as the server
(LLM_PROVIDER, OPENROUTER_API_KEY, PERSONA_MODEL, SEED_PATH, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&withInfra, "infra", false, "Connect to the configured database, Redis and NATS")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall operation timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// withApp builds the application for one command and tears it down after.
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app.App) error) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a, err := app.New(ctx, config.Load(), logger, withInfra)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(ctx, a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
