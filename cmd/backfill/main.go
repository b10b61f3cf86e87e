// Command backfill re-normalizes stored analyses from their raw provider
// responses, so results pick up normalization fixes without new LLM calls.
// Usage: go run ./cmd/backfill [--dry-run] [--batch-size N]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docanalyzer/internal/config"
	"docanalyzer/internal/logger"
	"docanalyzer/internal/repository/postgres"
)

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:          "backfill",
		Short:        "Re-normalize completed analyses from their raw responses",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 100, "analyses loaded per query")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report changes without writing them")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Log, "docanalyzer-backfill")

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("re-normalizing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("analyses"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	stats, err := renormalize(ctx, postgres.NewAnalysisRepo(db), opts, func() { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		return err
	}

	log.Info().
		Int("scanned", stats.Scanned).
		Int("updated", stats.Updated).
		Int("unchanged", stats.Unchanged).
		Int("skipped", stats.Skipped).
		Bool("dry_run", opts.DryRun).
		Msg("backfill complete")
	return nil
}
