package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridict/veridict/internal/ingest"
)

var indexTimeout time.Duration

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <source...>",
	Short: "Ingest evidence sources into the index",
	Long: `Index loads trusted source material into the evidence index:
- Plain text and markdown files (paragraph-chunked)
- JSON corpora (arrays of strings or {id, text, origin} documents)
- HTML files and web pages (visible text only; robots.txt is honored)
- Directories (walked recursively)

The memory backend persists the index to the configured artifact path
after ingestion, so later verify runs load it instantly.

Example:
  veridict index ./corpus/
  veridict index facts.txt https://en.wikipedia.org/wiki/Eiffel_Tower
  veridict index corpus.json --timeout 10m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().DurationVar(&indexTimeout, "timeout", 5*time.Minute, "overall ingestion timeout")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	provider, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ingester := ingest.New(provider, idx, cfg.Ingest, logger)
	stats, err := ingester.Ingest(ctx, args)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	for _, srcErr := range stats.Errors {
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", srcErr.Source, srcErr.Err)
	}

	if err := saveIndex(idx, cfg, logger); err != nil {
		return err
	}

	count, err := idx.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Indexed %d chunks from %d sources (%d items total)\n",
		stats.Indexed, stats.Sources-len(stats.Errors), count)
	return nil
}
