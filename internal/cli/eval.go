package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridict/veridict/internal/eval"
	"github.com/veridict/veridict/internal/retrieve"
	"github.com/veridict/veridict/internal/verify"
)

var (
	evalLimit   int
	evalJSON    bool
	evalTimeout time.Duration
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <file>",
	Short: "Evaluate the verifier against FEVER-style labeled claims",
	Long: `Eval runs labeled claims from a JSONL file through the verifier and
scores the predictions. Each line carries {"claim": ..., "label": ...}
with labels SUPPORTS, REFUTES, or NOT ENOUGH INFO. The evidence index
must be built beforehand with 'veridict index'.

Example:
  veridict eval fever-dev.jsonl
  veridict eval fever-dev.jsonl --limit 500 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().IntVar(&evalLimit, "limit", 0, "evaluate at most this many samples (0 = all)")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "print the report as JSON instead of a table")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 30*time.Minute, "overall evaluation timeout")
}

func runEval(cmd *cobra.Command, args []string) error {
	samples, err := eval.LoadSamples(args[0], evalLimit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples found in %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	provider, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}

	retriever := retrieve.New(provider, idx, cfg.Retrieval)
	verifier := verify.New(retriever, cfg.Verification, cfg.Retrieval.TopK)

	fmt.Fprintf(os.Stderr, "Evaluating %d samples with %d workers...\n", len(samples), cfg.Workers)

	report := eval.New(verifier, cfg.Workers).Run(ctx, samples)

	if evalJSON {
		data, err := report.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Print(report.String())
	return nil
}
