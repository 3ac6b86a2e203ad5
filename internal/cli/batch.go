package cli

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/pipeline"
	"github.com/veridict/veridict/internal/worker"
)

var (
	batchOutputDir string
	batchTimeout   time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many question/answer pairs concurrently",
	Long: `Batch reads question/answer pairs from a CSV file (question,answer
columns) or a JSONL file ({"question": ..., "answer": ...} per line)
and verifies them concurrently. Output order always matches input
order.

With --output-dir, each pair gets a JSON report file; otherwise a
single JSON array goes to stdout.

Example:
  veridict batch answers.csv
  veridict batch answers.jsonl --output-dir ./reports
  veridict batch answers.csv --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "write one JSON report per pair into this directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	pairs, err := ReadPairs(args[0])
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no pairs found in %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	provider, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Verifying %d pairs with %d workers...\n", len(pairs), cfg.Workers)

	p := pipeline.New(cfg, provider, idx, logger)
	outcomes := p.BatchVerify(ctx, pairs)

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ pair %d: %v\n", outcome.Index+1, outcome.Err)
			continue
		}
		succeeded++
		fmt.Fprintf(os.Stderr, "✓ pair %d: %.1f/100 (%s)\n",
			outcome.Index+1, outcome.Result.Report.TruthfulnessScore, outcome.Result.Report.RiskLevel)
	}

	if err := writeBatchResults(outcomes); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Done: %d succeeded, %d failed\n", succeeded, len(outcomes)-succeeded)
	return nil
}

// ReadPairs loads question/answer pairs from a CSV or JSONL file
func ReadPairs(path string) ([]worker.Pair, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVPairs(path)
	case ".jsonl", ".ndjson":
		return readJSONLPairs(path)
	default:
		return nil, fmt.Errorf("unsupported batch file type %q: use .csv or .jsonl", filepath.Ext(path))
	}
}

func readCSVPairs(path string) ([]worker.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var pairs []worker.Pair
	for i, row := range rows {
		// Tolerate a header row
		if i == 0 && strings.EqualFold(row[0], "question") {
			continue
		}
		pairs = append(pairs, worker.Pair{Question: row[0], Answer: row[1]})
	}
	return pairs, nil
}

func readJSONLPairs(path string) ([]worker.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var pairs []worker.Pair
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var pair worker.Pair
		if err := json.Unmarshal([]byte(text), &pair); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return pairs, nil
}

func writeBatchResults(outcomes []*worker.VerifyOutcome) error {
	if batchOutputDir == "" {
		type item struct {
			Index  int           `json:"index"`
			Result *model.Result `json:"result,omitempty"`
			Error  string        `json:"error,omitempty"`
		}
		items := make([]item, 0, len(outcomes))
		for _, outcome := range outcomes {
			it := item{Index: outcome.Index, Result: outcome.Result}
			if outcome.Err != nil {
				it.Error = outcome.Err.Error()
			}
			items = append(items, it)
		}
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			continue
		}
		data, err := pipeline.RenderJSON(outcome.Result)
		if err != nil {
			return err
		}
		path := filepath.Join(batchOutputDir, fmt.Sprintf("result-%04d.json", outcome.Index+1))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
