package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/pipeline"
)

var (
	verifyQuestion   string
	verifyAnswer     string
	verifyAnswerFile string
	outJSON          string
	outMD            string
	outHTML          string
	noExitStatus     bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an answer against the evidence index",
	Long: `Verify extracts factual claims from an answer, checks each claim
against the evidence index, and reports a truthfulness score with a
sentence-level risk highlight.

The exit code reflects the risk level (0 low, 1 medium, 2 high) so
verification can gate scripts and CI jobs; disable with
--no-exit-status.

Example:
  veridict verify --answer "The Eiffel Tower is in Paris."
  veridict verify -q "Where is it?" -a "In Berlin." --json report.json
  veridict verify --answer-file answer.txt --md report.md --html report.html`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyQuestion, "question", "q", "", "question the answer responds to (optional)")
	verifyCmd.Flags().StringVarP(&verifyAnswer, "answer", "a", "", "answer text to verify")
	verifyCmd.Flags().StringVar(&verifyAnswerFile, "answer-file", "", "read the answer from a file")

	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write the full result as JSON to this path ('-' for stdout)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "write a markdown report to this path")
	verifyCmd.Flags().StringVar(&outHTML, "html", "", "write the highlighted answer as HTML to this path")
	verifyCmd.Flags().BoolVar(&noExitStatus, "no-exit-status", false, "always exit 0 regardless of risk level")
}

func runVerify(cmd *cobra.Command, args []string) error {
	answer, err := resolveAnswer()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx := context.Background()

	provider, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, provider, idx, logger)
	result, err := p.Verify(ctx, verifyQuestion, answer)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if err := writeOutputs(result); err != nil {
		return err
	}

	return riskExit(result)
}

func resolveAnswer() (string, error) {
	if verifyAnswer != "" && verifyAnswerFile != "" {
		return "", fmt.Errorf("--answer and --answer-file are mutually exclusive")
	}
	if verifyAnswerFile != "" {
		data, err := os.ReadFile(verifyAnswerFile)
		if err != nil {
			return "", fmt.Errorf("read answer file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if verifyAnswer == "" {
		return "", fmt.Errorf("an answer is required: use --answer or --answer-file")
	}
	return verifyAnswer, nil
}

// writeOutputs renders the result to every requested format. The
// terminal summary goes to stdout only when no stdout format was chosen.
func writeOutputs(result *model.Result) error {
	stdoutUsed := false

	if outJSON != "" {
		data, err := pipeline.RenderJSON(result)
		if err != nil {
			return err
		}
		if outJSON == "-" {
			fmt.Println(string(data))
			stdoutUsed = true
		} else if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}

	if outMD != "" {
		if err := os.WriteFile(outMD, []byte(pipeline.RenderMarkdown(result)), 0o644); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
	}

	if outHTML != "" {
		if err := os.WriteFile(outHTML, []byte(pipeline.RenderHTML(result)), 0o644); err != nil {
			return fmt.Errorf("write HTML: %w", err)
		}
	}

	if !stdoutUsed {
		fmt.Println(pipeline.RenderSummary(result))
	}
	return nil
}

// riskExit maps the risk level onto the process exit code
func riskExit(result *model.Result) error {
	if noExitStatus {
		return nil
	}
	switch result.Report.RiskLevel {
	case model.RiskHigh:
		return &exitError{code: 2}
	case model.RiskMedium:
		return &exitError{code: 1}
	default:
		return nil
	}
}

// exitError carries a non-zero exit code without an error message;
// the risk verdict is already on stdout
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// ExitCode extracts the exit code an error asks for, defaulting to 1
// for ordinary errors
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 1
}
