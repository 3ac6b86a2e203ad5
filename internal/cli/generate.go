package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veridict/veridict/internal/pipeline"
)

var generateQuestion string

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an answer with the configured language model and verify it",
	Long: `Generate asks the configured language model to answer the question,
then runs the generated answer through the same verification as any
other answer. Configure the model with llm.provider in the config file
or VERIDICT_LLM_PROVIDER (openai, anthropic, ollama).

Example:
  veridict generate -q "Where is the Eiffel Tower?"
  veridict generate -q "When was it built?" --json result.json`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateQuestion, "question", "q", "", "question to answer and verify")
	_ = generateCmd.MarkFlagRequired("question")

	generateCmd.Flags().StringVar(&outJSON, "json", "", "write the full result as JSON to this path ('-' for stdout)")
	generateCmd.Flags().StringVar(&outMD, "md", "", "write a markdown report to this path")
	generateCmd.Flags().StringVar(&outHTML, "html", "", "write the highlighted answer as HTML to this path")
	generateCmd.Flags().BoolVar(&noExitStatus, "no-exit-status", false, "always exit 0 regardless of risk level")
}

func runGenerate(cmd *cobra.Command, args []string) error {
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
	if !p.HasGenerator() {
		return fmt.Errorf("no language model configured: set llm.provider in the config or VERIDICT_LLM_PROVIDER")
	}

	result, err := p.GenerateAndVerify(ctx, generateQuestion)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	fmt.Printf("Answer (%s/%s): %s\n\n", result.Generated.Provider, result.Generated.Model, result.Answer)

	if err := writeOutputs(result); err != nil {
		return err
	}
	return riskExit(result)
}
