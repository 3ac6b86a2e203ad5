package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veridict/veridict/internal/pipeline"
	"github.com/veridict/veridict/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification API over HTTP",
	Long: `Serve exposes the pipeline over HTTP:
  POST /v1/verify  {question, answer}   -> full verification result
  POST /v1/batch   {items: [...]}       -> order-preserving batch results
  GET  /healthz                         -> index status
  GET  /metrics                         -> Prometheus metrics

The evidence index is loaded once at startup; rebuild it with
'veridict index' and restart to pick up corpus changes.

Example:
  veridict serve
  veridict serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}

	count, err := idx.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Fprintln(os.Stderr, "Warning: evidence index is empty; every claim will be unsupported. Run 'veridict index' first.")
	}

	p := pipeline.New(cfg, provider, idx, logger)
	s := server.New(p, idx, cfg.Server, logger)

	fmt.Fprintf(os.Stderr, "Serving on %s (%d evidence items)\n", cfg.Server.Addr, count)
	if err := s.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
