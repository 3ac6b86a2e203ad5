// Package server exposes the verification pipeline over HTTP. Endpoints
// are versioned under /v1; /healthz and /metrics serve operations.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/pipeline"
	"github.com/veridict/veridict/internal/util"
	"github.com/veridict/veridict/internal/worker"
)

// Server wires the pipeline behind a gin router
type Server struct {
	engine   *gin.Engine
	pipeline *pipeline.Pipeline
	cfg      model.ServerConfig
	logger   *util.Logger
	metrics  *metrics
}

// New creates a server. The index is used for health reporting and the
// evidence-count gauge only; all verification goes through the pipeline.
func New(p *pipeline.Pipeline, idx index.Index, cfg model.ServerConfig, logger *util.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		pipeline: p,
		cfg:      cfg,
		logger:   logger,
		metrics:  newMetrics(idx),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.limitBody)
	s.engine.Use(s.observe)

	s.engine.GET("/healthz", s.handleHealth(idx))
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	s.engine.POST("/v1/verify", s.handleVerify)
	s.engine.POST("/v1/batch", s.handleBatch)

	return s
}

// Handler returns the underlying HTTP handler, used by tests and Run
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the context is cancelled, then drains in-flight
// requests for up to five seconds
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Verbosef("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// limitBody caps request bodies so a single client cannot exhaust memory
func (s *Server) limitBody(c *gin.Context) {
	if s.cfg.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	}
	c.Next()
}

type verifyRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer" binding:"required"`
}

func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	result, err := s.pipeline.Verify(ctx, req.Question, req.Answer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.metrics.observeResult(result)
	c.JSON(http.StatusOK, result)
}

type batchRequest struct {
	Items []worker.Pair `json:"items" binding:"required"`
}

type batchItem struct {
	Index  int           `json:"index"`
	Result *model.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	outcomes := s.pipeline.BatchVerify(ctx, req.Items)

	items := make([]batchItem, 0, len(outcomes))
	for _, outcome := range outcomes {
		item := batchItem{Index: outcome.Index, Result: outcome.Result}
		if outcome.Err != nil {
			item.Error = outcome.Err.Error()
		} else {
			s.metrics.observeResult(outcome.Result)
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleHealth(idx index.Index) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := idx.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		status := "ok"
		if count == 0 {
			status = "empty"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"documents": count,
			"dimension": idx.Dimension(),
		})
	}
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}
