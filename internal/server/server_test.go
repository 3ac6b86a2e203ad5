package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/veridict/veridict/internal/embed"
	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/pipeline"
	"github.com/veridict/veridict/internal/util"
)

func newTestServer(t *testing.T, corpus []string) *Server {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.Embedding.Dimension = 64
	cfg.Workers = 2

	provider := embed.NewLocal(cfg.Embedding.Dimension)
	idx := index.NewMemory()

	ctx := context.Background()
	for i, text := range corpus {
		vec, err := provider.Embed(ctx, text)
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		if err := idx.Insert(ctx, model.EvidenceItem{
			ID:        fmt.Sprintf("doc%d", i),
			Text:      text,
			Embedding: vec,
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	logger := util.NewLogger(false)
	p := pipeline.New(cfg, provider, idx, logger)
	return New(p, idx, cfg.Server, logger)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, []string{"The Eiffel Tower is located in Paris, France."})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %v", body["status"])
	}
	if body["documents"] != float64(1) {
		t.Errorf("expected 1 document, got %v", body["documents"])
	}
	if body["dimension"] != float64(64) {
		t.Errorf("expected dimension 64, got %v", body["dimension"])
	}
}

func TestVerifyEndpoint(t *testing.T) {
	s := newTestServer(t, []string{"The Eiffel Tower is located in Paris, France."})

	w := postJSON(t, s, "/v1/verify", map[string]string{
		"question": "Where is the Eiffel Tower?",
		"answer":   "The Eiffel Tower is located in Paris, France.",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result model.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Report.TruthfulnessScore != 100 {
		t.Errorf("expected score 100, got %.1f", result.Report.TruthfulnessScore)
	}
	if len(result.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(result.Records))
	}
}

func TestVerifyEndpoint_MissingAnswer(t *testing.T) {
	s := newTestServer(t, []string{"The Eiffel Tower is located in Paris, France."})

	w := postJSON(t, s, "/v1/verify", map[string]string{"question": "only a question"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestVerifyEndpoint_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, []string{"The Eiffel Tower is located in Paris, France."})
	s.cfg.MaxBodyBytes = 64

	w := postJSON(t, s, "/v1/verify", map[string]string{
		"answer": strings.Repeat("The Eiffel Tower is located in Paris. ", 50),
	})

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestBatchEndpoint_PreservesOrder(t *testing.T) {
	s := newTestServer(t, []string{
		"The Eiffel Tower is located in Paris, France.",
		"Mount Everest is the highest mountain on Earth.",
	})

	w := postJSON(t, s, "/v1/batch", map[string]any{
		"items": []map[string]string{
			{"question": "q1", "answer": "The Eiffel Tower is located in Paris, France."},
			{"question": "q2", "answer": "Mount Everest is the highest mountain on Earth."},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Results []struct {
			Index  int           `json:"index"`
			Result *model.Result `json:"result"`
			Error  string        `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(body.Results))
	}
	for i, item := range body.Results {
		if item.Index != i {
			t.Errorf("result %d has index %d", i, item.Index)
		}
		if item.Error != "" {
			t.Errorf("result %d: unexpected error %s", i, item.Error)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, []string{"The Eiffel Tower is located in Paris, France."})

	// Generate one observation first
	postJSON(t, s, "/v1/verify", map[string]string{
		"answer": "The Eiffel Tower is located in Paris, France.",
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"veridict_http_requests_total",
		"veridict_truthfulness_score",
		"veridict_evidence_items 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
