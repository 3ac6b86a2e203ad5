package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veridict/veridict/internal/model"
)

func TestNewProvider_Selection(t *testing.T) {
	tests := []struct {
		provider string
		wantNil  bool
		wantErr  bool
	}{
		{"", true, false},
		{"none", true, false},
		{"openai", false, false},
		{"anthropic", false, false},
		{"claude", false, false},
		{"ollama", false, false},
		{"watson", false, true},
	}

	for _, tt := range tests {
		p, err := NewProvider(model.LLMConfig{Provider: tt.provider, APIKey: "test-key"})
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got provider %v", tt.provider, p)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.provider, err)
			continue
		}
		if (p == nil) != tt.wantNil {
			t.Errorf("%q: expected nil=%v, got %v", tt.provider, tt.wantNil, p)
		}
	}
}

func TestNewProvider_MissingKeyIsConfigError(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic"} {
		_, err := NewProvider(model.LLMConfig{Provider: provider})
		if err == nil {
			t.Errorf("%q: expected config error without API key", provider)
		}
	}
}

func TestOllama_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Response: "The Eiffel Tower is in Paris.",
			Done:     true,
		})
	}))
	defer server.Close()

	p, err := NewOllama(model.LLMConfig{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	answer, err := p.Generate(context.Background(), "Where is the Eiffel Tower?")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "The Eiffel Tower is in Paris." {
		t.Errorf("Unexpected answer: %q", answer)
	}
}

func TestOllama_RetriesServerErrors(t *testing.T) {
	sleepFunc = func(time.Duration) {}
	defer func() { sleepFunc = time.Sleep }()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "recovered", Done: true})
	}))
	defer server.Close()

	p, err := NewOllama(model.LLMConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	answer, err := p.Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Expected retries to recover, got %v", err)
	}
	if answer != "recovered" {
		t.Errorf("Unexpected answer: %q", answer)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestAnthropic_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header")
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Paris is the capital of France."}]}`))
	}))
	defer server.Close()

	p, err := NewAnthropic(model.LLMConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	answer, err := p.Generate(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "Paris is the capital of France." {
		t.Errorf("Unexpected answer: %q", answer)
	}
}

func TestAnthropic_ClientErrorIsNotRetried(t *testing.T) {
	sleepFunc = func(time.Duration) {}
	defer func() { sleepFunc = time.Sleep }()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid key"}}`))
	}))
	defer server.Close()

	p, err := NewAnthropic(model.LLMConfig{APIKey: "bad-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	if _, err := p.Generate(context.Background(), "anything"); err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected no retries on 401, got %d calls", calls)
	}
}
