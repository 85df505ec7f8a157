package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func embeddingServer(t *testing.T, vec []float32, tokens int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Input          []string `json:"input"`
			Model          string   `json:"model"`
			EncodingFormat string   `json:"encoding_format"`
			Dimensions     int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.EncodingFormat != "float" {
			t.Errorf("encoding_format = %q", req.EncodingFormat)
		}

		resp := embeddingResponse{Object: "list", Model: req.Model}
		if vec != nil {
			resp.Data = []embeddingData{{Object: "embedding", Embedding: vec}}
		}
		resp.Usage.PromptTokens = tokens
		resp.Usage.TotalTokens = tokens

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(url string) *Embedder {
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "text-embedding-3-small",
		Dimensions: 4,
		Provider:   "test",
		Logger:     zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	expected := []float32{0.1, 0.2, 0.3, 0.4}
	srv := embeddingServer(t, expected, 12)

	result, err := newTestEmbedder(srv.URL).Embed(context.Background(), "職種名: Railsエンジニア")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(result.Embedding) != len(expected) {
		t.Fatalf("expected %d dimensions, got %d", len(expected), len(result.Embedding))
	}
	for i, v := range result.Embedding {
		if v != expected[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expected[i])
		}
	}
	if result.PromptTokens != 12 || result.TotalTokens != 12 {
		t.Errorf("usage = %d/%d, expected 12/12", result.PromptTokens, result.TotalTokens)
	}
}

func TestEmbedder_DefaultModel(t *testing.T) {
	e := NewEmbedder(&Config{APIKey: "k"})
	if e.Model() != domain.DefaultEmbeddingModel {
		t.Errorf("Model() = %q", e.Model())
	}
}

func TestEmbedder_BlankTextSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "  \n ")
	if !errors.Is(err, domain.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network call, got %d", calls.Load())
	}
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	srv := embeddingServer(t, nil, 0)

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService for 429, got %v", err)
	}
}

func TestEmbedder_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewEmbedder(&Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService on timeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not honored: %s", time.Since(start))
	}
}

func TestParseAPIError_Detail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"model not found"}`))
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Errorf("expected ErrEmbeddingService, got %v", err)
	}
}
