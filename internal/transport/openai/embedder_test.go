package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

func embeddingBody(vec []float32, tokens int) map[string]any {
	return map[string]any{
		"object": "list",
		"model":  "test-embedding",
		"data": []map[string]any{
			{"object": "embedding", "embedding": vec, "index": 0},
		},
		"usage": map[string]any{"prompt_tokens": tokens, "total_tokens": tokens},
	}
}

func TestEmbedder_Embed(t *testing.T) {
	expectedVec := []float32{0.1, 0.2, 0.3, 0.4}
	var path string
	var body map[string]any
	srv := newAPIServer(t, http.StatusOK, embeddingBody(expectedVec, 7), &path, &body)

	cfg := newTestConfig(srv.URL)
	emb := NewEmbedder(NewClient(cfg), cfg)

	result, err := emb.Embed(context.Background(), "blue lamp")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if path != "/embeddings" {
		t.Errorf("unexpected path: %s", path)
	}
	if body["model"] != "test-embedding" {
		t.Errorf("unexpected model in request: %v", body["model"])
	}
	if len(result.Embedding) != len(expectedVec) {
		t.Fatalf("expected %d dimensions, got %d", len(expectedVec), len(result.Embedding))
	}
	for i, v := range result.Embedding {
		if v != expectedVec[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expectedVec[i])
		}
	}
	if result.TotalTokens != 7 || result.PromptTokens != 7 {
		t.Errorf("unexpected usage: %+v", result)
	}
}

func TestEmbedder_EmptyData(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, map[string]any{"object": "list", "data": []any{}}, nil, nil)

	cfg := newTestConfig(srv.URL)
	emb := NewEmbedder(NewClient(cfg), cfg)

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingFailure) {
		t.Fatalf("expected ErrEmbeddingFailure, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	srv := newAPIServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{
			"message": "rate limit exceeded",
			"type":    "rate_limit_error",
		},
	}, nil, nil)

	cfg := newTestConfig(srv.URL)
	emb := NewEmbedder(NewClient(cfg), cfg)

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingFailure) {
		t.Fatalf("expected ErrEmbeddingFailure, got %v", err)
	}
}

func TestEmbedder_Unreachable(t *testing.T) {
	cfg := newTestConfig("http://127.0.0.1:1")
	emb := NewEmbedder(NewClient(cfg), cfg)

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingFailure) {
		t.Fatalf("expected ErrEmbeddingFailure, got %v", err)
	}
}
