package embed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moiesk/courserag/internal/model"
)

func TestEmbedBatchRequestAndResponse(t *testing.T) {
	var captured embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(`{"embeddings":[[1,0],[0,1]]}`))
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "")
	vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if captured.Model != DefaultModel {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Input) != 2 || captured.Input[0] != "alpha" {
		t.Errorf("input = %v", captured.Input)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("vectors = %v", vectors)
	}
}

func TestEmbedEmptyInputSkipsTheCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty input")
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "")
	vectors, err := client.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 0 {
		t.Fatalf("vectors = %v", vectors)
	}
}

func TestEmbedCountMismatchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,0]]}`))
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "")
	if _, err := client.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("count mismatch must fail")
	}
}

func TestEmbedAPIErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not loaded"))
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "")
	_, err := client.Embed(context.Background(), []string{"a"})
	var perr *model.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("want ProviderError, got %T", err)
	}
	if perr.Code != "EMBED_API_ERROR" || !perr.Retryable {
		t.Fatalf("got %+v", perr)
	}
}
