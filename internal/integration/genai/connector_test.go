package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	pkghttp "github.com/nexly/rag-backend/pkg/http"
	"go.uber.org/zap"
)

func testConfig(url string) config.GenAIConnectorConfig {
	return config.GenAIConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:   url,
			Token: "test-api-key",
		},
		Model:         "gemini-2.0-flash",
		AllowedModels: []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"},
	}
}

func TestGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody entity.GenAIGenerateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}

		resp := entity.GenAIGenerateResponse{
			Candidates: []entity.GenAICandidate{
				{Content: entity.GenAIContent{Parts: []entity.GenAIPart{{Text: "generated reply"}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())

	reply, err := c.Generate(context.Background(), "a prompt", "gemini-2.0-flash-lite", 0.7)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if reply != "generated reply" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash-lite:generateContent" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotKey != "test-api-key" {
		t.Errorf("unexpected api key header: %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "a prompt" {
		t.Errorf("prompt not forwarded: %+v", gotBody)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.Temperature != 0.7 {
		t.Errorf("temperature not forwarded: %+v", gotBody.GenerationConfig)
	}
}

func TestGenerate_DisallowedModelFallsBack(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		resp := entity.GenAIGenerateResponse{
			Candidates: []entity.GenAICandidate{
				{Content: entity.GenAIContent{Parts: []entity.GenAIPart{{Text: "ok"}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())

	if _, err := c.Generate(context.Background(), "p", "not-a-real-model", 0.4); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("expected fallback to default model, got path %q", gotPath)
	}
}

func TestGenerate_JoinsMultipleParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := entity.GenAIGenerateResponse{
			Candidates: []entity.GenAICandidate{
				{Content: entity.GenAIContent{Parts: []entity.GenAIPart{
					{Text: "first "},
					{Text: "second"},
				}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())

	reply, err := c.Generate(context.Background(), "p", "", 0.4)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if reply != "first second" {
		t.Errorf("unexpected joined reply: %q", reply)
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.GenAIGenerateResponse{})
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())

	_, err := c.Generate(context.Background(), "p", "", 0.4)
	if !errors.Is(err, entity.ErrUpstreamFailed) {
		t.Fatalf("expected ErrUpstreamFailed, got %v", err)
	}
}

func TestGenerate_UpstreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())

	_, err := c.Generate(context.Background(), "p", "", 0.4)
	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected status: %d", httpErr.StatusCode)
	}
}
