package validator

import (
	"errors"
	"testing"

	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
)

func newTestValidator() *Validator {
	return NewValidator(config.VectorConnectorConfig{
		DefaultTopK: 5,
		MaxTopK:     50,
	})
}

func TestValidateChat(t *testing.T) {
	v := newTestValidator()
	bigTemp := 3.0
	okTemp := 0.7

	tests := []struct {
		name    string
		req     entity.ChatRequest
		wantErr error
	}{
		{"valid", entity.ChatRequest{Message: "hello"}, nil},
		{"valid with model and temperature", entity.ChatRequest{Message: "hi", Model: "model-alt", Temperature: &okTemp}, nil},
		{"empty message", entity.ChatRequest{Message: ""}, entity.ErrMissingField},
		{"whitespace message", entity.ChatRequest{Message: "   \n\t"}, entity.ErrMissingField},
		{"unknown model accepted, resolved at dispatch", entity.ChatRequest{Message: "hi", Model: "model-unknown"}, nil},
		{"temperature out of range", entity.ChatRequest{Message: "hi", Temperature: &bigTemp}, entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateChat(&tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateChat_TrimsMessage(t *testing.T) {
	v := newTestValidator()

	req := entity.ChatRequest{Message: "  hello  "}
	if err := v.ValidateChat(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Message != "hello" {
		t.Errorf("expected trimmed message, got %q", req.Message)
	}
}

func TestValidateVectorQuery(t *testing.T) {
	v := newTestValidator()

	t.Run("empty query rejected", func(t *testing.T) {
		req := entity.VectorQueryRequest{Query: "  "}
		if err := v.ValidateVectorQuery(&req); !errors.Is(err, entity.ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("default top-k applied", func(t *testing.T) {
		req := entity.VectorQueryRequest{Query: "search terms"}
		if err := v.ValidateVectorQuery(&req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.TopK != 5 {
			t.Errorf("expected default top_k 5, got %d", req.TopK)
		}
	})

	t.Run("top-k capped at maximum", func(t *testing.T) {
		req := entity.VectorQueryRequest{Query: "search terms", TopK: 500}
		if err := v.ValidateVectorQuery(&req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.TopK != 50 {
			t.Errorf("expected top_k capped at 50, got %d", req.TopK)
		}
	})

	t.Run("negative top-k rejected", func(t *testing.T) {
		req := entity.VectorQueryRequest{Query: "search terms", TopK: -1}
		if err := v.ValidateVectorQuery(&req); !errors.Is(err, entity.ErrInvalidParameter) {
			t.Fatalf("expected ErrInvalidParameter, got %v", err)
		}
	})
}
