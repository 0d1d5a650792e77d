package validator

import (
	"fmt"
	"strings"

	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
)

// Validator validates incoming API requests
type Validator struct {
	vectorCfg config.VectorConnectorConfig
}

func NewValidator(vectorCfg config.VectorConnectorConfig) *Validator {
	return &Validator{
		vectorCfg: vectorCfg,
	}
}

// ValidateObtainToken validates ObtainTokenRequest
func (v *Validator) ValidateObtainToken(req *entity.ObtainTokenRequest) error {
	if req.Username == "" {
		return fmt.Errorf("%w: username", entity.ErrMissingField)
	}
	if req.Password == "" {
		return fmt.Errorf("%w: password", entity.ErrMissingField)
	}

	return nil
}

// ValidateRefreshToken validates RefreshTokenRequest
func (v *Validator) ValidateRefreshToken(req *entity.RefreshTokenRequest) error {
	if req.Refresh == "" {
		return fmt.Errorf("%w: refresh", entity.ErrMissingField)
	}

	return nil
}

// ValidateChat validates ChatRequest and normalizes the message. The model
// name is not validated here: an unknown model silently falls back to the
// default at dispatch time.
func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return fmt.Errorf("%w: temperature must be between 0 and 2, got %v", entity.ErrInvalidParameter, *req.Temperature)
	}

	return nil
}

// ValidateVectorQuery validates VectorQueryRequest, filling in the default
// top-k and capping it at the configured maximum.
func (v *Validator) ValidateVectorQuery(req *entity.VectorQueryRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}

	if req.TopK < 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", entity.ErrInvalidParameter, req.TopK)
	}

	if req.TopK == 0 {
		req.TopK = v.vectorCfg.DefaultTopK
	}

	if req.TopK > v.vectorCfg.MaxTopK {
		req.TopK = v.vectorCfg.MaxTopK
	}

	return nil
}
