package entity

// ObtainTokenRequest is the body of POST /api/token/
type ObtainTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPairResponse is returned on successful token issue.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshTokenRequest is the body of POST /api/token/refresh/
type RefreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

// AccessTokenResponse is returned on successful refresh.
type AccessTokenResponse struct {
	Access string `json:"access"`
}

// ErrorResponse is the structured JSON error body for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
