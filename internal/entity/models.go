package entity

import "time"

// User is a credential record from the relational store.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the caller identity attached to the request context by the
// auth gate. API-key callers are admitted as an anonymous external client.
type Principal struct {
	UserID   string
	Username string
	IsAPIKey bool
}

// AnonymousAPIClient is the principal used for requests admitted via the
// static API key.
func AnonymousAPIClient() *Principal {
	return &Principal{
		Username: "api-client",
		IsAPIKey: true,
	}
}

// DocumentChunk maps a vector index datapoint back to its source text.
type DocumentChunk struct {
	DatapointID string
	Content     string
	Metadata    map[string]string
	CreatedAt   time.Time
}
