package dto

import "encoding/json"

// NotifyRequest is the trusted-ingress body. The payload stays opaque to the
// gateway beyond its target subject.
type NotifyRequest struct {
	Notification json.RawMessage `json:"notification"`
}

// NotifyResponse acknowledges a dispatch.
type NotifyResponse struct {
	Status string `json:"status"`
}

// VerifyTokenResponse is the introspection result.
type VerifyTokenResponse struct {
	Valid bool      `json:"valid"`
	User  *TokenRef `json:"user,omitempty"`
	Error string    `json:"error,omitempty"`
}

// TokenRef identifies the subject a valid token belongs to.
type TokenRef struct {
	ID int64 `json:"id"`
}
