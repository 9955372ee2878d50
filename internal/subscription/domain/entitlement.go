package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Entitlement is the remote server's verdict about this installation.
type Entitlement struct {
	Authorized    bool       `json:"authorized"`
	Plan          PlanKind   `json:"plan"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	RemainingDocs *int64     `json:"remaining_docs,omitempty"`
	Message       string     `json:"message,omitempty"`

	// Raw is the body exactly as the server sent it, kept for support
	// inspection of the cached verdict.
	Raw json.RawMessage `json:"-"`
}

// EntitlementClient fetches the current entitlement. Implementations
// must treat transport failures as retryable; the service falls back to
// the cached state within the offline grace window.
type EntitlementClient interface {
	Fetch(ctx context.Context) (Entitlement, error)
}
