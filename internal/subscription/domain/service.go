package domain

import (
	"context"
)

// Decision is advisory: the emission orchestrator re-checks quota right
// before the counters move.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

const (
	ReasonTrialExhausted     = "trial_exhausted"
	ReasonPackageExhausted   = "package_exhausted"
	ReasonExpired            = "subscription_expired"
	ReasonNotAuthorized      = "not_authorized"
	ReasonValidationRequired = "validation_required"
)

type Service interface {
	// CanEmitInvoice checks the free allowance first, then the active
	// plan: lifetime, document package remaining, time-bound expiry.
	// Paid plans whose cache is older than the offline grace window
	// are denied.
	CanEmitInvoice(ctx context.Context) (Decision, error)
	// Validate refreshes the cache from the entitlement server. A
	// transport failure inside the grace window returns the cached
	// state; past the window the state is marked unauthorized.
	Validate(ctx context.Context) (SubscriptionState, error)
	// ConsumeDocument counts an authorized invoice against the free
	// allowance and, on a package plan, burns a purchased document.
	ConsumeDocument(ctx context.Context) error
	State(ctx context.Context) (SubscriptionState, error)
}
