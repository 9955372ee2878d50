package domain

import (
	"context"
	"errors"

	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

// DeferredPrefix marks a provider error that means "not now": the
// notification is queued for the sweep instead of being retried inline.
const DeferredPrefix = "DEFERRED:"

type SendRequest struct {
	DocumentKind fiscaldomain.DocKind
	DocumentID   int64
	Address      string
	Subject      string
	Body         string
}

type SweepResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type Service interface {
	// SendOrQueue tries immediate delivery. A deferred provider answer
	// queues the notification; at most one PENDING entry exists per
	// document.
	SendOrQueue(ctx context.Context, req SendRequest) (QueuedNotification, error)
	// Sweep retries queued notifications oldest first, up to the batch
	// size. The attempt that reaches MaxAttempts marks the entry FAILED.
	Sweep(ctx context.Context) (SweepResult, error)
	List(ctx context.Context, state State) ([]QueuedNotification, error)
}

var (
	ErrEmptyAddress = errors.New("empty_address")
)
