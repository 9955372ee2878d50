package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type OpenRequest struct {
	OperatorID    string          `json:"operator_id"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
}

type CloseRequest struct {
	SessionID     string          `json:"-"`
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Note          string          `json:"note"`
}

// CloseResult carries the reconciliation outcome. Closing a session also
// signs the operator out, so callers must treat ForceSignOut as terminal
// for the device session.
type CloseResult struct {
	Session      CashSession `json:"session"`
	ForceSignOut bool        `json:"force_sign_out"`
}

type Service interface {
	// Open starts a session for the operator. At most one OPEN session
	// per operator may exist.
	Open(ctx context.Context, req OpenRequest) (CashSession, error)
	// Close reconciles: expected = initial + cash sales - expenses,
	// difference = counted - expected. Closed sessions are terminal.
	Close(ctx context.Context, req CloseRequest) (CloseResult, error)
	Get(ctx context.Context, id string) (CashSession, error)
	// CurrentFor returns the operator's OPEN session, or ErrNoOpenSession.
	CurrentFor(ctx context.Context, operatorID string) (CashSession, error)
	Summary(ctx context.Context, id string) (Summary, error)
	List(ctx context.Context, operatorID string) ([]CashSession, error)
}

var (
	ErrInvalidOperator   = errors.New("invalid_operator")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrAlreadyOpen       = errors.New("session_already_open")
	ErrAlreadyClosed     = errors.New("session_already_closed")
	ErrNoOpenSession     = errors.New("no_open_session")
)
