package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	CashSessionID string          `json:"cash_session_id"`
	Concept       string          `json:"concept"`
	Amount        decimal.Decimal `json:"amount"`
}

type Service interface {
	// Register records a cash outflow against an OPEN session.
	Register(ctx context.Context, req RegisterRequest) (Expense, error)
	ListBySession(ctx context.Context, sessionID string) ([]Expense, error)
}

var (
	ErrInvalidConcept = errors.New("invalid_concept")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidID      = errors.New("invalid_id")
	ErrSessionClosed  = errors.New("session_closed")
	ErrNotFound       = errors.New("not_found")
)
