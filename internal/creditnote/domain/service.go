package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type BuildLine struct {
	SaleLineID string          `json:"sale_line_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type BuildRequest struct {
	SaleID string      `json:"-"`
	Reason string      `json:"reason"`
	Lines  []BuildLine `json:"lines"`
}

type Service interface {
	// Build validates and persists the note: source invoice must be
	// AUTHORIZED, at most one note per sale, quantities capped at the
	// original line, discounts prorated, totals split per tax bracket.
	// Stock is restored for non-service lines. Emission is a separate
	// step and its failure leaves the note retryable.
	Build(ctx context.Context, req BuildRequest) (CreditNote, error)
	Get(ctx context.Context, id string) (CreditNote, error)
	GetBySale(ctx context.Context, saleID string) (CreditNote, error)
	List(ctx context.Context) ([]CreditNote, error)
	// Brackets recomputes the per-rate totals of a stored note.
	Brackets(ctx context.Context, id string) ([]BracketTotal, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrSaleNotAuthorized   = errors.New("sale_not_authorized")
	ErrNoteExists          = errors.New("credit_note_exists")
	ErrEmptyReason         = errors.New("empty_reason")
	ErrNoLines             = errors.New("no_lines")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrQuantityExceedsSold = errors.New("quantity_exceeds_sold")
	ErrLineNotInSale       = errors.New("line_not_in_sale")
)
