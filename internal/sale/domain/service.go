package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutLine struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	// UnitPrice overrides the resolver when set.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
}

type CheckoutRequest struct {
	OperatorID    string          `json:"operator_id"`
	CustomerID    string          `json:"customer_id"`
	Kind          DocumentKind    `json:"kind"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Tendered      decimal.Decimal `json:"tendered"`
	Discount      decimal.Decimal `json:"discount"`
	Lines         []CheckoutLine  `json:"lines"`
}

type ListByDayRequest struct {
	Day time.Time
}

type Service interface {
	// Checkout creates the sale and its lines atomically: open session
	// required, prices resolved when not supplied, stock consumed for
	// non-service products, NV number assigned from the counter.
	Checkout(ctx context.Context, req CheckoutRequest) (Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	ListByDay(ctx context.Context, req ListByDayRequest) ([]Sale, error)
	ListBySession(ctx context.Context, sessionID string) ([]Sale, error)
	// Void cancels a sale that was never authorized and restores stock.
	Void(ctx context.Context, id string) (Sale, error)
}

var (
	ErrInvalidOperator   = errors.New("invalid_operator")
	ErrInvalidKind       = errors.New("invalid_kind")
	ErrInvalidPayment    = errors.New("invalid_payment_method")
	ErrEmptyCart         = errors.New("empty_cart")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidDiscount   = errors.New("invalid_discount")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrNoOpenSession     = errors.New("no_open_session")
	ErrCustomerRequired  = errors.New("customer_required")
	ErrProductInactive   = errors.New("product_inactive")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrInsufficientCash  = errors.New("insufficient_cash_tendered")
	ErrAlreadyVoided     = errors.New("already_voided")
	ErrAuthorizedSale    = errors.New("sale_already_authorized")
)
