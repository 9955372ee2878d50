package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByCode(ctx context.Context, code string) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*Response, error)
}

type ListRequest struct {
	Name    string
	Active  *bool
	SortBy  string
	OrderBy string
}

type CreateRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	TaxRate     decimal.Decimal  `json:"tax_rate"`
	Stock       *decimal.Decimal `json:"stock"`
	IsService   *bool            `json:"is_service"`
	Active      *bool            `json:"active"`
}

type UpdateRequest struct {
	ID          string           `json:"-"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	Active      *bool            `json:"active"`
}

type AdjustStockRequest struct {
	ID string `json:"-"`
	// Delta is added to the current stock; negative values consume.
	Delta decimal.Decimal `json:"delta"`
}

type Response struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Stock       decimal.Decimal `json:"stock"`
	IsService   bool            `json:"is_service"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

var (
	ErrInvalidCode      = errors.New("invalid_code")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidTaxRate   = errors.New("invalid_tax_rate")
	ErrDuplicateCode    = errors.New("duplicate_code")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
