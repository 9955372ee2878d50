package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateListRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

type SetProductPriceRequest struct {
	PriceListID string          `json:"-"`
	ProductID   string          `json:"product_id"`
	Price       decimal.Decimal `json:"price"`
}

type RemoveProductPriceRequest struct {
	PriceListID string `json:"-"`
	ProductID   string `json:"product_id"`
}

type ResolveRequest struct {
	ProductID  string
	CustomerID string
}

type CartItem struct {
	ProductID string `json:"product_id"`
}

type Service interface {
	CreateList(ctx context.Context, req CreateListRequest) (PriceList, error)
	ListLists(ctx context.Context) ([]PriceList, error)
	GetList(ctx context.Context, id string) (PriceList, error)
	// SetDefault promotes one list and demotes the previous default in the
	// same transaction, so there is never more than one default.
	SetDefault(ctx context.Context, id string) (PriceList, error)
	SetProductPrice(ctx context.Context, req SetProductPriceRequest) (ProductPrice, error)
	RemoveProductPrice(ctx context.Context, req RemoveProductPriceRequest) error
	ListPrices(ctx context.Context, priceListID string) ([]ProductPrice, error)
	// Resolve walks customer list, then default list, then the product
	// base price.
	Resolve(ctx context.Context, req ResolveRequest) (ResolvedPrice, error)
	// ResolveCart resolves every item; a failed waterfall step degrades to
	// the base price instead of failing the cart.
	ResolveCart(ctx context.Context, customerID string, items []CartItem) ([]ResolvedPrice, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrNotFound     = errors.New("not_found")
)
