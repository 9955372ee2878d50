package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertList(ctx context.Context, db *gorm.DB, list *PriceList) error
	SaveList(ctx context.Context, db *gorm.DB, list *PriceList) error
	FindListByID(ctx context.Context, db *gorm.DB, id int64) (*PriceList, error)
	FindDefaultList(ctx context.Context, db *gorm.DB) (*PriceList, error)
	ListLists(ctx context.Context, db *gorm.DB) ([]PriceList, error)
	ClearDefault(ctx context.Context, db *gorm.DB) error

	UpsertPrice(ctx context.Context, db *gorm.DB, price *ProductPrice) error
	DeletePrice(ctx context.Context, db *gorm.DB, priceListID, productID int64) error
	FindPrice(ctx context.Context, db *gorm.DB, priceListID, productID int64) (*ProductPrice, error)
	ListPrices(ctx context.Context, db *gorm.DB, priceListID int64) ([]ProductPrice, error)
}
