package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, note *CreditNote) error
	Save(ctx context.Context, db *gorm.DB, note *CreditNote) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*CreditNote, error)
	FindBySaleID(ctx context.Context, db *gorm.DB, saleID int64) (*CreditNote, error)
	List(ctx context.Context, db *gorm.DB) ([]CreditNote, error)
}
