package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceList struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	IsDefault bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceList) TableName() string { return "price_lists" }

type ProductPrice struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	PriceListID int64           `json:"price_list_id" gorm:"not null;uniqueIndex:ux_product_prices_list_product,priority:1"`
	ProductID   int64           `json:"product_id" gorm:"not null;uniqueIndex:ux_product_prices_list_product,priority:2"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductPrice) TableName() string { return "product_prices" }

// PriceSource says which step of the waterfall produced a resolved price.
type PriceSource string

const (
	SourceCustomerList PriceSource = "CUSTOMER_LIST"
	SourceDefaultList  PriceSource = "DEFAULT_LIST"
	SourceBase         PriceSource = "BASE"
)

type ResolvedPrice struct {
	ProductID int64           `json:"product_id,string"`
	Price     decimal.Decimal `json:"price"`
	Source    PriceSource     `json:"source"`
}
