package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Code        string          `json:"code" gorm:"type:text;not null;uniqueIndex:ux_products_code"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	Description *string         `json:"description,omitempty" gorm:"type:text"`
	BasePrice   decimal.Decimal `json:"base_price" gorm:"type:numeric(12,2);not null"`
	// TaxRate is the VAT fraction applied to the line, e.g. 0.15.
	TaxRate   decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,4);not null"`
	Stock     decimal.Decimal `json:"stock" gorm:"type:numeric(12,3);not null;default:0"`
	IsService bool            `json:"is_service" gorm:"not null;default:false"`
	Active    bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
