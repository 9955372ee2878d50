package domain

import (
	"time"

	"github.com/shopspring/decimal"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

type CreditNote struct {
	ID     int64 `json:"id" gorm:"primaryKey"`
	// One credit note per sale, enforced at the schema level too.
	SaleID     int64  `json:"sale_id" gorm:"not null;uniqueIndex:ux_credit_notes_sale"`
	CustomerID int64  `json:"customer_id" gorm:"not null;index"`
	Reason     string `json:"reason" gorm:"type:text;not null"`
	SubtotalUntaxed decimal.Decimal `json:"subtotal_untaxed" gorm:"type:numeric(12,2);not null"`
	SubtotalTaxed   decimal.Decimal `json:"subtotal_taxed" gorm:"type:numeric(12,2);not null"`
	TaxTotal        decimal.Decimal `json:"tax_total" gorm:"type:numeric(12,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	FiscalState         fiscaldomain.State `json:"fiscal_state" gorm:"type:text;not null;index"`
	AuthorizationNumber *string            `json:"authorization_number,omitempty" gorm:"type:text"`
	AccessKey           *string            `json:"access_key,omitempty" gorm:"type:text"`
	LegalNumber         *string            `json:"legal_number,omitempty" gorm:"type:text"`
	SignedPayload       *string            `json:"-" gorm:"type:text"`
	FiscalMessage       *string            `json:"fiscal_message,omitempty" gorm:"type:text"`
	NotificationSent    bool               `json:"notification_sent" gorm:"not null;default:false"`
	IssuedAt            time.Time          `json:"issued_at" gorm:"not null"`
	CreatedAt           time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	Lines               []CreditNoteLine   `json:"lines" gorm:"foreignKey:CreditNoteID"`
}

func (CreditNote) TableName() string { return "credit_notes" }

type CreditNoteLine struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	CreditNoteID int64           `json:"credit_note_id" gorm:"not null;index"`
	SaleLineID   int64           `json:"sale_line_id" gorm:"not null"`
	ProductID    int64           `json:"product_id" gorm:"not null"`
	ProductCode  string          `json:"product_code" gorm:"type:text;not null"`
	ProductName  string          `json:"product_name" gorm:"type:text;not null"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Discount     decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);not null"`
	TaxRate      decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,4);not null"`
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	TaxAmount    decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2);not null"`
	IsService    bool            `json:"is_service" gorm:"not null;default:false"`
}

func (CreditNoteLine) TableName() string { return "credit_note_lines" }

// BracketTotal is the taxable base and tax for one rate bracket.
type BracketTotal struct {
	Rate     decimal.Decimal `json:"rate"`
	Base     decimal.Decimal `json:"base"`
	Tax      decimal.Decimal `json:"tax"`
}
