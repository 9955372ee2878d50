package domain

import (
	"time"

	"github.com/shopspring/decimal"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

type DocumentKind string

const (
	KindReceipt DocumentKind = "RECEIPT"
	KindInvoice DocumentKind = "INVOICE"
)

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusVoided    Status = "VOIDED"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentCredit   PaymentMethod = "CREDIT"
)

type Sale struct {
	ID            int64              `json:"id" gorm:"primaryKey"`
	Number        string             `json:"number" gorm:"type:text;not null;uniqueIndex:ux_sales_number"`
	CustomerID    *int64             `json:"customer_id,omitempty" gorm:"index"`
	OperatorID    string             `json:"operator_id" gorm:"type:text;not null"`
	CashSessionID int64              `json:"cash_session_id" gorm:"not null;index"`
	Kind          DocumentKind       `json:"kind" gorm:"type:text;not null"`
	Status        Status             `json:"status" gorm:"type:text;not null;default:'COMPLETED'"`
	PaymentMethod PaymentMethod      `json:"payment_method" gorm:"type:text;not null"`
	SubtotalUntaxed decimal.Decimal  `json:"subtotal_untaxed" gorm:"type:numeric(12,2);not null"`
	SubtotalTaxed   decimal.Decimal  `json:"subtotal_taxed" gorm:"type:numeric(12,2);not null"`
	Discount        decimal.Decimal  `json:"discount" gorm:"type:numeric(12,2);not null"`
	TaxTotal        decimal.Decimal  `json:"tax_total" gorm:"type:numeric(12,2);not null"`
	Total           decimal.Decimal  `json:"total" gorm:"type:numeric(12,2);not null"`
	Tendered        decimal.Decimal  `json:"tendered" gorm:"type:numeric(12,2);not null"`
	Change          decimal.Decimal  `json:"change" gorm:"type:numeric(12,2);not null"`
	FiscalState     fiscaldomain.State `json:"fiscal_state" gorm:"type:text;not null;index"`
	AuthorizationNumber *string      `json:"authorization_number,omitempty" gorm:"type:text"`
	AccessKey           *string      `json:"access_key,omitempty" gorm:"type:text"`
	LegalNumber         *string      `json:"legal_number,omitempty" gorm:"type:text"`
	// SignedPayload is the signed document exactly as submitted; kept so
	// re-emission resends the same bytes.
	SignedPayload    *string    `json:"-" gorm:"type:text"`
	FiscalMessage    *string    `json:"fiscal_message,omitempty" gorm:"type:text"`
	NotificationSent bool       `json:"notification_sent" gorm:"not null;default:false"`
	IssuedAt         time.Time  `json:"issued_at" gorm:"not null;index"`
	CreatedAt        time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	Lines            []SaleLine `json:"lines" gorm:"foreignKey:SaleID"`
}

func (Sale) TableName() string { return "sales" }

type SaleLine struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	SaleID      int64           `json:"sale_id" gorm:"not null;index"`
	ProductID   int64           `json:"product_id" gorm:"not null"`
	ProductCode string          `json:"product_code" gorm:"type:text;not null"`
	ProductName string          `json:"product_name" gorm:"type:text;not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);not null"`
	TaxRate     decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,4);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	TaxAmount   decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2);not null"`
	IsService   bool            `json:"is_service" gorm:"not null;default:false"`
}

func (SaleLine) TableName() string { return "sale_lines" }

// SaleCounter backs the NV sequence. Single row, bumped inside the
// checkout transaction.
type SaleCounter struct {
	ID   int64 `gorm:"primaryKey"`
	Next int64 `gorm:"not null"`
}

func (SaleCounter) TableName() string { return "sale_counters" }
