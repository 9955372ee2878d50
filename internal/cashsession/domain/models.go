package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

type CashSession struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	OperatorID    string `json:"operator_id" gorm:"type:text;not null;index"`
	Status        Status `json:"status" gorm:"type:text;not null;default:'OPEN';index"`
	InitialAmount decimal.Decimal `json:"initial_amount" gorm:"type:numeric(12,2);not null"`
	// Filled on close.
	CountedAmount  *decimal.Decimal `json:"counted_amount,omitempty" gorm:"type:numeric(12,2)"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty" gorm:"type:numeric(12,2)"`
	Difference     *decimal.Decimal `json:"difference,omitempty" gorm:"type:numeric(12,2)"`
	Note           *string          `json:"note,omitempty" gorm:"type:text"`
	OpenedAt       time.Time        `json:"opened_at" gorm:"not null"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

func (CashSession) TableName() string { return "cash_sessions" }

// Summary is the reconciliation snapshot for one session.
type Summary struct {
	SessionID      int64           `json:"session_id,string"`
	InitialAmount  decimal.Decimal `json:"initial_amount"`
	CashSalesTotal decimal.Decimal `json:"cash_sales_total"`
	ExpensesTotal  decimal.Decimal `json:"expenses_total"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
}
