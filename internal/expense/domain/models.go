package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	CashSessionID int64           `json:"cash_session_id" gorm:"not null;index"`
	Concept       string          `json:"concept" gorm:"type:text;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Expense) TableName() string { return "expenses" }
