package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *CashSession) error
	Save(ctx context.Context, db *gorm.DB, session *CashSession) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*CashSession, error)
	FindOpenByOperator(ctx context.Context, db *gorm.DB, operatorID string) (*CashSession, error)
	List(ctx context.Context, db *gorm.DB, operatorID string) ([]CashSession, error)
	// SumCashSales totals completed cash sales for the session.
	SumCashSales(ctx context.Context, db *gorm.DB, sessionID int64) (decimal.Decimal, error)
	// SumExpenses totals expenses registered against the session.
	SumExpenses(ctx context.Context, db *gorm.DB, sessionID int64) (decimal.Decimal, error)
}
