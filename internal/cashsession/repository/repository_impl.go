package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.CashSession) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, session *domain.CashSession) error {
	return db.WithContext(ctx).Save(session).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.CashSession, error) {
	var session domain.CashSession
	err := db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) FindOpenByOperator(ctx context.Context, db *gorm.DB, operatorID string) (*domain.CashSession, error) {
	var session domain.CashSession
	err := db.WithContext(ctx).
		First(&session, "operator_id = ? AND status = ?", operatorID, domain.StatusOpen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, operatorID string) ([]domain.CashSession, error) {
	var sessions []domain.CashSession
	stmt := db.WithContext(ctx).Model(&domain.CashSession{})
	if operatorID != "" {
		stmt = stmt.Where("operator_id = ?", operatorID)
	}
	if err := stmt.Order("opened_at desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) SumCashSales(ctx context.Context, db *gorm.DB, sessionID int64) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Raw(
		`SELECT SUM(total) FROM sales
		 WHERE cash_session_id = ? AND payment_method = ? AND status = ?`,
		sessionID,
		"CASH",
		"COMPLETED",
	).Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repo) SumExpenses(ctx context.Context, db *gorm.DB, sessionID int64) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Raw(
		`SELECT SUM(amount) FROM expenses WHERE cash_session_id = ?`,
		sessionID,
	).Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
