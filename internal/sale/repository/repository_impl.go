package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tecnomade/clouget-pos/internal/sale/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Omit("Lines").Save(sale).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).Preload("Lines").First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repo) ListByDay(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("issued_at >= ? AND issued_at < ?", from, to).
		Order("issued_at asc").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) ListBySession(ctx context.Context, db *gorm.DB, sessionID int64) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("cash_session_id = ?", sessionID).
		Order("issued_at asc").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) NextNumber(ctx context.Context, db *gorm.DB) (int64, error) {
	// seed once, then bump; ON CONFLICT keeps this idempotent across
	// concurrent first checkouts
	err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.SaleCounter{ID: 1, Next: 0}).Error
	if err != nil {
		return 0, err
	}
	if err := db.WithContext(ctx).Exec(
		`UPDATE sale_counters SET next = next + 1 WHERE id = 1`,
	).Error; err != nil {
		return 0, err
	}
	var next int64
	if err := db.WithContext(ctx).Raw(
		`SELECT next FROM sale_counters WHERE id = 1`,
	).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
