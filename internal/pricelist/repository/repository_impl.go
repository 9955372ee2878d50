package repository

import (
	"context"
	"errors"

	"github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertList(ctx context.Context, db *gorm.DB, list *domain.PriceList) error {
	return db.WithContext(ctx).Create(list).Error
}

func (r *repo) SaveList(ctx context.Context, db *gorm.DB, list *domain.PriceList) error {
	return db.WithContext(ctx).Save(list).Error
}

func (r *repo) FindListByID(ctx context.Context, db *gorm.DB, id int64) (*domain.PriceList, error) {
	var list domain.PriceList
	err := db.WithContext(ctx).First(&list, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repo) FindDefaultList(ctx context.Context, db *gorm.DB) (*domain.PriceList, error) {
	var list domain.PriceList
	err := db.WithContext(ctx).First(&list, "is_default = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repo) ListLists(ctx context.Context, db *gorm.DB) ([]domain.PriceList, error) {
	var lists []domain.PriceList
	err := db.WithContext(ctx).
		Model(&domain.PriceList{}).
		Order("created_at asc").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repo) ClearDefault(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		`UPDATE price_lists SET is_default = ?, updated_at = CURRENT_TIMESTAMP WHERE is_default = ?`,
		false,
		true,
	).Error
}

func (r *repo) UpsertPrice(ctx context.Context, db *gorm.DB, price *domain.ProductPrice) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "price_list_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(price).Error
}

func (r *repo) DeletePrice(ctx context.Context, db *gorm.DB, priceListID, productID int64) error {
	return db.WithContext(ctx).
		Where("price_list_id = ? AND product_id = ?", priceListID, productID).
		Delete(&domain.ProductPrice{}).Error
}

func (r *repo) FindPrice(ctx context.Context, db *gorm.DB, priceListID, productID int64) (*domain.ProductPrice, error) {
	var price domain.ProductPrice
	err := db.WithContext(ctx).
		First(&price, "price_list_id = ? AND product_id = ?", priceListID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repo) ListPrices(ctx context.Context, db *gorm.DB, priceListID int64) ([]domain.ProductPrice, error) {
	var prices []domain.ProductPrice
	err := db.WithContext(ctx).
		Model(&domain.ProductPrice{}).
		Where("price_list_id = ?", priceListID).
		Order("product_id asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
