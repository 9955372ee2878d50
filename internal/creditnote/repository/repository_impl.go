package repository

import (
	"context"
	"errors"

	"github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, note *domain.CreditNote) error {
	return db.WithContext(ctx).Create(note).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, note *domain.CreditNote) error {
	return db.WithContext(ctx).Omit("Lines").Save(note).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.CreditNote, error) {
	var note domain.CreditNote
	err := db.WithContext(ctx).Preload("Lines").First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repo) FindBySaleID(ctx context.Context, db *gorm.DB, saleID int64) (*domain.CreditNote, error) {
	var note domain.CreditNote
	err := db.WithContext(ctx).Preload("Lines").First(&note, "sale_id = ?", saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.CreditNote, error) {
	var notes []domain.CreditNote
	err := db.WithContext(ctx).
		Preload("Lines").
		Order("created_at desc").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
