package repository

import (
	"context"
	"errors"

	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"github.com/tecnomade/clouget-pos/internal/notification/domain"
	"github.com/tecnomade/clouget-pos/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, n *domain.QueuedNotification) error {
	return db.WithContext(ctx).Create(n).Error
}

func (r *repository) Save(ctx context.Context, db *gorm.DB, n *domain.QueuedNotification) error {
	return db.WithContext(ctx).Save(n).Error
}

func (r *repository) FindPendingByDocument(ctx context.Context, db *gorm.DB, kind fiscaldomain.DocKind, documentID int64) (*domain.QueuedNotification, error) {
	var n domain.QueuedNotification
	err := db.WithContext(ctx).
		Where("document_kind = ? AND document_id = ? AND state = ?", kind, documentID, domain.StatePending).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *repository) ListSweepable(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]domain.QueuedNotification, error) {
	var out []domain.QueuedNotification
	stmt := db.WithContext(ctx).
		Where("state = ? AND attempts < ?", domain.StatePending, maxAttempts).
		Order("created_at ASC")
	stmt = option.WithLimit(limit).Apply(stmt)
	err := stmt.Find(&out).Error
	return out, err
}

func (r *repository) List(ctx context.Context, db *gorm.DB, state domain.State) ([]domain.QueuedNotification, error) {
	var out []domain.QueuedNotification
	q := db.WithContext(ctx)
	if state != "" {
		q = q.Where("state = ?", state)
	}
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
