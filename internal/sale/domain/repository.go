package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	Save(ctx context.Context, db *gorm.DB, sale *Sale) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Sale, error)
	ListByDay(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Sale, error)
	ListBySession(ctx context.Context, db *gorm.DB, sessionID int64) ([]Sale, error)
	// NextNumber advances the NV counter inside the caller's transaction.
	NextNumber(ctx context.Context, db *gorm.DB) (int64, error)
}
