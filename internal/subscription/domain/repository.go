package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Get returns the single state row, creating the default trial row
	// on first use.
	Get(ctx context.Context, db *gorm.DB) (*SubscriptionState, error)
	Save(ctx context.Context, db *gorm.DB, state *SubscriptionState) error
}
