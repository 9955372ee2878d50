package repository

import (
	"context"
	"errors"

	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*subscriptiondomain.SubscriptionState, error) {
	var state subscriptiondomain.SubscriptionState
	err := db.WithContext(ctx).First(&state, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed := subscriptiondomain.SubscriptionState{
			ID:   1,
			Plan: subscriptiondomain.PlanTrial,
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&seed).Error; err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).First(&state, "id = ?", 1).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, state *subscriptiondomain.SubscriptionState) error {
	return db.WithContext(ctx).Save(state).Error
}
