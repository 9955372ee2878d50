package repository

import (
	"context"
	"errors"

	"github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetSettings(ctx context.Context, db *gorm.DB) (*domain.FiscalSettings, error) {
	var settings domain.FiscalSettings
	err := db.WithContext(ctx).First(&settings, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed := domain.FiscalSettings{
			ID:                1,
			Environment:       domain.EnvTest,
			EstablishmentCode: "001",
			EmissionPoint:     "001",
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&seed).Error; err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).First(&settings, "id = ?", 1).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repo) SaveSettings(ctx context.Context, db *gorm.DB, settings *domain.FiscalSettings) error {
	return db.WithContext(ctx).Save(settings).Error
}

func (r *repo) GetCertificate(ctx context.Context, db *gorm.DB) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := db.WithContext(ctx).First(&cert, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *repo) SaveCertificate(ctx context.Context, db *gorm.DB, cert *domain.Certificate) error {
	cert.ID = 1
	return db.WithContext(ctx).Save(cert).Error
}

func (r *repo) NextSequential(ctx context.Context, db *gorm.DB, kind domain.DocKind, env domain.Environment) (int64, error) {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.FiscalSequence{DocKind: kind, Environment: env, Next: 0}).Error
	if err != nil {
		return 0, err
	}
	if err := db.WithContext(ctx).Exec(
		`UPDATE fiscal_sequences SET next = next + 1 WHERE doc_kind = ? AND environment = ?`,
		kind, env,
	).Error; err != nil {
		return 0, err
	}
	var next int64
	if err := db.WithContext(ctx).Raw(
		`SELECT next FROM fiscal_sequences WHERE doc_kind = ? AND environment = ?`,
		kind, env,
	).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
