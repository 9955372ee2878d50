package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	GetSettings(ctx context.Context, db *gorm.DB) (*FiscalSettings, error)
	SaveSettings(ctx context.Context, db *gorm.DB, settings *FiscalSettings) error
	GetCertificate(ctx context.Context, db *gorm.DB) (*Certificate, error)
	SaveCertificate(ctx context.Context, db *gorm.DB, cert *Certificate) error
	// NextSequential bumps the (kind, environment) counter inside the
	// caller's transaction.
	NextSequential(ctx context.Context, db *gorm.DB, kind DocKind, env Environment) (int64, error)
}
