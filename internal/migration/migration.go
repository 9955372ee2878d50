package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	cashsessiondomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	expensedomain "github.com/tecnomade/clouget-pos/internal/expense/domain"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	notificationdomain "github.com/tecnomade/clouget-pos/internal/notification/domain"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"gorm.io/gorm"
)

// This migration package makes a fresh install usable out of the box:
// all point-of-sale and fiscal tables are created on startup.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate covers the non-postgres dialects, where the versioned SQL
// driver does not apply. Local sqlite installs take this path.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&productdomain.Product{},
		&pricelistdomain.PriceList{},
		&pricelistdomain.ProductPrice{},
		&customerdomain.Customer{},
		&cashsessiondomain.CashSession{},
		&expensedomain.Expense{},
		&saledomain.Sale{},
		&saledomain.SaleLine{},
		&saledomain.SaleCounter{},
		&fiscaldomain.FiscalSettings{},
		&fiscaldomain.Certificate{},
		&fiscaldomain.FiscalSequence{},
		&creditnotedomain.CreditNote{},
		&creditnotedomain.CreditNoteLine{},
		&subscriptiondomain.SubscriptionState{},
		&notificationdomain.QueuedNotification{},
	)
}
