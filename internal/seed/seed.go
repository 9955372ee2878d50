package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	"gorm.io/gorm"
)

const (
	defaultConsumerName  = "CONSUMIDOR FINAL"
	defaultPriceListName = "General"
)

// EnsureDefaults seeds the records a fresh install needs: the anonymous
// final-consumer customer and a default price list.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureFinalConsumerTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureDefaultPriceListTx(ctx, tx, node)
	})
}

func ensureFinalConsumerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&customerdomain.Customer{}).
		Where("identification_kind = ?", customerdomain.IdentificationConsumer).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	consumer := customerdomain.Customer{
		ID:                 node.Generate(),
		Name:               defaultConsumerName,
		IdentificationKind: customerdomain.IdentificationConsumer,
	}
	return tx.WithContext(ctx).Create(&consumer).Error
}

func ensureDefaultPriceListTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&pricelistdomain.PriceList{}).
		Where("is_default = ?", true).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	list := pricelistdomain.PriceList{
		ID:        node.Generate().Int64(),
		Name:      defaultPriceListName,
		IsDefault: true,
	}
	return tx.WithContext(ctx).Create(&list).Error
}
