package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/tecnomade/clouget-pos/internal/clock"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	customerrepo "github.com/tecnomade/clouget-pos/internal/customer/repository"
	"github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	pricelistrepo "github.com/tecnomade/clouget-pos/internal/pricelist/repository"
	pricelistservice "github.com/tecnomade/clouget-pos/internal/pricelist/service"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	productrepo "github.com/tecnomade/clouget-pos/internal/product/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_pricelist_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.PriceList{},
		&domain.ProductPrice{},
		&productdomain.Product{},
		&customerdomain.Customer{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) (domain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	svc := pricelistservice.New(pricelistservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewSystemClock(),
		Repo:         pricelistrepo.Provide(),
		ProductRepo:  productrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})
	return svc, node
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, base string) productdomain.Product {
	t.Helper()

	p := productdomain.Product{
		ID:        node.Generate().Int64(),
		Code:      fmt.Sprintf("P-%d", time.Now().UnixNano()),
		Name:      "Gaseosa 500ml",
		BasePrice: decimal.RequireFromString(base),
		TaxRate:   decimal.RequireFromString("0.15"),
		Stock:     decimal.NewFromInt(100),
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestSetDefaultDemotesPreviousDefault(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newService(t, db)

	first, err := svc.CreateList(ctx, domain.CreateListRequest{Name: "Mayorista", IsDefault: true})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.CreateList(ctx, domain.CreateListRequest{Name: "Minorista"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	promoted, err := svc.SetDefault(ctx, snowflake.ID(second.ID).String())
	if err != nil {
		t.Fatalf("set default: %v", err)
	}
	if !promoted.IsDefault {
		t.Fatalf("expected promoted list to be default")
	}

	var defaults int64
	if err := db.Raw("SELECT COUNT(1) FROM price_lists WHERE is_default = ?", true).Scan(&defaults).Error; err != nil {
		t.Fatalf("count defaults: %v", err)
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default list, got %d", defaults)
	}

	demoted, err := svc.GetList(ctx, snowflake.ID(first.ID).String())
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if demoted.IsDefault {
		t.Fatalf("expected previous default demoted")
	}
}

func TestResolveWaterfall(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newService(t, db)

	product := seedProduct(t, db, node, "1.00")

	// no lists at all: base price
	resolved, err := svc.Resolve(ctx, domain.ResolveRequest{ProductID: snowflake.ID(product.ID).String()})
	if err != nil {
		t.Fatalf("resolve base: %v", err)
	}
	if resolved.Source != domain.SourceBase || !resolved.Price.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("expected base 1.00, got %s from %s", resolved.Price, resolved.Source)
	}

	defaultList, err := svc.CreateList(ctx, domain.CreateListRequest{Name: "General", IsDefault: true})
	if err != nil {
		t.Fatalf("create default list: %v", err)
	}
	_, err = svc.SetProductPrice(ctx, domain.SetProductPriceRequest{
		PriceListID: snowflake.ID(defaultList.ID).String(),
		ProductID:   snowflake.ID(product.ID).String(),
		Price:       decimal.RequireFromString("0.90"),
	})
	if err != nil {
		t.Fatalf("set default price: %v", err)
	}

	resolved, err = svc.Resolve(ctx, domain.ResolveRequest{ProductID: snowflake.ID(product.ID).String()})
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if resolved.Source != domain.SourceDefaultList || !resolved.Price.Equal(decimal.RequireFromString("0.90")) {
		t.Fatalf("expected default list 0.90, got %s from %s", resolved.Price, resolved.Source)
	}

	customerList, err := svc.CreateList(ctx, domain.CreateListRequest{Name: "VIP"})
	if err != nil {
		t.Fatalf("create customer list: %v", err)
	}
	_, err = svc.SetProductPrice(ctx, domain.SetProductPriceRequest{
		PriceListID: snowflake.ID(customerList.ID).String(),
		ProductID:   snowflake.ID(product.ID).String(),
		Price:       decimal.RequireFromString("0.80"),
	})
	if err != nil {
		t.Fatalf("set customer price: %v", err)
	}

	listID := snowflake.ID(customerList.ID)
	customer := customerdomain.Customer{
		ID:                 node.Generate(),
		Name:               "VIP Buyer",
		IdentificationKind: customerdomain.IdentificationCedula,
		PriceListID:        &listID,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	resolved, err = svc.Resolve(ctx, domain.ResolveRequest{
		ProductID:  snowflake.ID(product.ID).String(),
		CustomerID: customer.ID.String(),
	})
	if err != nil {
		t.Fatalf("resolve customer: %v", err)
	}
	if resolved.Source != domain.SourceCustomerList || !resolved.Price.Equal(decimal.RequireFromString("0.80")) {
		t.Fatalf("expected customer list 0.80, got %s from %s", resolved.Price, resolved.Source)
	}
}

func TestResolveCartFallsBackPerItem(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newService(t, db)

	priced := seedProduct(t, db, node, "2.50")
	unpriced := seedProduct(t, db, node, "4.75")

	defaultList, err := svc.CreateList(ctx, domain.CreateListRequest{Name: "General", IsDefault: true})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	_, err = svc.SetProductPrice(ctx, domain.SetProductPriceRequest{
		PriceListID: snowflake.ID(defaultList.ID).String(),
		ProductID:   snowflake.ID(priced.ID).String(),
		Price:       decimal.RequireFromString("2.00"),
	})
	if err != nil {
		t.Fatalf("set price: %v", err)
	}

	resolved, err := svc.ResolveCart(ctx, "", []domain.CartItem{
		{ProductID: snowflake.ID(priced.ID).String()},
		{ProductID: snowflake.ID(unpriced.ID).String()},
	})
	if err != nil {
		t.Fatalf("resolve cart: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved items, got %d", len(resolved))
	}
	if resolved[0].Source != domain.SourceDefaultList || !resolved[0].Price.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected list price for first item, got %s from %s", resolved[0].Price, resolved[0].Source)
	}
	if resolved[1].Source != domain.SourceBase || !resolved[1].Price.Equal(decimal.RequireFromString("4.75")) {
		t.Fatalf("expected base price for second item, got %s from %s", resolved[1].Price, resolved[1].Source)
	}
}
