package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	cashdomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	cashrepo "github.com/tecnomade/clouget-pos/internal/cashsession/repository"
	"github.com/tecnomade/clouget-pos/internal/clock"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	customerrepo "github.com/tecnomade/clouget-pos/internal/customer/repository"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	pricelistrepo "github.com/tecnomade/clouget-pos/internal/pricelist/repository"
	pricelistservice "github.com/tecnomade/clouget-pos/internal/pricelist/service"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	productrepo "github.com/tecnomade/clouget-pos/internal/product/repository"
	"github.com/tecnomade/clouget-pos/internal/sale/domain"
	salerepo "github.com/tecnomade/clouget-pos/internal/sale/repository"
	saleservice "github.com/tecnomade/clouget-pos/internal/sale/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_sale_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Sale{},
		&domain.SaleLine{},
		&domain.SaleCounter{},
		&productdomain.Product{},
		&customerdomain.Customer{},
		&cashdomain.CashSession{},
		&pricelistdomain.PriceList{},
		&pricelistdomain.ProductPrice{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	priceSvc := pricelistservice.New(pricelistservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewSystemClock(),
		Repo:         pricelistrepo.Provide(),
		ProductRepo:  productrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})
	svc := saleservice.New(saleservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewSystemClock(),
		Repo:         salerepo.Provide(),
		ProductRepo:  productrepo.Provide(),
		CashRepo:     cashrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		Prices:       priceSvc,
	})

	return &fixture{db: db, node: node, svc: svc}
}

func (f *fixture) openSession(t *testing.T, operatorID string) cashdomain.CashSession {
	t.Helper()

	session := cashdomain.CashSession{
		ID:            f.node.Generate().Int64(),
		OperatorID:    operatorID,
		Status:        cashdomain.StatusOpen,
		InitialAmount: decimal.NewFromInt(100),
		OpenedAt:      time.Now().UTC(),
	}
	if err := f.db.Create(&session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func (f *fixture) seedProduct(t *testing.T, base, taxRate, stock string, isService bool) productdomain.Product {
	t.Helper()

	p := productdomain.Product{
		ID:        f.node.Generate().Int64(),
		Code:      fmt.Sprintf("P-%d", f.node.Generate().Int64()),
		Name:      "Cafe molido 400g",
		BasePrice: decimal.RequireFromString(base),
		TaxRate:   decimal.RequireFromString(taxRate),
		Stock:     decimal.RequireFromString(stock),
		IsService: isService,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (f *fixture) seedCustomer(t *testing.T) customerdomain.Customer {
	t.Helper()

	identification := "1712345678"
	c := customerdomain.Customer{
		ID:                 f.node.Generate(),
		Name:               "Maria Lopez",
		IdentificationKind: customerdomain.IdentificationCedula,
		Identification:     &identification,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if err := f.db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func TestCheckoutComputesTotalsAndConsumesStock(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	f.openSession(t, "op-1")

	taxedProduct := f.seedProduct(t, "10.00", "0.15", "5", false)
	untaxedProduct := f.seedProduct(t, "3.00", "0", "10", false)

	sale, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCash,
		Tendered:      decimal.RequireFromString("30.00"),
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(taxedProduct.ID).String(), Quantity: decimal.NewFromInt(2)},
			{ProductID: snowflake.ID(untaxedProduct.ID).String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// taxed: 2 x 10.00 = 20.00, tax 3.00; untaxed: 3.00; total 26.00
	if !sale.SubtotalTaxed.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("taxed subtotal: got %s", sale.SubtotalTaxed)
	}
	if !sale.SubtotalUntaxed.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("untaxed subtotal: got %s", sale.SubtotalUntaxed)
	}
	if !sale.TaxTotal.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("tax total: got %s", sale.TaxTotal)
	}
	if !sale.Total.Equal(decimal.RequireFromString("26.00")) {
		t.Fatalf("total: got %s", sale.Total)
	}
	if !sale.Change.Equal(decimal.RequireFromString("4.00")) {
		t.Fatalf("change: got %s", sale.Change)
	}
	if sale.Number != "NV-000000001" {
		t.Fatalf("expected NV-000000001, got %s", sale.Number)
	}
	if sale.FiscalState != fiscaldomain.StateNotApplicable {
		t.Fatalf("receipt must be NOT_APPLICABLE, got %s", sale.FiscalState)
	}

	var stock decimal.Decimal
	if err := f.db.Raw("SELECT stock FROM products WHERE id = ?", taxedProduct.ID).Scan(&stock).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if !stock.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected stock 3, got %s", stock)
	}

	second, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(untaxedProduct.ID).String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}
	if second.Number != "NV-000000002" {
		t.Fatalf("expected NV-000000002, got %s", second.Number)
	}
}

func TestCheckoutRequiresOpenSession(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	product := f.seedProduct(t, "1.00", "0", "10", false)

	_, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	if !errors.Is(err, domain.ErrNoOpenSession) {
		t.Fatalf("expected ErrNoOpenSession, got %v", err)
	}
}

func TestCheckoutInvoiceRequiresCustomerAndStartsUnsubmitted(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	f.openSession(t, "op-1")
	product := f.seedProduct(t, "5.00", "0.15", "10", false)

	_, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindInvoice,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	if !errors.Is(err, domain.ErrCustomerRequired) {
		t.Fatalf("expected ErrCustomerRequired, got %v", err)
	}

	customer := f.seedCustomer(t)
	sale, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		CustomerID:    customer.ID.String(),
		Kind:          domain.KindInvoice,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sale.FiscalState != fiscaldomain.StateUnsubmitted {
		t.Fatalf("invoice must start UNSUBMITTED, got %s", sale.FiscalState)
	}
}

func TestCheckoutRejectsInsufficientStockAndCash(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	f.openSession(t, "op-1")
	product := f.seedProduct(t, "10.00", "0", "1", false)

	_, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(2)},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	_, err = f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCash,
		Tendered:      decimal.RequireFromString("5.00"),
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientCash) {
		t.Fatalf("expected ErrInsufficientCash, got %v", err)
	}

	// failed checkouts must not leak stock
	var stock decimal.Decimal
	if err := f.db.Raw("SELECT stock FROM products WHERE id = ?", product.ID).Scan(&stock).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if !stock.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected stock 1 after rollbacks, got %s", stock)
	}
}

func TestVoidRestoresStockAndIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	f.openSession(t, "op-1")
	product := f.seedProduct(t, "2.00", "0", "10", false)

	sale, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	voided, err := f.svc.Void(ctx, snowflake.ID(sale.ID).String())
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != domain.StatusVoided {
		t.Fatalf("expected VOIDED, got %s", voided.Status)
	}

	var stock decimal.Decimal
	if err := f.db.Raw("SELECT stock FROM products WHERE id = ?", product.ID).Scan(&stock).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if !stock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected stock restored to 10, got %s", stock)
	}

	if _, err := f.svc.Void(ctx, snowflake.ID(sale.ID).String()); !errors.Is(err, domain.ErrAlreadyVoided) {
		t.Fatalf("expected ErrAlreadyVoided, got %v", err)
	}
}

func TestCheckoutResolvesCustomerListPrice(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	f.openSession(t, "op-1")

	product := f.seedProduct(t, "10.00", "0", "5", false)
	customer := f.seedCustomer(t)

	list := pricelistdomain.PriceList{
		ID:        f.node.Generate().Int64(),
		Name:      "Mayorista",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.db.Create(&list).Error; err != nil {
		t.Fatalf("seed list: %v", err)
	}
	override := pricelistdomain.ProductPrice{
		ID:          f.node.Generate().Int64(),
		PriceListID: list.ID,
		ProductID:   product.ID,
		Price:       decimal.RequireFromString("8.50"),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := f.db.Create(&override).Error; err != nil {
		t.Fatalf("seed override: %v", err)
	}
	err := f.db.Model(&customerdomain.Customer{}).
		Where("id = ?", customer.ID).
		Update("price_list_id", list.ID).Error
	if err != nil {
		t.Fatalf("attach list: %v", err)
	}

	sale, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		OperatorID:    "op-1",
		CustomerID:    customer.ID.String(),
		Kind:          domain.KindReceipt,
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.CheckoutLine{
			{ProductID: snowflake.ID(product.ID).String(), Quantity: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(sale.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(sale.Lines))
	}
	if !sale.Lines[0].UnitPrice.Equal(decimal.RequireFromString("8.50")) {
		t.Fatalf("unit price: got %s, want 8.50", sale.Lines[0].UnitPrice)
	}
	if !sale.Total.Equal(decimal.RequireFromString("17.00")) {
		t.Fatalf("total: got %s, want 17.00", sale.Total)
	}
}
