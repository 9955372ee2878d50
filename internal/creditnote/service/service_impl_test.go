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
	"github.com/tecnomade/clouget-pos/internal/clock"
	"github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	creditnoterepo "github.com/tecnomade/clouget-pos/internal/creditnote/repository"
	creditnoteservice "github.com/tecnomade/clouget-pos/internal/creditnote/service"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	productrepo "github.com/tecnomade/clouget-pos/internal/product/repository"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	salerepo "github.com/tecnomade/clouget-pos/internal/sale/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubFiscal lets tests script the emission outcome without an authority.
type stubFiscal struct {
	emitErr   error
	emitCalls int
}

func (f *stubFiscal) EmitInvoice(context.Context, string) (fiscaldomain.EmitResult, error) {
	return fiscaldomain.EmitResult{}, nil
}

func (f *stubFiscal) EmitCreditNote(context.Context, string) (fiscaldomain.EmitResult, error) {
	f.emitCalls++
	if f.emitErr != nil {
		return fiscaldomain.EmitResult{}, f.emitErr
	}
	return fiscaldomain.EmitResult{Success: true, State: fiscaldomain.StateAuthorized}, nil
}

func (f *stubFiscal) Status(context.Context) (fiscaldomain.StatusResponse, error) {
	return fiscaldomain.StatusResponse{}, nil
}

func (f *stubFiscal) SetEnvironment(context.Context, fiscaldomain.Environment) (fiscaldomain.FiscalSettings, error) {
	return fiscaldomain.FiscalSettings{}, nil
}

func (f *stubFiscal) ConfirmEnvironment(context.Context) (fiscaldomain.FiscalSettings, error) {
	return fiscaldomain.FiscalSettings{}, nil
}

func (f *stubFiscal) UpdateSettings(context.Context, fiscaldomain.UpdateSettingsRequest) (fiscaldomain.FiscalSettings, error) {
	return fiscaldomain.FiscalSettings{}, nil
}

func (f *stubFiscal) UploadCertificate(context.Context, fiscaldomain.UploadCertificateRequest) error {
	return nil
}

func (f *stubFiscal) Settings(context.Context) (fiscaldomain.FiscalSettings, error) {
	return fiscaldomain.FiscalSettings{}, nil
}

type fixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	fiscal *stubFiscal
	svc    domain.Service
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_creditnote_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&saledomain.Sale{},
		&saledomain.SaleLine{},
		&productdomain.Product{},
		&domain.CreditNote{},
		&domain.CreditNoteLine{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	fiscal := &stubFiscal{}
	svc := creditnoteservice.New(creditnoteservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewSystemClock(),
		Repo:        creditnoterepo.Provide(),
		SaleRepo:    salerepo.Provide(),
		ProductRepo: productrepo.Provide(),
		Fiscal:      fiscal,
	})

	return &fixture{db: db, node: node, fiscal: fiscal, svc: svc}
}

func (f *fixture) seedProduct(t *testing.T, stock string, isService bool) productdomain.Product {
	t.Helper()

	p := productdomain.Product{
		ID:        f.node.Generate().Int64(),
		Code:      fmt.Sprintf("P-%d", f.node.Generate().Int64()),
		Name:      "Harina de trigo 1kg",
		BasePrice: decimal.RequireFromString("10.00"),
		TaxRate:   decimal.RequireFromString("0.15"),
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

// seedAuthorizedSale stores an authorized invoice with two lines:
// 4 taxed units at 10.00 with a 2.00 discount, and one untaxed service
// at 5.00.
func (f *fixture) seedAuthorizedSale(t *testing.T, state fiscaldomain.State) (saledomain.Sale, productdomain.Product) {
	t.Helper()

	product := f.seedProduct(t, "6", false)
	customerID := f.node.Generate().Int64()
	id := f.node.Generate().Int64()
	legal := "001-001-000000042"
	sale := saledomain.Sale{
		ID:              id,
		Number:          fmt.Sprintf("NV-%09d", id%1000000),
		CustomerID:      &customerID,
		OperatorID:      "op-1",
		CashSessionID:   1,
		Kind:            saledomain.KindInvoice,
		Status:          saledomain.StatusCompleted,
		PaymentMethod:   saledomain.PaymentCash,
		SubtotalUntaxed: decimal.RequireFromString("5.00"),
		SubtotalTaxed:   decimal.RequireFromString("38.00"),
		Discount:        decimal.RequireFromString("2.00"),
		TaxTotal:        decimal.RequireFromString("5.70"),
		Total:           decimal.RequireFromString("48.70"),
		Tendered:        decimal.RequireFromString("50.00"),
		Change:          decimal.RequireFromString("1.30"),
		FiscalState:     state,
		LegalNumber:     &legal,
		IssuedAt:        time.Now().UTC(),
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
		Lines: []saledomain.SaleLine{
			{
				ID:          f.node.Generate().Int64(),
				SaleID:      id,
				ProductID:   product.ID,
				ProductCode: product.Code,
				ProductName: product.Name,
				Quantity:    decimal.NewFromInt(4),
				UnitPrice:   decimal.RequireFromString("10.00"),
				Discount:    decimal.RequireFromString("2.00"),
				TaxRate:     decimal.RequireFromString("0.15"),
				Subtotal:    decimal.RequireFromString("38.00"),
				TaxAmount:   decimal.RequireFromString("5.70"),
				IsService:   false,
			},
			{
				ID:          f.node.Generate().Int64(),
				SaleID:      id,
				ProductID:   f.node.Generate().Int64(),
				ProductCode: "SRV-1",
				ProductName: "Servicio de entrega",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.RequireFromString("5.00"),
				Discount:    decimal.Zero,
				TaxRate:     decimal.Zero,
				Subtotal:    decimal.RequireFromString("5.00"),
				TaxAmount:   decimal.Zero,
				IsService:   true,
			},
		},
	}
	if err := f.db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	return sale, product
}

func (f *fixture) productStock(t *testing.T, id int64) decimal.Decimal {
	t.Helper()

	var p productdomain.Product
	if err := f.db.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return p.Stock
}

func idStr(id int64) string { return snowflake.ID(id).String() }

func TestBuildCreditNote(t *testing.T) {
	f := setupFixture(t)
	sale, product := f.seedAuthorizedSale(t, fiscaldomain.StateAuthorized)

	note, err := f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "producto en mal estado",
		Lines: []domain.BuildLine{
			{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(2)},
			{SaleLineID: idStr(sale.Lines[1].ID), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// taxed line: 2 x 10.00 = 20.00, prorated discount 2.00 x 2/4 = 1.00,
	// subtotal 19.00, tax 2.85
	if got := note.SubtotalTaxed.StringFixed(2); got != "19.00" {
		t.Fatalf("taxed subtotal: got %s", got)
	}
	if got := note.SubtotalUntaxed.StringFixed(2); got != "5.00" {
		t.Fatalf("untaxed subtotal: got %s", got)
	}
	if got := note.TaxTotal.StringFixed(2); got != "2.85" {
		t.Fatalf("tax total: got %s", got)
	}
	if got := note.Total.StringFixed(2); got != "26.85" {
		t.Fatalf("total: got %s", got)
	}
	if len(note.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(note.Lines))
	}

	// 2 returned units go back to stock; the service line does not move it
	if got := f.productStock(t, product.ID).StringFixed(0); got != "8" {
		t.Fatalf("expected stock 8, got %s", got)
	}
	if f.fiscal.emitCalls != 1 {
		t.Fatalf("expected emission handoff, got %d calls", f.fiscal.emitCalls)
	}
}

func TestBuildRequiresAuthorizedSale(t *testing.T) {
	f := setupFixture(t)
	sale, _ := f.seedAuthorizedSale(t, fiscaldomain.StatePending)

	_, err := f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(1)}},
	})
	if !errors.Is(err, domain.ErrSaleNotAuthorized) {
		t.Fatalf("expected ErrSaleNotAuthorized, got %v", err)
	}
}

func TestBuildSecondNoteRejected(t *testing.T) {
	f := setupFixture(t)
	sale, _ := f.seedAuthorizedSale(t, fiscaldomain.StateAuthorized)

	first := domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion parcial",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(1)}},
	}
	if _, err := f.svc.Build(context.Background(), first); err != nil {
		t.Fatalf("first note: %v", err)
	}
	if _, err := f.svc.Build(context.Background(), first); !errors.Is(err, domain.ErrNoteExists) {
		t.Fatalf("expected ErrNoteExists, got %v", err)
	}
}

func TestBuildQuantityCaps(t *testing.T) {
	f := setupFixture(t)
	sale, product := f.seedAuthorizedSale(t, fiscaldomain.StateAuthorized)
	stockBefore := f.productStock(t, product.ID)

	_, err := f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(5)}},
	})
	if !errors.Is(err, domain.ErrQuantityExceedsSold) {
		t.Fatalf("expected ErrQuantityExceedsSold, got %v", err)
	}

	// duplicate references to one line are summed before the cap check
	_, err = f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
		Lines: []domain.BuildLine{
			{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(3)},
			{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(2)},
		},
	})
	if !errors.Is(err, domain.ErrQuantityExceedsSold) {
		t.Fatalf("expected ErrQuantityExceedsSold for summed duplicates, got %v", err)
	}

	// nothing was committed
	if !f.productStock(t, product.ID).Equal(stockBefore) {
		t.Fatalf("failed build must not move stock")
	}

	_, err = f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.Zero}},
	})
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	_, err = f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(f.node.Generate().Int64()), Quantity: decimal.NewFromInt(1)}},
	})
	if !errors.Is(err, domain.ErrLineNotInSale) {
		t.Fatalf("expected ErrLineNotInSale, got %v", err)
	}
}

func TestBuildValidation(t *testing.T) {
	f := setupFixture(t)
	sale, _ := f.seedAuthorizedSale(t, fiscaldomain.StateAuthorized)

	_, err := f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "   ",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(1)}},
	})
	if !errors.Is(err, domain.ErrEmptyReason) {
		t.Fatalf("expected ErrEmptyReason, got %v", err)
	}

	_, err = f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
	})
	if !errors.Is(err, domain.ErrNoLines) {
		t.Fatalf("expected ErrNoLines, got %v", err)
	}
}

func TestBuildSurvivesEmissionFailure(t *testing.T) {
	f := setupFixture(t)
	sale, _ := f.seedAuthorizedSale(t, fiscaldomain.StateAuthorized)
	f.fiscal.emitErr = errors.New("authority unreachable")

	note, err := f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion",
		Lines:  []domain.BuildLine{{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("emission failure must not fail the build: %v", err)
	}
	if note.FiscalState != fiscaldomain.StateUnsubmitted {
		t.Fatalf("note must stay retryable, got %s", note.FiscalState)
	}

	stored, err := f.svc.GetBySale(context.Background(), idStr(sale.ID))
	if err != nil {
		t.Fatalf("get by sale: %v", err)
	}
	if stored.ID != note.ID {
		t.Fatalf("stored note mismatch")
	}
}

func TestBrackets(t *testing.T) {
	f := setupFixture(t)
	sale, _ := f.seedAuthorizedSale(t, fiscaldomain.StateAuthorized)

	note, err := f.svc.Build(context.Background(), domain.BuildRequest{
		SaleID: idStr(sale.ID),
		Reason: "devolucion total",
		Lines: []domain.BuildLine{
			{SaleLineID: idStr(sale.Lines[0].ID), Quantity: decimal.NewFromInt(4)},
			{SaleLineID: idStr(sale.Lines[1].ID), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	brackets, err := f.svc.Brackets(context.Background(), idStr(note.ID))
	if err != nil {
		t.Fatalf("brackets: %v", err)
	}
	if len(brackets) != 2 {
		t.Fatalf("expected 2 brackets, got %d", len(brackets))
	}
	if !brackets[0].Rate.IsZero() || brackets[0].Base.StringFixed(2) != "5.00" {
		t.Fatalf("zero bracket wrong: %+v", brackets[0])
	}
	if brackets[1].Rate.StringFixed(2) != "0.15" ||
		brackets[1].Base.StringFixed(2) != "38.00" ||
		brackets[1].Tax.StringFixed(2) != "5.70" {
		t.Fatalf("taxed bracket wrong: %+v", brackets[1])
	}
}
