package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/tecnomade/clouget-pos/internal/clock"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	creditnoterepo "github.com/tecnomade/clouget-pos/internal/creditnote/repository"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"github.com/tecnomade/clouget-pos/internal/notification/domain"
	notificationrepo "github.com/tecnomade/clouget-pos/internal/notification/repository"
	notificationservice "github.com/tecnomade/clouget-pos/internal/notification/service"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	salerepo "github.com/tecnomade/clouget-pos/internal/sale/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubMail answers from a queue of scripted errors; nil means delivered.
type stubMail struct {
	errs  []error
	calls int
}

func (m *stubMail) Send(_ context.Context, _ []string, _ string, _ string) error {
	m.calls++
	if len(m.errs) == 0 {
		return nil
	}
	err := m.errs[0]
	m.errs = m.errs[1:]
	return err
}

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	mail *stubMail
	svc  domain.Service
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_notification_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.QueuedNotification{},
		&saledomain.Sale{},
		&saledomain.SaleLine{},
		&creditnotedomain.CreditNote{},
		&creditnotedomain.CreditNoteLine{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(11)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	mail := &stubMail{}
	svc := notificationservice.New(notificationservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewSystemClock(),
		Repo:     notificationrepo.Provide(),
		SaleRepo: salerepo.Provide(),
		NoteRepo: creditnoterepo.Provide(),
		Mail:     mail,
	})

	return &fixture{db: db, node: node, mail: mail, svc: svc}
}

func (f *fixture) seedSale(t *testing.T) saledomain.Sale {
	t.Helper()

	id := f.node.Generate().Int64()
	sale := saledomain.Sale{
		ID:            id,
		Number:        fmt.Sprintf("NV-%09d", id%1000000),
		OperatorID:    "op-1",
		CashSessionID: 1,
		Kind:          saledomain.KindInvoice,
		Status:        saledomain.StatusCompleted,
		PaymentMethod: saledomain.PaymentCash,
		Total:         decimal.RequireFromString("10.00"),
		FiscalState:   fiscaldomain.StateAuthorized,
		IssuedAt:      time.Now().UTC(),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := f.db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	return sale
}

func (f *fixture) request(sale saledomain.Sale) domain.SendRequest {
	return domain.SendRequest{
		DocumentKind: fiscaldomain.DocInvoice,
		DocumentID:   sale.ID,
		Address:      "cliente@example.com",
		Subject:      "Su factura",
		Body:         "<p>Gracias por su compra.</p>",
	}
}

func TestSendImmediate(t *testing.T) {
	f := setupFixture(t)
	sale := f.seedSale(t)

	entry, err := f.svc.SendOrQueue(context.Background(), f.request(sale))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if entry.State != domain.StateSent {
		t.Fatalf("expected SENT, got %s", entry.State)
	}

	var stored saledomain.Sale
	if err := f.db.First(&stored, "id = ?", sale.ID).Error; err != nil {
		t.Fatalf("reload sale: %v", err)
	}
	if !stored.NotificationSent {
		t.Fatalf("delivered sale must be flagged")
	}
}

func TestDeferredQueuesOnce(t *testing.T) {
	f := setupFixture(t)
	sale := f.seedSale(t)
	f.mail.errs = []error{
		errors.New("DEFERRED: offline"),
		errors.New("DEFERRED: offline"),
	}

	first, err := f.svc.SendOrQueue(context.Background(), f.request(sale))
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if first.State != domain.StatePending || first.Attempts != 1 {
		t.Fatalf("expected PENDING attempts=1, got %s/%d", first.State, first.Attempts)
	}

	second, err := f.svc.SendOrQueue(context.Background(), f.request(sale))
	if err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing entry, got a duplicate")
	}

	var count int64
	f.db.Model(&domain.QueuedNotification{}).Where("state = ?", domain.StatePending).Count(&count)
	if count != 1 {
		t.Fatalf("expected one pending entry, got %d", count)
	}
}

func TestDeferredMessageCarriesSentinel(t *testing.T) {
	f := setupFixture(t)
	sale := f.seedSale(t)
	f.mail.errs = []error{errors.New("connection refused")}

	entry, err := f.svc.SendOrQueue(context.Background(), f.request(sale))
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if entry.State != domain.StatePending {
		t.Fatalf("expected PENDING, got %s", entry.State)
	}
	if entry.LastError == nil || !strings.HasPrefix(*entry.LastError, domain.DeferredPrefix) {
		t.Fatalf("expected a %s message, got %v", domain.DeferredPrefix, entry.LastError)
	}
}

func TestSweepDelivers(t *testing.T) {
	f := setupFixture(t)
	sale := f.seedSale(t)
	f.mail.errs = []error{errors.New("DEFERRED: offline")}

	if _, err := f.svc.SendOrQueue(context.Background(), f.request(sale)); err != nil {
		t.Fatalf("queue: %v", err)
	}

	res, err := f.svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Attempted != 1 || res.Delivered != 1 || res.Failed != 0 {
		t.Fatalf("unexpected sweep result: %+v", res)
	}

	pending, err := f.svc.List(context.Background(), domain.StatePending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue, got %d", len(pending))
	}

	var stored saledomain.Sale
	if err := f.db.First(&stored, "id = ?", sale.ID).Error; err != nil {
		t.Fatalf("reload sale: %v", err)
	}
	if !stored.NotificationSent {
		t.Fatalf("swept delivery must flag the sale")
	}
}

func TestSweepDeadLetters(t *testing.T) {
	f := setupFixture(t)
	sale := f.seedSale(t)
	f.mail.errs = []error{
		errors.New("DEFERRED: offline"), // initial attempt
		errors.New("DEFERRED: offline"), // sweep 1 -> attempts 2
		errors.New("DEFERRED: offline"), // sweep 2 -> attempts 3
		errors.New("DEFERRED: offline"), // sweep 3 -> attempts 4, FAILED
	}

	if _, err := f.svc.SendOrQueue(context.Background(), f.request(sale)); err != nil {
		t.Fatalf("queue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Sweep(context.Background()); err != nil {
			t.Fatalf("sweep %d: %v", i+1, err)
		}
	}

	failed, err := f.svc.List(context.Background(), domain.StateFailed)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(failed) != 1 || failed[0].Attempts != domain.MaxAttempts {
		t.Fatalf("expected one dead-lettered entry at %d attempts, got %+v", domain.MaxAttempts, failed)
	}

	// a further sweep has nothing to do
	res, err := f.svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("final sweep: %v", err)
	}
	if res.Attempted != 0 {
		t.Fatalf("FAILED entries must not be retried, attempted %d", res.Attempted)
	}
}

func TestSweepBatchLimit(t *testing.T) {
	f := setupFixture(t)
	f.mail.errs = make([]error, 0, 7)
	for i := 0; i < 7; i++ {
		f.mail.errs = append(f.mail.errs, errors.New("DEFERRED: offline"))
	}
	for i := 0; i < 7; i++ {
		sale := f.seedSale(t)
		if _, err := f.svc.SendOrQueue(context.Background(), f.request(sale)); err != nil {
			t.Fatalf("queue %d: %v", i, err)
		}
	}

	res, err := f.svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Attempted != domain.SweepBatchSize {
		t.Fatalf("expected batch of %d, got %d", domain.SweepBatchSize, res.Attempted)
	}
}

func TestSendRequiresAddress(t *testing.T) {
	f := setupFixture(t)
	sale := f.seedSale(t)

	req := f.request(sale)
	req.Address = "  "
	if _, err := f.svc.SendOrQueue(context.Background(), req); !errors.Is(err, domain.ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
}
