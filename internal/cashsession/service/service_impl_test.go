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
	"github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	cashrepo "github.com/tecnomade/clouget-pos/internal/cashsession/repository"
	cashservice "github.com/tecnomade/clouget-pos/internal/cashsession/service"
	"github.com/tecnomade/clouget-pos/internal/clock"
	expensedomain "github.com/tecnomade/clouget-pos/internal/expense/domain"
	expenseservice "github.com/tecnomade/clouget-pos/internal/expense/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_cash_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.CashSession{}, &expensedomain.Expense{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// sales live in another feature; the reconciler only ever sums them
	err = db.Exec(`CREATE TABLE sales (
		id BIGINT PRIMARY KEY,
		cash_session_id BIGINT NOT NULL,
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		total NUMERIC NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create sales table: %v", err)
	}
	return db
}

func newServices(t *testing.T, db *gorm.DB) (domain.Service, expensedomain.Service) {
	t.Helper()

	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	cashSvc := cashservice.New(cashservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewSystemClock(),
		Repo:  cashrepo.Provide(),
	})
	expenseSvc := expenseservice.New(expenseservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewSystemClock(),
		CashRepo: cashrepo.Provide(),
	})
	return cashSvc, expenseSvc
}

func seedCashSale(t *testing.T, db *gorm.DB, sessionID int64, method, status, total string) {
	t.Helper()

	err := db.Exec(
		"INSERT INTO sales (id, cash_session_id, payment_method, status, total) VALUES (?, ?, ?, ?, ?)",
		time.Now().UnixNano(),
		sessionID,
		method,
		status,
		total,
	).Error
	if err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func TestOpenRejectsSecondSessionForOperator(t *testing.T) {
	ctx := context.Background()
	cashSvc, _ := newServices(t, setupTestDB(t))

	if _, err := cashSvc.Open(ctx, domain.OpenRequest{OperatorID: "op-1", InitialAmount: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err := cashSvc.Open(ctx, domain.OpenRequest{OperatorID: "op-1", InitialAmount: decimal.NewFromInt(20)})
	if !errors.Is(err, domain.ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}

	// a different operator can still open
	if _, err := cashSvc.Open(ctx, domain.OpenRequest{OperatorID: "op-2", InitialAmount: decimal.NewFromInt(20)}); err != nil {
		t.Fatalf("open second operator: %v", err)
	}
}

func TestCloseReconcilesExactDrawer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	cashSvc, expenseSvc := newServices(t, db)

	session, err := cashSvc.Open(ctx, domain.OpenRequest{
		OperatorID:    "op-1",
		InitialAmount: decimal.RequireFromString("100.00"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	seedCashSale(t, db, session.ID, "CASH", "COMPLETED", "35.50")
	seedCashSale(t, db, session.ID, "CASH", "COMPLETED", "14.50")
	// non-cash and voided sales never count toward the drawer
	seedCashSale(t, db, session.ID, "CARD", "COMPLETED", "99.99")
	seedCashSale(t, db, session.ID, "CASH", "VOIDED", "40.00")

	_, err = expenseSvc.Register(ctx, expensedomain.RegisterRequest{
		CashSessionID: snowflake.ID(session.ID).String(),
		Concept:       "almuerzo proveedor",
		Amount:        decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("register expense: %v", err)
	}

	// expected = 100.00 + 50.00 - 10.00 = 140.00
	result, err := cashSvc.Close(ctx, domain.CloseRequest{
		SessionID:     snowflake.ID(session.ID).String(),
		CountedAmount: decimal.RequireFromString("140.00"),
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !result.ForceSignOut {
		t.Fatalf("closing must force sign-out")
	}
	closed := result.Session
	if closed.Status != domain.StatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
	if !closed.ExpectedAmount.Equal(decimal.RequireFromString("140.00")) {
		t.Fatalf("expected 140.00, got %s", closed.ExpectedAmount)
	}
	if !closed.Difference.IsZero() {
		t.Fatalf("expected zero difference, got %s", closed.Difference)
	}
}

func TestCloseReportsShortDrawer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	cashSvc, _ := newServices(t, db)

	session, err := cashSvc.Open(ctx, domain.OpenRequest{
		OperatorID:    "op-1",
		InitialAmount: decimal.RequireFromString("100.00"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seedCashSale(t, db, session.ID, "CASH", "COMPLETED", "50.00")

	result, err := cashSvc.Close(ctx, domain.CloseRequest{
		SessionID:     snowflake.ID(session.ID).String(),
		CountedAmount: decimal.RequireFromString("140.00"),
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !result.Session.Difference.Equal(decimal.RequireFromString("-10.00")) {
		t.Fatalf("expected difference -10.00, got %s", result.Session.Difference)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	cashSvc, expenseSvc := newServices(t, db)

	session, err := cashSvc.Open(ctx, domain.OpenRequest{
		OperatorID:    "op-1",
		InitialAmount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := cashSvc.Close(ctx, domain.CloseRequest{
		SessionID:     snowflake.ID(session.ID).String(),
		CountedAmount: decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = cashSvc.Close(ctx, domain.CloseRequest{
		SessionID:     snowflake.ID(session.ID).String(),
		CountedAmount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}

	// no expenses against a closed drawer
	_, err = expenseSvc.Register(ctx, expensedomain.RegisterRequest{
		CashSessionID: snowflake.ID(session.ID).String(),
		Concept:       "taxi",
		Amount:        decimal.NewFromInt(5),
	})
	if !errors.Is(err, expensedomain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}

	// operator is free to open again
	if _, err := cashSvc.Open(ctx, domain.OpenRequest{OperatorID: "op-1", InitialAmount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}
