package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	cashdomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	"github.com/tecnomade/clouget-pos/internal/clock"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	"github.com/tecnomade/clouget-pos/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ProductRepo  productdomain.Repository
	CashRepo     cashdomain.Repository
	CustomerRepo customerdomain.Repository
	Prices       pricelistdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	productRepo  productdomain.Repository
	cashRepo     cashdomain.Repository
	customerRepo customerdomain.Repository
	prices       pricelistdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("sale.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		productRepo:  p.ProductRepo,
		cashRepo:     p.CashRepo,
		customerRepo: p.CustomerRepo,
		prices:       p.Prices,
	}
}

func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Sale, error) {
	operatorID := strings.TrimSpace(req.OperatorID)
	if operatorID == "" {
		return domain.Sale{}, domain.ErrInvalidOperator
	}
	if req.Kind != domain.KindReceipt && req.Kind != domain.KindInvoice {
		return domain.Sale{}, domain.ErrInvalidKind
	}
	switch req.PaymentMethod {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentTransfer, domain.PaymentCredit:
	default:
		return domain.Sale{}, domain.ErrInvalidPayment
	}
	if len(req.Lines) == 0 {
		return domain.Sale{}, domain.ErrEmptyCart
	}
	if req.Discount.IsNegative() {
		return domain.Sale{}, domain.ErrInvalidDiscount
	}

	var customerID *int64
	if trimmed := strings.TrimSpace(req.CustomerID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil {
			return domain.Sale{}, domain.ErrInvalidID
		}
		customer, err := s.customerRepo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.Sale{}, err
		}
		if customer == nil {
			return domain.Sale{}, domain.ErrNotFound
		}
		v := id.Int64()
		customerID = &v
	}
	if req.Kind == domain.KindInvoice && customerID == nil {
		return domain.Sale{}, domain.ErrCustomerRequired
	}

	// The resolver reads through its own connection, so it must run
	// before the write transaction opens.
	unitPrices, err := s.resolveUnitPrices(ctx, req)
	if err != nil {
		return domain.Sale{}, err
	}

	var sale domain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.cashRepo.FindOpenByOperator(ctx, tx, operatorID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNoOpenSession
		}

		lines, untaxed, taxed, tax, err := s.buildLines(ctx, tx, req, unitPrices)
		if err != nil {
			return err
		}

		total := untaxed.Add(taxed).Add(tax).Sub(req.Discount).Round(2)
		if total.IsNegative() {
			return domain.ErrInvalidDiscount
		}

		tendered := req.Tendered.Round(2)
		change := decimal.Zero
		if req.PaymentMethod == domain.PaymentCash {
			if tendered.LessThan(total) {
				return domain.ErrInsufficientCash
			}
			change = tendered.Sub(total)
		}

		seq, err := s.repo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}

		fiscalState := fiscaldomain.StateNotApplicable
		if req.Kind == domain.KindInvoice {
			fiscalState = fiscaldomain.StateUnsubmitted
		}

		now := s.clock.Now()
		sale = domain.Sale{
			ID:              s.genID.Generate().Int64(),
			Number:          fmt.Sprintf("NV-%09d", seq),
			CustomerID:      customerID,
			OperatorID:      operatorID,
			CashSessionID:   session.ID,
			Kind:            req.Kind,
			Status:          domain.StatusCompleted,
			PaymentMethod:   req.PaymentMethod,
			SubtotalUntaxed: untaxed,
			SubtotalTaxed:   taxed,
			Discount:        req.Discount.Round(2),
			TaxTotal:        tax,
			Total:           total,
			Tendered:        tendered,
			Change:          change,
			FiscalState:     fiscalState,
			IssuedAt:        now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		for i := range lines {
			lines[i].ID = s.genID.Generate().Int64()
			lines[i].SaleID = sale.ID
		}
		sale.Lines = lines

		return s.repo.Insert(ctx, tx, &sale)
	})
	if err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("sale completed",
		zap.String("number", sale.Number),
		zap.String("kind", string(sale.Kind)),
		zap.String("total", sale.Total.String()))
	return sale, nil
}

// resolveUnitPrices validates the cart lines and fills in the price of
// every line that arrives without one.
func (s *Service) resolveUnitPrices(ctx context.Context, req domain.CheckoutRequest) ([]decimal.Decimal, error) {
	unitPrices := make([]decimal.Decimal, len(req.Lines))
	for i, line := range req.Lines {
		if !line.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if line.Discount.IsNegative() {
			return nil, domain.ErrInvalidDiscount
		}

		productID, err := snowflake.ParseString(strings.TrimSpace(line.ProductID))
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		if line.UnitPrice != nil {
			unitPrices[i] = line.UnitPrice.Round(2)
			continue
		}

		resolved, err := s.prices.Resolve(ctx, pricelistdomain.ResolveRequest{
			ProductID:  productID.String(),
			CustomerID: req.CustomerID,
		})
		if err != nil {
			return nil, err
		}
		unitPrices[i] = resolved.Price
	}
	return unitPrices, nil
}

// buildLines totals the cart and consumes stock. Runs inside the
// checkout transaction with prices already resolved.
func (s *Service) buildLines(ctx context.Context, tx *gorm.DB, req domain.CheckoutRequest, unitPrices []decimal.Decimal) ([]domain.SaleLine, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	untaxed := decimal.Zero
	taxed := decimal.Zero
	tax := decimal.Zero
	lines := make([]domain.SaleLine, 0, len(req.Lines))

	for i, line := range req.Lines {
		productID, err := snowflake.ParseString(strings.TrimSpace(line.ProductID))
		if err != nil {
			return nil, untaxed, taxed, tax, domain.ErrInvalidID
		}
		product, err := s.productRepo.FindByID(ctx, tx, productID.Int64())
		if err != nil {
			return nil, untaxed, taxed, tax, err
		}
		if product == nil {
			return nil, untaxed, taxed, tax, domain.ErrNotFound
		}
		if !product.Active {
			return nil, untaxed, taxed, tax, domain.ErrProductInactive
		}

		unitPrice := unitPrices[i]
		subtotal := unitPrice.Mul(line.Quantity).Round(2).Sub(line.Discount.Round(2))
		if subtotal.IsNegative() {
			return nil, untaxed, taxed, tax, domain.ErrInvalidDiscount
		}

		lineTax := decimal.Zero
		if product.TaxRate.IsPositive() {
			lineTax = subtotal.Mul(product.TaxRate).Round(2)
			taxed = taxed.Add(subtotal)
			tax = tax.Add(lineTax)
		} else {
			untaxed = untaxed.Add(subtotal)
		}

		if !product.IsService {
			if product.Stock.LessThan(line.Quantity) {
				return nil, untaxed, taxed, tax, domain.ErrInsufficientStock
			}
			if err := s.productRepo.AdjustStock(ctx, tx, product.ID, line.Quantity.Neg()); err != nil {
				return nil, untaxed, taxed, tax, err
			}
		}

		lines = append(lines, domain.SaleLine{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			Discount:    line.Discount.Round(2),
			TaxRate:     product.TaxRate,
			Subtotal:    subtotal,
			TaxAmount:   lineTax,
			IsService:   product.IsService,
		})
	}

	return lines, untaxed, taxed, tax, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Sale, error) {
	saleID, err := s.parseID(id)
	if err != nil {
		return domain.Sale{}, err
	}
	sale, err := s.repo.FindByID(ctx, s.db, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	return *sale, nil
}

func (s *Service) ListByDay(ctx context.Context, req domain.ListByDayRequest) ([]domain.Sale, error) {
	day := req.Day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.ListByDay(ctx, s.db, from, from.Add(24*time.Hour))
}

func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]domain.Sale, error) {
	id, err := s.parseID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, s.db, id)
}

func (s *Service) Void(ctx context.Context, id string) (domain.Sale, error) {
	saleID, err := s.parseID(id)
	if err != nil {
		return domain.Sale{}, err
	}

	var voided domain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByID(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status == domain.StatusVoided {
			return domain.ErrAlreadyVoided
		}
		if sale.FiscalState == fiscaldomain.StateAuthorized {
			return domain.ErrAuthorizedSale
		}

		for _, line := range sale.Lines {
			if line.IsService {
				continue
			}
			if err := s.productRepo.AdjustStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		sale.Status = domain.StatusVoided
		sale.UpdatedAt = s.clock.Now()
		if err := s.repo.Save(ctx, tx, sale); err != nil {
			return err
		}
		voided = *sale
		return nil
	})
	if err != nil {
		return domain.Sale{}, err
	}
	return voided, nil
}

func (s *Service) parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}
