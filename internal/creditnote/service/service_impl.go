package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/tecnomade/clouget-pos/internal/clock"
	"github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	SaleRepo    saledomain.Repository
	ProductRepo productdomain.Repository
	Fiscal      fiscaldomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	saleRepo    saledomain.Repository
	productRepo productdomain.Repository
	fiscal      fiscaldomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("creditnote.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		saleRepo:    p.SaleRepo,
		productRepo: p.ProductRepo,
		fiscal:      p.Fiscal,
	}
}

func (s *Service) Build(ctx context.Context, req domain.BuildRequest) (domain.CreditNote, error) {
	saleID, err := parseID(req.SaleID)
	if err != nil {
		return domain.CreditNote{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.CreditNote{}, domain.ErrEmptyReason
	}
	if len(req.Lines) == 0 {
		return domain.CreditNote{}, domain.ErrNoLines
	}

	// merge duplicate references to the same sale line before validating
	wanted := make(map[int64]decimal.Decimal, len(req.Lines))
	order := make([]int64, 0, len(req.Lines))
	for _, l := range req.Lines {
		lineID, err := parseID(l.SaleLineID)
		if err != nil {
			return domain.CreditNote{}, err
		}
		if !l.Quantity.IsPositive() {
			return domain.CreditNote{}, domain.ErrInvalidQuantity
		}
		if _, seen := wanted[lineID]; !seen {
			order = append(order, lineID)
		}
		wanted[lineID] = wanted[lineID].Add(l.Quantity)
	}

	var note domain.CreditNote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.saleRepo.FindByID(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.FiscalState != fiscaldomain.StateAuthorized {
			return domain.ErrSaleNotAuthorized
		}

		existing, err := s.repo.FindBySaleID(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrNoteExists
		}

		byID := make(map[int64]saledomain.SaleLine, len(sale.Lines))
		for _, l := range sale.Lines {
			byID[l.ID] = l
		}

		noteID := s.genID.Generate().Int64()
		now := s.clock.Now()
		note = domain.CreditNote{
			ID:          noteID,
			SaleID:      sale.ID,
			CustomerID:  derefInt(sale.CustomerID),
			Reason:      reason,
			FiscalState: fiscaldomain.StateUnsubmitted,
			IssuedAt:    now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		untaxed := decimal.Zero
		taxed := decimal.Zero
		taxTotal := decimal.Zero
		for _, lineID := range order {
			orig, ok := byID[lineID]
			if !ok {
				return domain.ErrLineNotInSale
			}
			qty := wanted[lineID]
			if qty.GreaterThan(orig.Quantity) {
				return domain.ErrQuantityExceedsSold
			}

			ratio := qty.Div(orig.Quantity)
			gross := orig.UnitPrice.Mul(qty).Round(2)
			discount := orig.Discount.Mul(ratio).Round(2)
			subtotal := gross.Sub(discount)
			tax := subtotal.Mul(orig.TaxRate).Round(2)

			note.Lines = append(note.Lines, domain.CreditNoteLine{
				ID:           s.genID.Generate().Int64(),
				CreditNoteID: noteID,
				SaleLineID:   orig.ID,
				ProductID:    orig.ProductID,
				ProductCode:  orig.ProductCode,
				ProductName:  orig.ProductName,
				Quantity:     qty,
				UnitPrice:    orig.UnitPrice,
				Discount:     discount,
				TaxRate:      orig.TaxRate,
				Subtotal:     subtotal,
				TaxAmount:    tax,
				IsService:    orig.IsService,
			})

			if orig.TaxRate.IsZero() {
				untaxed = untaxed.Add(subtotal)
			} else {
				taxed = taxed.Add(subtotal)
			}
			taxTotal = taxTotal.Add(tax)

			// returned goods go back on the shelf
			if !orig.IsService {
				if err := s.productRepo.AdjustStock(ctx, tx, orig.ProductID, qty); err != nil {
					return err
				}
			}
		}

		note.SubtotalUntaxed = untaxed
		note.SubtotalTaxed = taxed
		note.TaxTotal = taxTotal
		note.Total = untaxed.Add(taxed).Add(taxTotal)

		return s.repo.Insert(ctx, tx, &note)
	})
	if err != nil {
		return domain.CreditNote{}, err
	}

	// emission failure is not fatal: the stored note stays retryable
	if _, err := s.fiscal.EmitCreditNote(ctx, snowflake.ID(note.ID).String()); err != nil {
		s.log.Warn("credit note emission failed, note kept for retry",
			zap.Int64("credit_note_id", note.ID), zap.Error(err))
	}

	stored, err := s.repo.FindByID(ctx, s.db, note.ID)
	if err != nil {
		return domain.CreditNote{}, err
	}
	if stored != nil {
		note = *stored
	}
	return note, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.CreditNote, error) {
	noteID, err := parseID(id)
	if err != nil {
		return domain.CreditNote{}, err
	}
	note, err := s.repo.FindByID(ctx, s.db, noteID)
	if err != nil {
		return domain.CreditNote{}, err
	}
	if note == nil {
		return domain.CreditNote{}, domain.ErrNotFound
	}
	return *note, nil
}

func (s *Service) GetBySale(ctx context.Context, saleID string) (domain.CreditNote, error) {
	id, err := parseID(saleID)
	if err != nil {
		return domain.CreditNote{}, err
	}
	note, err := s.repo.FindBySaleID(ctx, s.db, id)
	if err != nil {
		return domain.CreditNote{}, err
	}
	if note == nil {
		return domain.CreditNote{}, domain.ErrNotFound
	}
	return *note, nil
}

func (s *Service) List(ctx context.Context) ([]domain.CreditNote, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Brackets(ctx context.Context, id string) ([]domain.BracketTotal, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	byRate := make(map[string]*domain.BracketTotal)
	for _, l := range note.Lines {
		key := l.TaxRate.String()
		bracket, ok := byRate[key]
		if !ok {
			bracket = &domain.BracketTotal{Rate: l.TaxRate}
			byRate[key] = bracket
		}
		bracket.Base = bracket.Base.Add(l.Subtotal)
		bracket.Tax = bracket.Tax.Add(l.TaxAmount)
	}

	out := make([]domain.BracketTotal, 0, len(byRate))
	for _, b := range byRate {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Rate.LessThan(out[j].Rate)
	})
	return out, nil
}

func parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
