package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	"github.com/tecnomade/clouget-pos/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("cashsession.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Open(ctx context.Context, req domain.OpenRequest) (domain.CashSession, error) {
	operatorID := strings.TrimSpace(req.OperatorID)
	if operatorID == "" {
		return domain.CashSession{}, domain.ErrInvalidOperator
	}
	if req.InitialAmount.IsNegative() {
		return domain.CashSession{}, domain.ErrInvalidAmount
	}

	var session domain.CashSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := s.repo.FindOpenByOperator(ctx, tx, operatorID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrAlreadyOpen
		}

		session = domain.CashSession{
			ID:            s.genID.Generate().Int64(),
			OperatorID:    operatorID,
			Status:        domain.StatusOpen,
			InitialAmount: req.InitialAmount.Round(2),
			OpenedAt:      s.clock.Now(),
		}
		return s.repo.Insert(ctx, tx, &session)
	})
	if err != nil {
		return domain.CashSession{}, err
	}

	s.log.Info("cash session opened",
		zap.Int64("session_id", session.ID),
		zap.String("operator_id", operatorID))
	return session, nil
}

func (s *Service) Close(ctx context.Context, req domain.CloseRequest) (domain.CloseResult, error) {
	sessionID, err := s.parseID(req.SessionID)
	if err != nil {
		return domain.CloseResult{}, err
	}
	if req.CountedAmount.IsNegative() {
		return domain.CloseResult{}, domain.ErrInvalidAmount
	}

	var result domain.CloseResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.repo.FindByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if session.Status == domain.StatusClosed {
			return domain.ErrAlreadyClosed
		}

		cashSales, err := s.repo.SumCashSales(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		expenses, err := s.repo.SumExpenses(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		expected := session.InitialAmount.Add(cashSales).Sub(expenses).Round(2)
		counted := req.CountedAmount.Round(2)
		difference := counted.Sub(expected)

		now := s.clock.Now()
		session.Status = domain.StatusClosed
		session.CountedAmount = &counted
		session.ExpectedAmount = &expected
		session.Difference = &difference
		session.ClosedAt = &now
		if note := strings.TrimSpace(req.Note); note != "" {
			session.Note = &note
		}

		if err := s.repo.Save(ctx, tx, session); err != nil {
			return err
		}

		result = domain.CloseResult{Session: *session, ForceSignOut: true}
		return nil
	})
	if err != nil {
		return domain.CloseResult{}, err
	}

	s.log.Info("cash session closed",
		zap.Int64("session_id", result.Session.ID),
		zap.String("difference", result.Session.Difference.String()))
	return result, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.CashSession, error) {
	sessionID, err := s.parseID(id)
	if err != nil {
		return domain.CashSession{}, err
	}
	session, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return domain.CashSession{}, err
	}
	if session == nil {
		return domain.CashSession{}, domain.ErrNotFound
	}
	return *session, nil
}

func (s *Service) CurrentFor(ctx context.Context, operatorID string) (domain.CashSession, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return domain.CashSession{}, domain.ErrInvalidOperator
	}
	session, err := s.repo.FindOpenByOperator(ctx, s.db, operatorID)
	if err != nil {
		return domain.CashSession{}, err
	}
	if session == nil {
		return domain.CashSession{}, domain.ErrNoOpenSession
	}
	return *session, nil
}

func (s *Service) Summary(ctx context.Context, id string) (domain.Summary, error) {
	sessionID, err := s.parseID(id)
	if err != nil {
		return domain.Summary{}, err
	}
	session, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return domain.Summary{}, err
	}
	if session == nil {
		return domain.Summary{}, domain.ErrNotFound
	}

	cashSales, err := s.repo.SumCashSales(ctx, s.db, session.ID)
	if err != nil {
		return domain.Summary{}, err
	}
	expenses, err := s.repo.SumExpenses(ctx, s.db, session.ID)
	if err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{
		SessionID:      session.ID,
		InitialAmount:  session.InitialAmount,
		CashSalesTotal: cashSales,
		ExpensesTotal:  expenses,
		ExpectedAmount: session.InitialAmount.Add(cashSales).Sub(expenses).Round(2),
	}, nil
}

func (s *Service) List(ctx context.Context, operatorID string) ([]domain.CashSession, error) {
	return s.repo.List(ctx, s.db, strings.TrimSpace(operatorID))
}

func (s *Service) parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}
