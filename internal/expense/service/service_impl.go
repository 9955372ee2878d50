package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	cashdomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	"github.com/tecnomade/clouget-pos/internal/clock"
	"github.com/tecnomade/clouget-pos/internal/expense/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	CashRepo cashdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cashRepo cashdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("expense.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cashRepo: p.CashRepo,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Expense, error) {
	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		return domain.Expense{}, domain.ErrInvalidConcept
	}
	if !req.Amount.IsPositive() {
		return domain.Expense{}, domain.ErrInvalidAmount
	}
	sessionID, err := s.parseID(req.CashSessionID)
	if err != nil {
		return domain.Expense{}, err
	}

	var expense domain.Expense
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.cashRepo.FindByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if session.Status != cashdomain.StatusOpen {
			return domain.ErrSessionClosed
		}

		expense = domain.Expense{
			ID:            s.genID.Generate().Int64(),
			CashSessionID: sessionID,
			Concept:       concept,
			Amount:        req.Amount.Round(2),
			CreatedAt:     s.clock.Now(),
		}
		return tx.Create(&expense).Error
	})
	if err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]domain.Expense, error) {
	id, err := s.parseID(sessionID)
	if err != nil {
		return nil, err
	}
	var expenses []domain.Expense
	err = s.db.WithContext(ctx).
		Model(&domain.Expense{}).
		Where("cash_session_id = ?", id).
		Order("created_at asc").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Service) parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}
