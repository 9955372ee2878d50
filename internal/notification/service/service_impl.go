package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tecnomade/clouget-pos/internal/clock"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"github.com/tecnomade/clouget-pos/internal/notification/domain"
	"github.com/tecnomade/clouget-pos/internal/providers/email"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
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
	Repo     domain.Repository
	SaleRepo saledomain.Repository
	NoteRepo creditnotedomain.Repository
	Mail     email.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	saleRepo saledomain.Repository
	noteRepo creditnotedomain.Repository
	mail     email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("notification.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		saleRepo: p.SaleRepo,
		noteRepo: p.NoteRepo,
		mail:     p.Mail,
	}
}

func (s *Service) SendOrQueue(ctx context.Context, req domain.SendRequest) (domain.QueuedNotification, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.QueuedNotification{}, domain.ErrEmptyAddress
	}

	now := s.clock.Now()
	entry := domain.QueuedNotification{
		ID:           s.genID.Generate().Int64(),
		DocumentKind: req.DocumentKind,
		DocumentID:   req.DocumentID,
		Address:      address,
		Subject:      req.Subject,
		Body:         req.Body,
		Attempts:     1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.mail.Send(ctx, []string{address}, req.Subject, req.Body)
	if err == nil {
		entry.State = domain.StateSent
		if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
			return domain.QueuedNotification{}, err
		}
		s.markDelivered(ctx, req.DocumentKind, req.DocumentID)
		return entry, nil
	}

	s.log.Warn("notification delivery failed, queueing",
		zap.Int64("document_id", req.DocumentID), zap.Error(err))

	// one open entry per document
	existing, ferr := s.repo.FindPendingByDocument(ctx, s.db, req.DocumentKind, req.DocumentID)
	if ferr != nil {
		return domain.QueuedNotification{}, ferr
	}
	if existing != nil {
		return *existing, nil
	}

	// deferred entries answer with the sentinel so callers can tell a
	// queued delivery apart from a sent one
	msg := err.Error()
	if !strings.HasPrefix(msg, domain.DeferredPrefix) {
		msg = domain.DeferredPrefix + " " + msg
	}
	entry.State = domain.StatePending
	entry.LastError = &msg
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.QueuedNotification{}, err
	}
	return entry, nil
}

func (s *Service) Sweep(ctx context.Context) (domain.SweepResult, error) {
	batch, err := s.repo.ListSweepable(ctx, s.db, domain.MaxAttempts, domain.SweepBatchSize)
	if err != nil {
		return domain.SweepResult{}, err
	}

	var res domain.SweepResult
	for i := range batch {
		entry := &batch[i]
		res.Attempted++

		sendErr := s.mail.Send(ctx, []string{entry.Address}, entry.Subject, entry.Body)
		entry.UpdatedAt = s.clock.Now()
		if sendErr == nil {
			entry.State = domain.StateSent
			entry.LastError = nil
			if err := s.repo.Save(ctx, s.db, entry); err != nil {
				return res, err
			}
			s.markDelivered(ctx, entry.DocumentKind, entry.DocumentID)
			res.Delivered++
			continue
		}

		entry.Attempts++
		msg := sendErr.Error()
		entry.LastError = &msg
		if entry.Attempts >= domain.MaxAttempts {
			entry.State = domain.StateFailed
			res.Failed++
			s.log.Warn("notification dead-lettered",
				zap.Int64("document_id", entry.DocumentID),
				zap.Int("attempts", entry.Attempts),
				zap.Error(sendErr))
		}
		if err := s.repo.Save(ctx, s.db, entry); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Service) List(ctx context.Context, state domain.State) ([]domain.QueuedNotification, error) {
	return s.repo.List(ctx, s.db, state)
}

// markDelivered flips the delivered flag on the source document. A
// failure here is logged, not propagated: the mail already went out.
func (s *Service) markDelivered(ctx context.Context, kind fiscaldomain.DocKind, documentID int64) {
	switch kind {
	case fiscaldomain.DocInvoice:
		sale, err := s.saleRepo.FindByID(ctx, s.db, documentID)
		if err != nil || sale == nil {
			s.log.Warn("delivered sale lookup failed", zap.Int64("sale_id", documentID), zap.Error(err))
			return
		}
		sale.NotificationSent = true
		sale.UpdatedAt = s.clock.Now()
		if err := s.saleRepo.Save(ctx, s.db, sale); err != nil {
			s.log.Warn("delivered flag update failed", zap.Int64("sale_id", documentID), zap.Error(err))
		}
	case fiscaldomain.DocCreditNote:
		note, err := s.noteRepo.FindByID(ctx, s.db, documentID)
		if err != nil || note == nil {
			s.log.Warn("delivered note lookup failed", zap.Int64("credit_note_id", documentID), zap.Error(err))
			return
		}
		note.NotificationSent = true
		note.UpdatedAt = s.clock.Now()
		if err := s.noteRepo.Save(ctx, s.db, note); err != nil {
			s.log.Warn("delivered flag update failed", zap.Int64("credit_note_id", documentID), zap.Error(err))
		}
	}
}
