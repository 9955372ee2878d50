package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tecnomade/clouget-pos/internal/clock"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	"github.com/tecnomade/clouget-pos/internal/events"
	"github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Repo         domain.Repository
	SaleRepo     saledomain.Repository
	NoteRepo     creditnotedomain.Repository
	CustomerRepo customerdomain.Repository
	Authority    domain.AuthorityClient
	Signer       domain.Signer
	Quota        subscriptiondomain.Service
	Bus          *events.Bus
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	repo         domain.Repository
	saleRepo     saledomain.Repository
	noteRepo     creditnotedomain.Repository
	customerRepo customerdomain.Repository
	authority    domain.AuthorityClient
	signer       domain.Signer
	quota        subscriptiondomain.Service
	bus          *events.Bus
	locks        *keyedMutex
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("fiscal.service"),
		clock:        p.Clock,
		repo:         p.Repo,
		saleRepo:     p.SaleRepo,
		noteRepo:     p.NoteRepo,
		customerRepo: p.CustomerRepo,
		authority:    p.Authority,
		signer:       p.Signer,
		quota:        p.Quota,
		bus:          p.Bus,
		locks:        newKeyedMutex(),
	}
}

func (s *Service) EmitInvoice(ctx context.Context, saleID string) (domain.EmitResult, error) {
	id, err := parseID(saleID)
	if err != nil {
		return domain.EmitResult{}, err
	}

	unlock := s.locks.lock(fmt.Sprintf("sale:%d", id))
	defer unlock()

	sale, err := s.saleRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.EmitResult{}, err
	}
	if sale == nil {
		return domain.EmitResult{}, domain.ErrNotFound
	}
	if sale.Kind != saledomain.KindInvoice {
		return domain.EmitResult{}, domain.ErrReceiptNotFiscal
	}
	if sale.Status == saledomain.StatusVoided {
		return domain.EmitResult{}, domain.ErrVoidedSale
	}

	return s.emit(ctx, &saleRecord{sale: sale, repo: s.saleRepo})
}

func (s *Service) EmitCreditNote(ctx context.Context, noteID string) (domain.EmitResult, error) {
	id, err := parseID(noteID)
	if err != nil {
		return domain.EmitResult{}, err
	}

	unlock := s.locks.lock(fmt.Sprintf("note:%d", id))
	defer unlock()

	note, err := s.noteRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.EmitResult{}, err
	}
	if note == nil {
		return domain.EmitResult{}, domain.ErrNotFound
	}

	return s.emit(ctx, &creditNoteRecord{note: note, repo: s.noteRepo})
}

// emit drives one document through the authority. The environment is
// snapshotted at the start and used for the whole attempt.
func (s *Service) emit(ctx context.Context, rec record) (domain.EmitResult, error) {
	if rec.State() == domain.StateAuthorized {
		return result(rec, true, "already authorized"), nil
	}
	if !rec.State().Resubmittable() {
		return domain.EmitResult{}, domain.ErrReceiptNotFiscal
	}

	settings, cert, err := s.preconditions(ctx)
	if err != nil {
		return domain.EmitResult{}, err
	}
	env := settings.Environment

	if err := s.checkCustomer(ctx, rec.CustomerID()); err != nil {
		return domain.EmitResult{}, err
	}

	// Quota applies to invoices only. A credit note reverses a document
	// that already consumed its allowance.
	if rec.Kind() == domain.DocInvoice {
		decision, err := s.quota.CanEmitInvoice(ctx)
		if err != nil {
			return domain.EmitResult{}, err
		}
		if !decision.Allowed {
			return domain.EmitResult{Message: decision.Reason}, domain.ErrQuotaDenied
		}
	}

	// a PENDING document with stored artifacts may already be authorized
	if rec.State() == domain.StatePending && rec.AccessKey() != nil && rec.SignedPayload() != nil {
		verdict, err := s.authority.QueryAuthorization(ctx, env, *rec.AccessKey())
		if err == nil {
			if verdict.Authorized {
				return s.finalize(ctx, rec, env, verdict.Number, verdict.Message)
			}
			if verdict.Rejected {
				return s.reject(ctx, rec, verdict.Message)
			}
		} else {
			s.log.Warn("authorization query failed, will resend",
				zap.Int64("document_id", rec.ID()), zap.Error(err))
		}
		// no verdict: resend the same signed payload
		return s.submit(ctx, rec, env, []byte(*rec.SignedPayload()))
	}

	// first emission in this environment assigns sequential + access key
	if rec.LegalNumber() == nil || rec.AccessKey() == nil {
		if err := s.assignArtifacts(ctx, rec, settings); err != nil {
			return domain.EmitResult{}, err
		}
	}

	payload, err := rec.Payload(settings)
	if err != nil {
		return domain.EmitResult{}, err
	}
	signed, err := s.signer.Sign(ctx, payload, cert)
	if err != nil {
		return domain.EmitResult{}, err
	}

	rec.SetSignedPayload(string(signed))
	rec.SetState(domain.StatePending)
	if err := rec.Save(ctx, s.db); err != nil {
		return domain.EmitResult{}, err
	}

	return s.submit(ctx, rec, env, signed)
}

func (s *Service) submit(ctx context.Context, rec record, env domain.Environment, signed []byte) (domain.EmitResult, error) {
	reception, err := s.authority.Submit(ctx, env, deref(rec.AccessKey()), signed)
	if err != nil {
		// transport failure: stays PENDING, retryable
		s.log.Warn("submission failed",
			zap.Int64("document_id", rec.ID()), zap.Error(err))
		return result(rec, false, fmt.Sprintf("submission failed: %v", err)), nil
	}
	if !reception.Accepted {
		return s.reject(ctx, rec, reception.Message)
	}

	verdict, err := s.authority.QueryAuthorization(ctx, env, deref(rec.AccessKey()))
	if err != nil {
		return result(rec, false, fmt.Sprintf("authorization query failed: %v", err)), nil
	}
	if verdict.Authorized {
		return s.finalize(ctx, rec, env, verdict.Number, verdict.Message)
	}
	if verdict.Rejected {
		return s.reject(ctx, rec, verdict.Message)
	}
	return result(rec, false, verdict.Message), nil
}

// finalize performs the single transition into AUTHORIZED: artifacts,
// quota counter, issued event.
func (s *Service) finalize(ctx context.Context, rec record, env domain.Environment, number, message string) (domain.EmitResult, error) {
	rec.SetState(domain.StateAuthorized)
	rec.SetAuthorization(number)
	rec.SetMessage(message)
	if err := rec.Save(ctx, s.db); err != nil {
		return domain.EmitResult{}, err
	}

	if rec.Kind() == domain.DocInvoice {
		if err := s.quota.ConsumeDocument(ctx); err != nil {
			s.log.Error("quota counter update failed after authorization",
				zap.Int64("document_id", rec.ID()), zap.Error(err))
		}
	}

	s.bus.Publish(events.TopicDocumentIssued, events.DocumentIssued{
		DocumentKind: string(rec.Kind()),
		DocumentID:   snowflake.ID(rec.ID()).String(),
		LegalNumber:  deref(rec.LegalNumber()),
		Environment:  string(env),
	})

	s.log.Info("document authorized",
		zap.Int64("document_id", rec.ID()),
		zap.String("legal_number", deref(rec.LegalNumber())),
		zap.String("authorization", number))
	return result(rec, true, message), nil
}

func (s *Service) reject(ctx context.Context, rec record, message string) (domain.EmitResult, error) {
	rec.SetState(domain.StateRejected)
	rec.SetMessage(message)
	if err := rec.Save(ctx, s.db); err != nil {
		return domain.EmitResult{}, err
	}
	s.log.Warn("document rejected",
		zap.Int64("document_id", rec.ID()), zap.String("message", message))
	return result(rec, false, message), nil
}

// assignArtifacts takes the next sequential for (kind, env) and builds
// the legal number and access key. Assigned exactly once per document.
func (s *Service) assignArtifacts(ctx context.Context, rec record, settings *domain.FiscalSettings) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.repo.NextSequential(ctx, tx, rec.Kind(), settings.Environment)
		if err != nil {
			return err
		}

		legal := fmt.Sprintf("%s-%s-%09d", settings.EstablishmentCode, settings.EmissionPoint, seq)
		rec.SetLegalNumber(legal)
		rec.SetAccessKey(domain.BuildAccessKey(domain.AccessKeyInput{
			IssuedAt:      rec.IssuedAt(),
			DocType:       rec.TypeCode(),
			RUC:           settings.RUC,
			Environment:   settings.Environment,
			Establishment: settings.EstablishmentCode,
			EmissionPoint: settings.EmissionPoint,
			Sequential:    seq,
			NumericCode:   fmt.Sprintf("%08d", rec.ID()%100000000),
			EmissionType:  "1",
		}))
		return rec.Save(ctx, tx)
	})
}

func (s *Service) preconditions(ctx context.Context) (*domain.FiscalSettings, *domain.Certificate, error) {
	settings, err := s.repo.GetSettings(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	if !settings.Confirmed {
		return nil, nil, domain.ErrEnvironmentUnconfirmed
	}
	if len(settings.RUC) != 13 {
		return nil, nil, domain.ErrSettingsIncomplete
	}

	cert, err := s.repo.GetCertificate(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	if cert == nil {
		return nil, nil, domain.ErrNoCertificate
	}
	return settings, cert, nil
}

func (s *Service) checkCustomer(ctx context.Context, customerID *int64) error {
	if customerID == nil {
		return domain.ErrCustomerNotTaxable
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, snowflake.ID(*customerID))
	if err != nil {
		return err
	}
	if customer == nil || !customer.Taxable() {
		return domain.ErrCustomerNotTaxable
	}
	return nil
}

func (s *Service) Status(ctx context.Context) (domain.StatusResponse, error) {
	settings, err := s.repo.GetSettings(ctx, s.db)
	if err != nil {
		return domain.StatusResponse{}, err
	}
	cert, err := s.repo.GetCertificate(ctx, s.db)
	if err != nil {
		return domain.StatusResponse{}, err
	}
	decision, err := s.quota.CanEmitInvoice(ctx)
	if err != nil {
		return domain.StatusResponse{}, err
	}

	return domain.StatusResponse{
		Environment:       settings.Environment,
		Confirmed:         settings.Confirmed,
		CertificateLoaded: cert != nil,
		QuotaAllowed:      decision.Allowed,
		QuotaReason:       decision.Reason,
	}, nil
}

func (s *Service) SetEnvironment(ctx context.Context, env domain.Environment) (domain.FiscalSettings, error) {
	if env != domain.EnvTest && env != domain.EnvProduction {
		return domain.FiscalSettings{}, domain.ErrInvalidEnvironment
	}

	settings, err := s.repo.GetSettings(ctx, s.db)
	if err != nil {
		return domain.FiscalSettings{}, err
	}

	if settings.Environment != env {
		settings.Environment = env
		// the gate must be re-acknowledged for the new environment
		settings.Confirmed = false
		settings.UpdatedAt = s.clock.Now()
		if err := s.repo.SaveSettings(ctx, s.db, settings); err != nil {
			return domain.FiscalSettings{}, err
		}
		s.log.Info("fiscal environment changed", zap.String("environment", string(env)))
	}
	return *settings, nil
}

func (s *Service) ConfirmEnvironment(ctx context.Context) (domain.FiscalSettings, error) {
	settings, err := s.repo.GetSettings(ctx, s.db)
	if err != nil {
		return domain.FiscalSettings{}, err
	}
	settings.Confirmed = true
	settings.UpdatedAt = s.clock.Now()
	if err := s.repo.SaveSettings(ctx, s.db, settings); err != nil {
		return domain.FiscalSettings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.UpdateSettingsRequest) (domain.FiscalSettings, error) {
	settings, err := s.repo.GetSettings(ctx, s.db)
	if err != nil {
		return domain.FiscalSettings{}, err
	}

	if req.EstablishmentCode != nil {
		settings.EstablishmentCode = strings.TrimSpace(*req.EstablishmentCode)
	}
	if req.EmissionPoint != nil {
		settings.EmissionPoint = strings.TrimSpace(*req.EmissionPoint)
	}
	if req.RUC != nil {
		settings.RUC = strings.TrimSpace(*req.RUC)
	}
	if req.BusinessName != nil {
		settings.BusinessName = strings.TrimSpace(*req.BusinessName)
	}
	if req.Regime != nil {
		settings.Regime = strings.TrimSpace(*req.Regime)
	}
	settings.UpdatedAt = s.clock.Now()

	if err := s.repo.SaveSettings(ctx, s.db, settings); err != nil {
		return domain.FiscalSettings{}, err
	}
	return *settings, nil
}

func (s *Service) UploadCertificate(ctx context.Context, req domain.UploadCertificateRequest) error {
	if len(req.Blob) == 0 || req.Password == "" {
		return domain.ErrInvalidCertificate
	}
	return s.repo.SaveCertificate(ctx, s.db, &domain.Certificate{
		Blob:     req.Blob,
		Password: req.Password,
		LoadedAt: s.clock.Now(),
	})
}

func (s *Service) Settings(ctx context.Context) (domain.FiscalSettings, error) {
	settings, err := s.repo.GetSettings(ctx, s.db)
	if err != nil {
		return domain.FiscalSettings{}, err
	}
	return *settings, nil
}

func result(rec record, success bool, message string) domain.EmitResult {
	res := domain.EmitResult{
		Success:     success,
		State:       rec.State(),
		AccessKey:   rec.AccessKey(),
		LegalNumber: rec.LegalNumber(),
		Message:     message,
	}
	if success {
		// authorization number only meaningful on success
		if sr, ok := rec.(*saleRecord); ok {
			res.AuthorizationNumber = sr.sale.AuthorizationNumber
		}
		if nr, ok := rec.(*creditNoteRecord); ok {
			res.AuthorizationNumber = nr.note.AuthorizationNumber
		}
	}
	return res
}

func parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}
