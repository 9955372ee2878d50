package service

import (
	"context"
	"time"

	"github.com/tecnomade/clouget-pos/internal/clock"
	"github.com/tecnomade/clouget-pos/internal/config"
	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// offlineGrace is how long a paid plan may run on the cached verdict
// before a fresh validation is demanded.
const offlineGrace = 7 * 24 * time.Hour

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Cfg    config.Config
	Repo   subscriptiondomain.Repository
	Client subscriptiondomain.EntitlementClient
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	repo   subscriptiondomain.Repository
	client subscriptiondomain.EntitlementClient

	freeAllowance int64
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("subscription.service"),
		clock:         p.Clock,
		repo:          p.Repo,
		client:        p.Client,
		freeAllowance: p.Cfg.FreeInvoiceAllowance,
	}
}

func (s *Service) CanEmitInvoice(ctx context.Context) (subscriptiondomain.Decision, error) {
	state, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return subscriptiondomain.Decision{}, err
	}
	return s.decide(state), nil
}

func (s *Service) decide(state *subscriptiondomain.SubscriptionState) subscriptiondomain.Decision {
	now := s.clock.Now()

	// Remaining free invoices allow emission no matter which plan is
	// active; plan rules only apply once the allowance is spent.
	if state.FreeInvoicesUsed < s.freeAllowance {
		return subscriptiondomain.Decision{Allowed: true}
	}

	switch state.Plan {
	case subscriptiondomain.PlanTrial:
		return subscriptiondomain.Decision{Reason: subscriptiondomain.ReasonTrialExhausted}

	case subscriptiondomain.PlanLifetime:
		if deny, ok := s.staleCacheDenial(state, now); ok {
			return deny
		}
		return subscriptiondomain.Decision{Allowed: true}

	case subscriptiondomain.PlanDocumentPackage:
		if deny, ok := s.staleCacheDenial(state, now); ok {
			return deny
		}
		if state.RemainingDocs != nil && *state.RemainingDocs > 0 {
			return subscriptiondomain.Decision{Allowed: true}
		}
		return subscriptiondomain.Decision{Reason: subscriptiondomain.ReasonPackageExhausted}

	case subscriptiondomain.PlanTimeBound:
		if deny, ok := s.staleCacheDenial(state, now); ok {
			return deny
		}
		if state.ExpiresAt != nil && !now.After(endOfDay(*state.ExpiresAt)) {
			return subscriptiondomain.Decision{Allowed: true}
		}
		return subscriptiondomain.Decision{Reason: subscriptiondomain.ReasonExpired}
	}

	return subscriptiondomain.Decision{Reason: subscriptiondomain.ReasonNotAuthorized}
}

// staleCacheDenial denies paid plans whose verdict is unauthorized or
// older than the grace window. Trials never hit this path.
func (s *Service) staleCacheDenial(state *subscriptiondomain.SubscriptionState, now time.Time) (subscriptiondomain.Decision, bool) {
	if !state.Authorized {
		return subscriptiondomain.Decision{Reason: subscriptiondomain.ReasonNotAuthorized}, true
	}
	if state.LastValidatedAt == nil || now.Sub(*state.LastValidatedAt) > offlineGrace {
		return subscriptiondomain.Decision{Reason: subscriptiondomain.ReasonValidationRequired}, true
	}
	return subscriptiondomain.Decision{}, false
}

func (s *Service) Validate(ctx context.Context) (subscriptiondomain.SubscriptionState, error) {
	state, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return subscriptiondomain.SubscriptionState{}, err
	}

	entitlement, err := s.client.Fetch(ctx)
	if err != nil {
		now := s.clock.Now()
		if state.LastValidatedAt != nil && now.Sub(*state.LastValidatedAt) <= offlineGrace {
			s.log.Warn("entitlement fetch failed, serving cached state", zap.Error(err))
			return *state, nil
		}

		s.log.Warn("entitlement fetch failed past offline grace", zap.Error(err))
		msg := "validation required: offline grace period exceeded"
		state.Authorized = false
		state.Message = &msg
		state.UpdatedAt = now
		if err := s.repo.Save(ctx, s.db, state); err != nil {
			return subscriptiondomain.SubscriptionState{}, err
		}
		return *state, nil
	}

	now := s.clock.Now()
	state.Authorized = entitlement.Authorized
	state.Plan = entitlement.Plan
	state.ExpiresAt = entitlement.ExpiresAt
	state.RemainingDocs = entitlement.RemainingDocs
	state.LastValidatedAt = &now
	state.UpdatedAt = now
	if entitlement.Message != "" {
		msg := entitlement.Message
		state.Message = &msg
	} else {
		state.Message = nil
	}
	if len(entitlement.Raw) > 0 {
		state.LastResponse = datatypes.JSON(entitlement.Raw)
	}

	if err := s.repo.Save(ctx, s.db, state); err != nil {
		return subscriptiondomain.SubscriptionState{}, err
	}
	return *state, nil
}

func (s *Service) ConsumeDocument(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.repo.Get(ctx, tx)
		if err != nil {
			return err
		}

		// The free counter tracks every authorized invoice; package
		// plans additionally burn a purchased document.
		state.FreeInvoicesUsed++
		if state.Plan == subscriptiondomain.PlanDocumentPackage &&
			state.RemainingDocs != nil && *state.RemainingDocs > 0 {
			remaining := *state.RemainingDocs - 1
			state.RemainingDocs = &remaining
		}

		state.UpdatedAt = s.clock.Now()
		return s.repo.Save(ctx, tx, state)
	})
}

func (s *Service) State(ctx context.Context) (subscriptiondomain.SubscriptionState, error) {
	state, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return subscriptiondomain.SubscriptionState{}, err
	}
	return *state, nil
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
