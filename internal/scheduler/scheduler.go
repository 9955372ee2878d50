package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tecnomade/clouget-pos/internal/clock"
	notificationdomain "github.com/tecnomade/clouget-pos/internal/notification/domain"
	obsmetrics "github.com/tecnomade/clouget-pos/internal/observability/metrics"
	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log             *zap.Logger
	Clock           clock.Clock
	NotificationSvc notificationdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	Config          Config `optional:"true"`
}

type Scheduler struct {
	log             *zap.Logger
	cfg             Config
	clock           clock.Clock
	notificationSvc notificationdomain.Service
	subscriptionSvc subscriptiondomain.Service

	inFlight      atomic.Bool
	lastValidated time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.NotificationSvc == nil || p.SubscriptionSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:             p.Log.Named("scheduler"),
		cfg:             p.Config.withDefaults(),
		clock:           p.Clock,
		notificationSvc: p.NotificationSvc,
		subscriptionSvc: p.SubscriptionSvc,
	}, nil
}

// RunOnce runs every due job. A tick that arrives while the previous
// one is still running is skipped, not queued.
func (s *Scheduler) RunOnce(parent context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		obsmetrics.Scheduler().IncOverlapSkip()
		s.log.Debug("previous run still in flight, skipping tick")
		return nil
	}
	defer s.inFlight.Store(false)

	var err error
	if jobErr := s.runJob(parent, "notification_sweep", s.sweepNotifications); jobErr != nil {
		err = errors.Join(err, jobErr)
	}

	now := s.clock.Now()
	if s.lastValidated.IsZero() || now.Sub(s.lastValidated) >= s.cfg.ValidateEvery {
		if jobErr := s.runJob(parent, "subscription_validate", s.validateSubscription); jobErr != nil {
			err = errors.Join(err, jobErr)
		} else {
			s.lastValidated = now
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.cfg.RunInterval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("scheduler run failed", zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}
	schedMetrics.IncJobError(name)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) sweepNotifications(ctx context.Context) error {
	res, err := s.notificationSvc.Sweep(ctx)
	if err != nil {
		return err
	}
	if res.Attempted > 0 {
		obsmetrics.Scheduler().AddSweepDelivered(res.Delivered)
		obsmetrics.Scheduler().AddSweepFailed(res.Failed)
		s.log.Info("notification sweep",
			zap.Int("attempted", res.Attempted),
			zap.Int("delivered", res.Delivered),
			zap.Int("failed", res.Failed))
	}
	return nil
}

func (s *Scheduler) validateSubscription(ctx context.Context) error {
	state, err := s.subscriptionSvc.Validate(ctx)
	if err != nil {
		return err
	}
	if !state.Authorized {
		s.log.Warn("subscription not authorized", zap.String("plan", string(state.Plan)))
	}
	return nil
}
