package service

import (
	"context"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

// SubscriptionService is the quota engine: it owns subscription reads, lazy
// creation, reconciliation and usage recording.
type SubscriptionService struct {
	repo SubscriptionStore
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo SubscriptionStore, log logrus.FieldLogger) *SubscriptionService {
	return &SubscriptionService{repo: repo, log: log, now: time.Now}
}

// GetOrCreate returns the account's subscription, creating the free one on first use.
func (s *SubscriptionService) GetOrCreate(ctx context.Context, userID string) (*domain.Subscription, error) {
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load subscription", err)
	}
	if sub != nil {
		return sub, nil
	}

	fresh := domain.NewFreeSubscription(domain.NewID(), userID, s.now())
	sub, err = s.repo.CreateIfAbsent(ctx, &fresh)
	if err != nil {
		return nil, domain.ErrInternal("failed to create subscription", err)
	}
	s.log.WithField("user_id", userID).Info("created free subscription")
	return sub, nil
}

// Current returns the reconciled subscription, persisting any downgrade or rollover.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (domain.Subscription, error) {
	stored, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub, changed := domain.Reconcile(*stored, s.now())
	if !changed {
		return sub, nil
	}
	if stored.Tier != sub.Tier {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"from":    stored.Tier,
		}).Info("subscription expired, downgraded to free")
	}
	if err := s.repo.Save(ctx, &sub); err != nil {
		return domain.Subscription{}, domain.ErrInternal("failed to save subscription", err)
	}
	return sub, nil
}

// Admit returns the reconciled subscription when one more question is allowed,
// or a 403 naming the tier, allowance and usage.
func (s *SubscriptionService) Admit(ctx context.Context, userID string) (domain.Subscription, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return sub, err
	}
	if !domain.CanAdmit(sub) {
		return sub, domain.QuotaDenied(sub)
	}
	return sub, nil
}

// RecordUsage counts one admitted question. Call only after the question is saved.
// The increment is atomic in storage, so concurrent admissions overshoot the cap
// by at most the number of requests that passed Admit together.
func (s *SubscriptionService) RecordUsage(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	used, err := s.repo.IncrementUsage(ctx, sub.UserID)
	if err != nil {
		return sub, domain.ErrInternal("failed to record usage", err)
	}
	sub.QuestionsUsedToday = used
	return sub, nil
}

// View returns the subscription with its plan details.
func (s *SubscriptionService) View(ctx context.Context, userID string) (*domain.SubscriptionView, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.SubscriptionView{
		Subscription: sub,
		PlanDetails:  domain.GetPlan(sub.Tier),
		Remaining:    domain.Remaining(sub),
	}, nil
}

// PrepareActivation computes the subscription that activating plan after a
// verified payment would produce. The caller stores it.
func (s *SubscriptionService) PrepareActivation(ctx context.Context, userID string, plan domain.Plan, amount int64, orderID, paymentID string) (domain.Subscription, error) {
	stored, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Subscription{}, err
	}
	return domain.Activate(*stored, plan, amount, orderID, paymentID, s.now()), nil
}

// Plans returns the plan catalogue.
func (s *SubscriptionService) Plans() []domain.Plan {
	return domain.AvailablePlans()
}
