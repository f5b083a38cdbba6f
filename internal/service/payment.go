package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/mailer"
	"github.com/codequest/backend/pkg/payment"
	"github.com/sirupsen/logrus"
)

// Payment history limits.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	invoiceAttempts     = 5
	invoiceMailTimeout  = 15 * time.Second
)

// PaymentService creates checkout orders and activates subscriptions on verified payments.
type PaymentService struct {
	provider payment.Provider
	payments PaymentStore
	accounts AccountStore
	subs     *SubscriptionService
	mail     mailer.Mailer
	window   domain.Window
	log      logrus.FieldLogger
	now      func() time.Time
	invoice  func(now time.Time) string
	mailing  sync.WaitGroup
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(provider payment.Provider, payments PaymentStore, accounts AccountStore, subs *SubscriptionService, mail mailer.Mailer, window domain.Window, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{
		provider: provider,
		payments: payments,
		accounts: accounts,
		subs:     subs,
		mail:     mail,
		window:   window,
		log:      log,
		now:      time.Now,
		invoice: func(now time.Time) string {
			return domain.InvoiceNumber(now, rand.IntN(10000))
		},
	}
}

// WindowStatus reports whether payments are currently allowed.
func (s *PaymentService) WindowStatus() domain.WindowStatus {
	return s.window.Status(s.now())
}

// CreateOrder opens a checkout for a paid tier inside the payment window.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, planType string) (*domain.OrderResponse, error) {
	plan, ok := domain.LookupPlan(planType)
	if !ok || !plan.IsPaid() {
		return nil, domain.ErrRejected(domain.ReasonInvalidPlan, "Invalid plan type")
	}

	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound("User not found")
	}

	now := s.now()
	if !s.window.Allows(now) {
		status := s.window.Status(now)
		return nil, domain.ErrPolicyDenied(domain.ReasonPaymentWindow,
			"Payment is only allowed between "+status.AllowedWindow,
			map[string]interface{}{
				"allowedWindow": status.AllowedWindow,
				"currentTime":   status.CurrentTime,
			})
	}

	order, err := s.provider.CreateOrder(ctx, payment.OrderRequest{
		Amount:   plan.AmountMinor(),
		Currency: payment.CurrencyINR,
		Receipt:  payment.Receipt(now),
		Notes: map[string]string{
			"userId":   acct.ID,
			"planType": string(plan.ID),
			"email":    acct.Contact(),
		},
	})
	if err != nil {
		return nil, domain.ErrInternal("failed to create payment order", err)
	}

	record := &domain.PaymentOrder{
		ID:        domain.NewID(),
		UserID:    acct.ID,
		OrderID:   order.ID,
		Amount:    plan.Price,
		Currency:  order.Currency,
		Tier:      plan.ID,
		Status:    domain.PaymentPending,
		Email:     acct.Contact(),
		CreatedAt: now,
	}
	created, err := s.payments.CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, domain.ErrInternal("failed to save payment order", err)
	}
	if !created {
		s.log.WithField("order_id", order.ID).Info("payment order already recorded")
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  acct.ID,
		"order_id": order.ID,
		"plan":     plan.ID,
		"mock":     order.Mock,
	}).Info("payment order created")

	return &domain.OrderResponse{
		Order: domain.ProviderOrder{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
			Receipt:  order.Receipt,
			Status:   order.Status,
			Notes:    order.Notes,
			Mock:     order.Mock,
		},
		Key:         s.provider.KeyID(),
		PlanDetails: plan,
	}, nil
}

// VerifyPayment checks the provider signature, completes the order exactly once
// and activates the purchased plan for the order's owner.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID string, req *domain.VerifyPaymentRequest) (*domain.VerifyPaymentResponse, error) {
	if !s.provider.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.log.WithField("order_id", req.OrderID).Warn("payment signature mismatch")
		return nil, domain.ErrRejected(domain.ReasonInvalidSig, "Invalid payment signature")
	}

	order, err := s.payments.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load payment order", err)
	}
	if order == nil || order.UserID != userID {
		return nil, domain.ErrNotFound("Payment order not found")
	}
	if order.Status == domain.PaymentCompleted {
		return nil, domain.ErrRejected(domain.ReasonAlreadyDone, "Payment already processed")
	}

	plan := domain.GetPlan(order.Tier)
	sub, err := s.subs.PrepareActivation(ctx, order.UserID, plan, order.Amount, order.OrderID, req.PaymentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoice, err := s.complete(ctx, req, now, &sub)
	if err != nil {
		return nil, err
	}

	order.Status = domain.PaymentCompleted
	order.PaymentID = req.PaymentID
	order.InvoiceNumber = invoice
	order.CompletedAt = &now

	s.log.WithFields(logrus.Fields{
		"user_id":  order.UserID,
		"order_id": order.OrderID,
		"plan":     plan.ID,
		"invoice":  invoice,
	}).Info("payment verified, subscription activated")

	s.sendInvoice(*order, plan, sub)

	return &domain.VerifyPaymentResponse{
		Message:      "Payment verified successfully",
		Subscription: sub,
		Payment:      *order,
	}, nil
}

// complete performs the pending→completed transition together with the
// subscription write, retrying when the generated invoice number collides
// with an existing one.
func (s *PaymentService) complete(ctx context.Context, req *domain.VerifyPaymentRequest, now time.Time, sub *domain.Subscription) (string, error) {
	for attempt := 0; attempt < invoiceAttempts; attempt++ {
		invoice := s.invoice(now)
		err := s.payments.Complete(ctx, domain.PaymentCompletion{
			OrderID:       req.OrderID,
			PaymentID:     req.PaymentID,
			Signature:     req.Signature,
			InvoiceNumber: invoice,
			CompletedAt:   now,
		}, sub)
		switch {
		case err == nil:
			return invoice, nil
		case errors.Is(err, domain.ErrNotPending):
			return "", domain.ErrRejected(domain.ReasonAlreadyDone, "Payment already processed")
		case domain.IsDuplicate(err, "invoice_number"):
			continue
		default:
			return "", domain.ErrInternal("failed to complete payment", err)
		}
	}
	return "", domain.ErrInternal("failed to allocate invoice number", fmt.Errorf("%d collisions", invoiceAttempts))
}

// sendInvoice mails the invoice in the background. Wait blocks until pending sends finish.
func (s *PaymentService) sendInvoice(order domain.PaymentOrder, plan domain.Plan, sub domain.Subscription) {
	if order.Email == "" {
		return
	}
	end := "-"
	if sub.EndDate != nil {
		end = sub.EndDate.Format("02 Jan 2006")
	}
	body := fmt.Sprintf(
		"Thank you for your purchase.\n\nInvoice: %s\nPlan: %s\nAmount: ₹%d\nOrder: %s\nPayment: %s\nValid until: %s\n",
		order.InvoiceNumber, plan.Name, order.Amount, order.OrderID, order.PaymentID, end,
	)
	msg := mailer.Message{To: order.Email, Subject: "Your invoice " + order.InvoiceNumber, Body: body}

	s.mailing.Add(1)
	go func() {
		defer s.mailing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), invoiceMailTimeout)
		defer cancel()
		if err := s.mail.Send(ctx, msg); err != nil {
			s.log.WithError(err).WithField("order_id", order.OrderID).Warn("failed to send invoice email")
		}
	}()
}

// Wait blocks until every invoice email started so far has been attempted.
func (s *PaymentService) Wait() {
	s.mailing.Wait()
}

// History returns the account's orders, newest first.
func (s *PaymentService) History(ctx context.Context, userID string, limit int) ([]*domain.PaymentOrder, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	orders, err := s.payments.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, domain.ErrInternal("failed to load payment history", err)
	}
	return orders, nil
}
