package domain

import (
	"fmt"
	"strings"
	"time"
)

// Subscription is a user's plan state and daily question counter.
// It is a plain value; the policy functions below take it and the current time.
type Subscription struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	Tier               Tier       `json:"planType"`
	PlanPrice          int64      `json:"planPrice"`
	QuestionsPerDay    int        `json:"questionsPerDay"`
	QuestionsUsedToday int        `json:"questionsUsedToday"`
	LastResetDate      time.Time  `json:"lastResetDate"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	IsActive           bool       `json:"isActive"`
	OrderID            string     `json:"orderId,omitempty"`
	PaymentID          string     `json:"paymentId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// NewFreeSubscription returns the lazily created default subscription.
func NewFreeSubscription(id, userID string, now time.Time) Subscription {
	free := GetPlan(TierFree)
	return Subscription{
		ID:              id,
		UserID:          userID,
		Tier:            TierFree,
		QuestionsPerDay: free.QuestionsPerDay,
		LastResetDate:   now,
		StartDate:       now,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsExpired reports whether a paid subscription has passed its end date.
func IsExpired(sub Subscription, now time.Time) bool {
	if sub.Tier == TierFree || sub.EndDate == nil {
		return false
	}
	return now.After(*sub.EndDate)
}

// SameCalendarDay compares year, month and day of both instants in now's location.
func SameCalendarDay(a, now time.Time) bool {
	ay, am, ad := a.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ay == ny && am == nm && ad == nd
}

// Reconcile applies expiry downgrade and then daily rollover.
// Expiry must run first so a downgraded counter is reset against the free allowance.
func Reconcile(sub Subscription, now time.Time) (Subscription, bool) {
	changed := false

	if IsExpired(sub, now) {
		sub.Tier = TierFree
		sub.QuestionsPerDay = GetPlan(TierFree).QuestionsPerDay
		sub.IsActive = false
		changed = true
	}

	if !SameCalendarDay(sub.LastResetDate, now) {
		sub.QuestionsUsedToday = 0
		sub.LastResetDate = now
		changed = true
	}

	if changed {
		sub.UpdatedAt = now
	}
	return sub, changed
}

// IsUnlimited reports whether the subscription has no daily cap.
func IsUnlimited(sub Subscription) bool {
	return sub.Tier == TierGold || sub.QuestionsPerDay == Unlimited
}

// CanAdmit reports whether one more question may be posted. Call after Reconcile.
func CanAdmit(sub Subscription) bool {
	if IsUnlimited(sub) {
		return true
	}
	return sub.QuestionsUsedToday < sub.QuestionsPerDay
}

// RecordUsage counts one admitted question.
func RecordUsage(sub Subscription) Subscription {
	sub.QuestionsUsedToday++
	return sub
}

// Remaining returns questions left today, or Unlimited.
func Remaining(sub Subscription) int {
	if IsUnlimited(sub) {
		return Unlimited
	}
	if left := sub.QuestionsPerDay - sub.QuestionsUsedToday; left > 0 {
		return left
	}
	return 0
}

// QuotaDenied builds the 403 returned when CanAdmit is false.
func QuotaDenied(sub Subscription) *AppError {
	limit := sub.QuestionsPerDay
	noun := "question"
	if limit != 1 {
		noun = "questions"
	}
	msg := fmt.Sprintf(
		"Daily question limit reached! %s plan allows %d %s per day. Upgrade your plan to post more questions.",
		strings.ToUpper(string(sub.Tier)), limit, noun,
	)
	return ErrPolicyDenied(ReasonQuestionQuota, msg, map[string]interface{}{
		"currentPlan": sub.Tier,
		"dailyLimit":  limit,
		"usedToday":   sub.QuestionsUsedToday,
	})
}

// Activate moves a subscription onto a paid plan for the plan's duration.
func Activate(sub Subscription, plan Plan, amount int64, orderID, paymentID string, now time.Time) Subscription {
	end := now.AddDate(0, 0, plan.DurationDays)
	sub.Tier = plan.ID
	sub.PlanPrice = amount
	sub.QuestionsPerDay = plan.QuestionsPerDay
	sub.QuestionsUsedToday = 0
	sub.LastResetDate = now
	sub.StartDate = now
	sub.EndDate = &end
	sub.IsActive = true
	sub.OrderID = orderID
	sub.PaymentID = paymentID
	sub.UpdatedAt = now
	return sub
}

// CreateOrderRequest is the input for starting a checkout.
type CreateOrderRequest struct {
	PlanType string `json:"planType" validate:"required"`
}

// VerifyPaymentRequest carries the provider's checkout result.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// SubscriptionView is the subscription plus its plan details.
type SubscriptionView struct {
	Subscription Subscription `json:"subscription"`
	PlanDetails  Plan         `json:"planDetails"`
	Remaining    int          `json:"questionsRemaining"`
}
