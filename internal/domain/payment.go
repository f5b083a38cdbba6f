package domain

import (
	"fmt"
	"time"
)

// PaymentStatus is the lifecycle state of a payment order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentOrder is one checkout attempt.
type PaymentOrder struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	OrderID       string        `json:"orderId"`
	PaymentID     string        `json:"paymentId,omitempty"`
	Signature     string        `json:"-"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Tier          Tier          `json:"planType"`
	Status        PaymentStatus `json:"status"`
	InvoiceNumber string        `json:"invoiceNumber,omitempty"`
	Email         string        `json:"email,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

// PaymentCompletion is the pending→completed transition of one order.
type PaymentCompletion struct {
	OrderID       string
	PaymentID     string
	Signature     string
	InvoiceNumber string
	CompletedAt   time.Time
}

// InvoiceNumber formats INV-YYYYMM-NNNN.
func InvoiceNumber(now time.Time, seq int) string {
	return fmt.Sprintf("INV-%04d%02d-%04d", now.Year(), int(now.Month()), seq%10000)
}

// OrderResponse is returned from create-order.
type OrderResponse struct {
	Order       ProviderOrder `json:"order"`
	Key         string        `json:"key"`
	PlanDetails Plan          `json:"planDetails"`
}

// ProviderOrder is the provider's order handle as exposed to the checkout client.
type ProviderOrder struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
	Mock     bool              `json:"mock,omitempty"`
}

// VerifyPaymentResponse is returned after a successful verification.
type VerifyPaymentResponse struct {
	Message      string       `json:"message"`
	Subscription Subscription `json:"subscription"`
	Payment      PaymentOrder `json:"payment"`
}
