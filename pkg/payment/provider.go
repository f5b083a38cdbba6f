// Package payment talks to the external payment provider.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/codequest/backend/pkg/crypto"
	"github.com/sirupsen/logrus"
)

// CurrencyINR is the only currency plans are sold in.
const CurrencyINR = "INR"

// OrderRequest asks the provider for a new checkout order.
type OrderRequest struct {
	Amount   int64 // minor units (paise)
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the provider's handle for a checkout.
type Order struct {
	ID        string            `json:"id"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes,omitempty"`
	CreatedAt int64             `json:"created_at"`
	Mock      bool              `json:"-"`
}

// Provider is the payment provider capability.
type Provider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// VerifySignature checks HMAC_SHA256(secret, orderID|paymentID) == signature.
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID is the public key handed to the checkout client.
	KeyID() string
}

// SignaturePayload is the message signed by the provider on checkout success.
func SignaturePayload(orderID, paymentID string) string {
	return orderID + "|" + paymentID
}

// Sign computes the checkout signature. Used by the mock provider and tests.
func Sign(secret, orderID, paymentID string) string {
	return crypto.SignHex(secret, SignaturePayload(orderID, paymentID))
}

// Receipt builds a receipt id from the current time.
func Receipt(now time.Time) string {
	return "order_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// fallback serves orders from the mock when the primary provider fails.
type fallback struct {
	primary Provider
	mock    *MockProvider
	log     logrus.FieldLogger
}

// WithFallback wraps primary so CreateOrder never fails because the provider is
// unreachable: a locally synthesized mock order is returned instead.
// Signatures are still verified with the primary's secret.
func WithFallback(primary Provider, mock *MockProvider, log logrus.FieldLogger) Provider {
	return &fallback{primary: primary, mock: mock, log: log}
}

func (f *fallback) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	order, err := f.primary.CreateOrder(ctx, req)
	if err == nil {
		return order, nil
	}
	f.log.WithError(err).Warn("payment provider unavailable, using mock order")
	order, mockErr := f.mock.CreateOrder(ctx, req)
	if mockErr != nil {
		return nil, fmt.Errorf("failed to create mock order: %w", mockErr)
	}
	return order, nil
}

func (f *fallback) VerifySignature(orderID, paymentID, signature string) bool {
	return f.primary.VerifySignature(orderID, paymentID, signature)
}

func (f *fallback) KeyID() string {
	return f.primary.KeyID()
}
