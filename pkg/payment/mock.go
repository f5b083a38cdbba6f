package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/codequest/backend/pkg/crypto"
)

// DefaultMockSecret signs mock checkouts when no provider secret is configured.
const DefaultMockSecret = "dummy_secret"

// MockProvider synthesizes orders locally so the checkout flow works without the provider.
type MockProvider struct {
	secret string
	keyID  string
	now    func() time.Time
}

// NewMockProvider creates a mock provider. An empty secret falls back to DefaultMockSecret.
func NewMockProvider(keyID, secret string) *MockProvider {
	if secret == "" {
		secret = DefaultMockSecret
	}
	return &MockProvider{secret: secret, keyID: keyID, now: time.Now}
}

// CreateOrder returns an order with id order_mock_<unix nanos>.
func (m *MockProvider) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid amount %d", req.Amount)
	}
	now := m.now()
	currency := req.Currency
	if currency == "" {
		currency = CurrencyINR
	}
	return &Order{
		ID:        fmt.Sprintf("order_mock_%d", now.UnixNano()),
		Amount:    req.Amount,
		Currency:  currency,
		Receipt:   req.Receipt,
		Status:    "created",
		Notes:     req.Notes,
		CreatedAt: now.Unix(),
		Mock:      true,
	}, nil
}

func (m *MockProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return crypto.VerifyHex(m.secret, SignaturePayload(orderID, paymentID), signature)
}

func (m *MockProvider) KeyID() string {
	return m.keyID
}
