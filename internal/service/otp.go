package service

import (
	"context"
	"sync"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/crypto"
)

// DefaultOTPTTL is how long an issued code stays valid.
const DefaultOTPTTL = 10 * time.Minute

// OTPVerifier issues and checks 6-digit one-time codes over an OTPStore.
// Expiry is checked lazily at verification time.
type OTPVerifier struct {
	store    OTPStore
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewOTPVerifier creates a verifier. A non-positive ttl uses DefaultOTPTTL.
func NewOTPVerifier(store OTPStore, ttl time.Duration) *OTPVerifier {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPVerifier{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		generate: func() (string, error) { return crypto.RandomDigits(6) },
	}
}

// Issue stores a fresh code for identifier, replacing any live one, and returns it.
func (v *OTPVerifier) Issue(ctx context.Context, identifier string) (string, error) {
	code, err := v.generate()
	if err != nil {
		return "", domain.ErrInternal("failed to generate code", err)
	}
	entry := domain.OTPEntry{Code: code, ExpiresAt: v.now().Add(v.ttl)}
	if err := v.store.Set(ctx, identifier, entry); err != nil {
		return "", domain.ErrInternal("failed to store code", err)
	}
	return code, nil
}

// Peek checks code without consuming it. An expired entry is deleted.
func (v *OTPVerifier) Peek(ctx context.Context, identifier, code string) error {
	entry, err := v.store.Get(ctx, identifier)
	if err != nil {
		return domain.ErrInternal("failed to read code", err)
	}
	if entry == nil {
		return domain.ErrRejected(domain.ReasonOTPNotFound, "OTP not found or expired. Please request a new OTP.")
	}
	if v.now().After(entry.ExpiresAt) {
		if err := v.store.Delete(ctx, identifier); err != nil {
			return domain.ErrInternal("failed to delete code", err)
		}
		return domain.ErrRejected(domain.ReasonOTPExpired, "OTP has expired. Please request a new OTP.")
	}
	if !crypto.EqualString(entry.Code, code) {
		return domain.ErrRejected(domain.ReasonOTPMismatch, "Invalid OTP. Please try again.")
	}
	return nil
}

// Verify checks code and consumes the entry on success. A mismatch keeps the
// entry so the user can retry until it expires. Of concurrent verifications of
// the same code at most one succeeds.
func (v *OTPVerifier) Verify(ctx context.Context, identifier, code string) error {
	if err := v.Peek(ctx, identifier, code); err != nil {
		return err
	}
	return v.Consume(ctx, identifier, code)
}

// Consume removes the entry after a successful Peek. It fails with
// ReasonOTPNotFound when another caller consumed or replaced the code first.
func (v *OTPVerifier) Consume(ctx context.Context, identifier, code string) error {
	taken, err := v.store.Take(ctx, identifier, code)
	if err != nil {
		return domain.ErrInternal("failed to delete code", err)
	}
	if !taken {
		return domain.ErrRejected(domain.ReasonOTPNotFound, "OTP not found or expired. Please request a new OTP.")
	}
	return nil
}

// MemoryOTPStore is a process-local OTPStore.
type MemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]domain.OTPEntry
}

// NewMemoryOTPStore creates an empty store.
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{entries: make(map[string]domain.OTPEntry)}
}

func (m *MemoryOTPStore) Get(_ context.Context, identifier string) (*domain.OTPEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[identifier]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemoryOTPStore) Set(_ context.Context, identifier string, entry domain.OTPEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[identifier] = entry
	return nil
}

func (m *MemoryOTPStore) Delete(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, identifier)
	return nil
}

func (m *MemoryOTPStore) Take(_ context.Context, identifier, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[identifier]
	if !ok || !crypto.EqualString(e.Code, code) {
		return false, nil
	}
	delete(m.entries, identifier)
	return true, nil
}
