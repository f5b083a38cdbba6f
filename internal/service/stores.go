package service

import (
	"context"
	"time"

	"github.com/codequest/backend/internal/domain"
)

// The interfaces below are satisfied by the pgx repositories and by in-memory
// fakes in tests.

// AccountStore reads and writes accounts.
type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Account, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
	UpdateProfile(ctx context.Context, id, name, about string, tags []string) (*domain.Account, error)
	LinkGoogleID(ctx context.Context, id, googleID string) error
}

// SubscriptionStore holds one subscription per account.
type SubscriptionStore interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Subscription, error)
	CreateIfAbsent(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	Save(ctx context.Context, sub *domain.Subscription) error
	IncrementUsage(ctx context.Context, userID string) (int, error)
}

// PaymentStore holds payment orders keyed by provider order id.
type PaymentStore interface {
	CreateIfAbsent(ctx context.Context, p *domain.PaymentOrder) (bool, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	// Complete applies c and stores sub atomically. Neither is written unless both are.
	Complete(ctx context.Context, c domain.PaymentCompletion, sub *domain.Subscription) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.PaymentOrder, error)
}

// OTPStore is the key-value capability behind the OTP verifier.
type OTPStore interface {
	Get(ctx context.Context, identifier string) (*domain.OTPEntry, error)
	Set(ctx context.Context, identifier string, entry domain.OTPEntry) error
	Delete(ctx context.Context, identifier string) error
	// Take removes the entry only if it still holds code and reports whether it did.
	Take(ctx context.Context, identifier, code string) (bool, error)
}

// LoginEventStore appends and lists login events.
type LoginEventStore interface {
	Append(ctx context.Context, e *domain.LoginEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.LoginEvent, error)
}

// FriendStore holds friend requests and the friend sets on accounts.
type FriendStore interface {
	FindByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	FindBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error)
	Create(ctx context.Context, fr *domain.FriendRequest) error
	Reopen(ctx context.Context, id, from, to string, at time.Time) (*domain.FriendRequest, error)
	Accept(ctx context.Context, id string, at time.Time) (*domain.FriendRequest, error)
	Reject(ctx context.Context, id string, at time.Time) error
	DeletePending(ctx context.Context, id string) error
	ListIncoming(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	RemoveFriendship(ctx context.Context, a, b string) error
}

// PostStore holds public posts.
type PostStore interface {
	Create(ctx context.Context, p *domain.PublicPost) error
	CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	ListPage(ctx context.Context, offset, limit int) ([]*domain.PublicPost, int, error)
	FindByID(ctx context.Context, id string) (*domain.PublicPost, error)
	ToggleLike(ctx context.Context, id, userID string) (int, bool, error)
	AddComment(ctx context.Context, id string, c domain.Comment) ([]domain.Comment, error)
	IncrementShares(ctx context.Context, id string) (int, bool, error)
	Delete(ctx context.Context, id string) error
}

// QuestionStore holds questions.
type QuestionStore interface {
	Create(ctx context.Context, q *domain.Question) error
	List(ctx context.Context, filter domain.QuestionFilter) ([]*domain.Question, error)
	FindByID(ctx context.Context, id string) (*domain.Question, error)
	Update(ctx context.Context, q *domain.Question) error
	Delete(ctx context.Context, id string) error
}
