package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `id, user_id, plan_type, plan_price, questions_per_day, questions_used_today,
	last_reset_date, start_date, end_date, is_active, order_id, payment_id, created_at, updated_at`

// SubscriptionRepository persists one subscription row per account.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.UserID, &s.Tier, &s.PlanPrice, &s.QuestionsPerDay, &s.QuestionsUsedToday,
		&s.LastResetDate, &s.StartDate, &s.EndDate, &s.IsActive, &s.OrderID, &s.PaymentID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByUserID returns the account's subscription, or nil if none exists yet.
func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	row := r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return sub, nil
}

// CreateIfAbsent inserts sub unless the account already has a subscription,
// then returns whichever row is stored.
func (r *SubscriptionRepository) CreateIfAbsent(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.UserID, sub.Tier, sub.PlanPrice, sub.QuestionsPerDay, sub.QuestionsUsedToday,
		sub.LastResetDate, sub.StartDate, sub.EndDate, sub.IsActive, sub.OrderID, sub.PaymentID,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	stored, err := r.FindByUserID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("subscription for %s vanished after insert", sub.UserID)
	}
	return stored, nil
}

// Save writes every mutable field of sub, inserting the row if needed.
func (r *SubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	return saveSubscription(ctx, r.db, sub)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveSubscription(ctx context.Context, db execer, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_type            = EXCLUDED.plan_type,
			plan_price           = EXCLUDED.plan_price,
			questions_per_day    = EXCLUDED.questions_per_day,
			questions_used_today = EXCLUDED.questions_used_today,
			last_reset_date      = EXCLUDED.last_reset_date,
			start_date           = EXCLUDED.start_date,
			end_date             = EXCLUDED.end_date,
			is_active            = EXCLUDED.is_active,
			order_id             = EXCLUDED.order_id,
			payment_id           = EXCLUDED.payment_id,
			updated_at           = EXCLUDED.updated_at
	`
	_, err := db.Exec(ctx, query,
		sub.ID, sub.UserID, sub.Tier, sub.PlanPrice, sub.QuestionsPerDay, sub.QuestionsUsedToday,
		sub.LastResetDate, sub.StartDate, sub.EndDate, sub.IsActive, sub.OrderID, sub.PaymentID,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// IncrementUsage atomically adds one to today's counter and returns the new value.
func (r *SubscriptionRepository) IncrementUsage(ctx context.Context, userID string) (int, error) {
	var used int
	err := r.db.QueryRow(ctx, `
		UPDATE subscriptions
		SET questions_used_today = questions_used_today + 1, updated_at = NOW()
		WHERE user_id = $1
		RETURNING questions_used_today
	`, userID).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("no subscription for %s", userID)
		}
		return 0, fmt.Errorf("failed to record usage: %w", err)
	}
	return used, nil
}
