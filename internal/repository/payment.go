package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, user_id, order_id, payment_id, signature, amount, currency, plan_type,
	status, COALESCE(invoice_number, ''), email, created_at, completed_at`

// PaymentRepository persists payment orders.
type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*domain.PaymentOrder, error) {
	var p domain.PaymentOrder
	err := row.Scan(
		&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Signature, &p.Amount, &p.Currency, &p.Tier,
		&p.Status, &p.InvoiceNumber, &p.Email, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent inserts a pending order keyed by order id. It reports false
// when a record for the order id already exists.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, p *domain.PaymentOrder) (bool, error) {
	query := `
		INSERT INTO payments (id, user_id, order_id, amount, currency, plan_type, status, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.OrderID, p.Amount, p.Currency, p.Tier, p.Status, p.Email, p.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindByOrderID returns the order, or nil if absent.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

// Complete moves a pending order to completed and saves the activated
// subscription in one transaction. It returns domain.ErrNotPending when the
// order is not pending and *domain.ErrDuplicate when the invoice number is taken.
func (r *PaymentRepository) Complete(ctx context.Context, c domain.PaymentCompletion, sub *domain.Subscription) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = 'completed', payment_id = $2, signature = $3, invoice_number = $4, completed_at = $5
		WHERE order_id = $1 AND status = 'pending'
	`, c.OrderID, c.PaymentID, c.Signature, c.InvoiceNumber, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to complete payment: %w", asDuplicate(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotPending
	}

	if err := saveSubscription(ctx, tx, sub); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListByUser returns the newest orders first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.PaymentOrder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.PaymentOrder{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
