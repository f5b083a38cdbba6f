package repository

import (
	"context"
	"fmt"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginHistoryRepository appends and reads login events.
type LoginHistoryRepository struct {
	db *pgxpool.Pool
}

func NewLoginHistoryRepository(db *pgxpool.Pool) *LoginHistoryRepository {
	return &LoginHistoryRepository{db: db}
}

// Append records one login event.
func (r *LoginHistoryRepository) Append(ctx context.Context, e *domain.LoginEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_events
			(id, user_id, email, phone, browser, os, device_type, ip_address, method, require_otp, success, login_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.UserID, e.Email, e.Phone, e.Browser, e.OS, e.DeviceType, e.IPAddress,
		e.Method, e.RequireOTP, e.Success, e.LoginTime)
	if err != nil {
		return fmt.Errorf("failed to record login event: %w", err)
	}
	return nil
}

// ListByUser returns up to limit events, newest first. A limit <= 0 returns all.
func (r *LoginHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.LoginEvent, error) {
	query := `
		SELECT id, user_id, email, phone, browser, os, device_type, ip_address, method, require_otp, success, login_time
		FROM login_events WHERE user_id = $1 ORDER BY login_time DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list login events: %w", err)
	}
	defer rows.Close()

	events := []*domain.LoginEvent{}
	for rows.Next() {
		var e domain.LoginEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.Phone, &e.Browser, &e.OS, &e.DeviceType,
			&e.IPAddress, &e.Method, &e.RequireOTP, &e.Success, &e.LoginTime); err != nil {
			return nil, fmt.Errorf("failed to scan login event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
