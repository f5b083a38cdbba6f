package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const friendRequestColumns = `id, from_user, to_user, status, created_at, responded_at`

// FriendRepository persists friend requests and the friend sets on accounts.
// There is at most one request row per unordered pair of accounts.
type FriendRepository struct {
	db *pgxpool.Pool
}

func NewFriendRepository(db *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{db: db}
}

func scanFriendRequest(row pgx.Row) (*domain.FriendRequest, error) {
	var fr domain.FriendRequest
	if err := row.Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Status, &fr.CreatedAt, &fr.RespondedAt); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *FriendRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*domain.FriendRequest, error) {
	fr, err := scanFriendRequest(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find friend request: %w", err)
	}
	return fr, nil
}

func (r *FriendRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*domain.FriendRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := []*domain.FriendRequest{}
	for rows.Next() {
		fr, err := scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, fr)
	}
	return requests, rows.Err()
}

// FindByID returns a request, or nil if absent.
func (r *FriendRepository) FindByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	return r.queryOne(ctx, `SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = $1`, id)
}

// FindBetween returns the request between a and b in either direction, or nil.
func (r *FriendRepository) FindBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error) {
	return r.queryOne(ctx, `
		SELECT `+friendRequestColumns+` FROM friend_requests
		WHERE (from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1)
	`, a, b)
}

// Create inserts a new request.
func (r *FriendRepository) Create(ctx context.Context, fr *domain.FriendRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO friend_requests (`+friendRequestColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
	`, fr.ID, fr.FromUserID, fr.ToUserID, fr.Status, fr.CreatedAt, fr.RespondedAt)
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", asDuplicate(err))
	}
	return nil
}

// Reopen turns a non-pending request back into a pending one from -> to with a fresh timestamp.
func (r *FriendRepository) Reopen(ctx context.Context, id, from, to string, at time.Time) (*domain.FriendRequest, error) {
	fr, err := r.queryOne(ctx, `
		UPDATE friend_requests
		SET from_user = $2, to_user = $3, status = 'pending', created_at = $4, responded_at = NULL
		WHERE id = $1 AND status <> 'pending'
		RETURNING `+friendRequestColumns, id, from, to, at)
	if err != nil {
		return nil, err
	}
	if fr == nil {
		return nil, &domain.ErrDuplicate{Field: "friend_request"}
	}
	return fr, nil
}

// Accept marks a pending request accepted and adds each account to the other's
// friend set in one transaction.
func (r *FriendRepository) Accept(ctx context.Context, id string, at time.Time) (*domain.FriendRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	fr, err := scanFriendRequest(tx.QueryRow(ctx, `
		UPDATE friend_requests SET status = 'accepted', responded_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+friendRequestColumns, id, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotPending
		}
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}

	addFriend := `
		UPDATE users SET friends = array_append(friends, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(friends))
	`
	if _, err := tx.Exec(ctx, addFriend, fr.FromUserID, fr.ToUserID); err != nil {
		return nil, fmt.Errorf("failed to add friend: %w", err)
	}
	if _, err := tx.Exec(ctx, addFriend, fr.ToUserID, fr.FromUserID); err != nil {
		return nil, fmt.Errorf("failed to add friend: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return fr, nil
}

// Reject marks a pending request rejected.
func (r *FriendRepository) Reject(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE friend_requests SET status = 'rejected', responded_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotPending
	}
	return nil
}

// DeletePending hard-deletes a still-pending request.
func (r *FriendRepository) DeletePending(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotPending
	}
	return nil
}

// ListIncoming returns pending requests addressed to userID, newest first.
func (r *FriendRepository) ListIncoming(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	return r.queryMany(ctx, `
		SELECT `+friendRequestColumns+` FROM friend_requests
		WHERE to_user = $1 AND status = 'pending' ORDER BY created_at DESC
	`, userID)
}

// ListOutgoing returns pending requests sent by userID, newest first.
func (r *FriendRepository) ListOutgoing(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	return r.queryMany(ctx, `
		SELECT `+friendRequestColumns+` FROM friend_requests
		WHERE from_user = $1 AND status = 'pending' ORDER BY created_at DESC
	`, userID)
}

// RemoveFriendship drops a and b from each other's friend sets.
func (r *FriendRepository) RemoveFriendship(ctx context.Context, a, b string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET
			friends = CASE WHEN id = $1 THEN array_remove(friends, $2) ELSE array_remove(friends, $1) END,
			updated_at = NOW()
		WHERE id IN ($1, $2)
	`, a, b)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}
