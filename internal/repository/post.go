package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `p.id, p.user_id, COALESCE(u.name, p.user_name), p.caption, p.media_url, p.media_type,
	p.likes, p.comments, p.shares, p.created_at, p.updated_at`

const postFrom = ` FROM public_posts p LEFT JOIN users u ON u.id = p.user_id`

// PostRepository persists public posts.
type PostRepository struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*domain.PublicPost, error) {
	var p domain.PublicPost
	err := row.Scan(&p.ID, &p.UserID, &p.UserName, &p.Caption, &p.MediaURL, &p.MediaType,
		&p.Likes, &p.Comments, &p.Shares, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a post.
func (r *PostRepository) Create(ctx context.Context, p *domain.PublicPost) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO public_posts (id, user_id, user_name, caption, media_url, media_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.UserID, p.UserName, p.Caption, p.MediaURL, p.MediaType, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// CountByUserBetween counts the user's posts created in [from, to).
func (r *PostRepository) CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM public_posts
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// ListPage returns newest-first posts and the total count.
func (r *PostRepository) ListPage(ctx context.Context, offset, limit int) ([]*domain.PublicPost, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM public_posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+postColumns+postFrom+` ORDER BY p.created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*domain.PublicPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// FindByID returns a post, or nil if absent.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.PublicPost, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+postFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return p, nil
}

// ToggleLike adds or removes userID from the like set and returns the new like count.
// found is false when the post does not exist.
func (r *PostRepository) ToggleLike(ctx context.Context, id, userID string) (likes int, found bool, err error) {
	err = r.db.QueryRow(ctx, `
		UPDATE public_posts SET
			likes = CASE WHEN $2 = ANY(likes) THEN array_remove(likes, $2) ELSE array_append(likes, $2) END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING cardinality(likes)
	`, id, userID).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return likes, true, nil
}

// AddComment appends a comment and returns the full comment list, or nil if the post is absent.
func (r *PostRepository) AddComment(ctx context.Context, id string, c domain.Comment) ([]domain.Comment, error) {
	payload, err := json.Marshal([]domain.Comment{c})
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment: %w", err)
	}
	var comments []domain.Comment
	err = r.db.QueryRow(ctx, `
		UPDATE public_posts SET comments = comments || $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING comments
	`, id, string(payload)).Scan(&comments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comments, nil
}

// IncrementShares bumps the share counter and returns the new value. found is false when absent.
func (r *PostRepository) IncrementShares(ctx context.Context, id string) (shares int, found bool, err error) {
	err = r.db.QueryRow(ctx, `
		UPDATE public_posts SET shares = shares + 1, updated_at = NOW() WHERE id = $1 RETURNING shares
	`, id).Scan(&shares)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to share post: %w", err)
	}
	return shares, true, nil
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM public_posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
