package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, name, email, phone, password, google_id, about, tags, friends, joined_on, updated_at`

// AccountRepository handles database operations for accounts.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &a.Password, &a.GoogleID,
		&a.About, &a.Tags, &a.Friends, &a.JoinedOn, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account. Unique violations return *domain.ErrDuplicate.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO users (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	tags, friends := a.Tags, a.Friends
	if tags == nil {
		tags = []string{}
	}
	if friends == nil {
		friends = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		a.ID, a.Name, a.Email, a.Phone, a.Password, a.GoogleID,
		a.About, tags, friends, a.JoinedOn, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", asDuplicate(err))
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg interface{}) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE `+where+` = $1`, arg)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return a, nil
}

// FindByID returns an account by ID, or nil if absent.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "id", id)
}

// FindByEmail returns an account by email, or nil if absent.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email", email)
}

// FindByPhone returns an account by phone number, or nil if absent.
func (r *AccountRepository) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.findOne(ctx, "phone", phone)
}

// ListAll returns all accounts, oldest first.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM users ORDER BY joined_on`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// FindByIDs returns the accounts whose ids are listed. Missing ids are skipped.
func (r *AccountRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM users WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateProfile overwrites the editable profile fields and returns the updated account.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id, name, about string, tags []string) (*domain.Account, error) {
	if tags == nil {
		tags = []string{}
	}
	query := `
		UPDATE users SET name = $2, about = $3, tags = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	a, err := scanAccount(r.db.QueryRow(ctx, query, id, name, about, tags))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return a, nil
}

// LinkGoogleID attaches a federated identity to an existing account.
func (r *AccountRepository) LinkGoogleID(ctx context.Context, id, googleID string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET google_id = $2, updated_at = NOW() WHERE id = $1 AND google_id IS NULL`, id, googleID)
	if err != nil {
		return fmt.Errorf("failed to link google id: %w", asDuplicate(err))
	}
	return nil
}
