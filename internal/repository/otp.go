package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/crypto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OTPRepository stores one live code per identifier. Codes are sealed with the
// encryptor and bound to their identifier.
type OTPRepository struct {
	db  *pgxpool.Pool
	enc *crypto.Encryptor
}

// NewOTPRepository creates a new OTPRepository.
func NewOTPRepository(db *pgxpool.Pool, enc *crypto.Encryptor) *OTPRepository {
	return &OTPRepository{db: db, enc: enc}
}

// Get returns the entry for identifier, or nil on a miss.
func (r *OTPRepository) Get(ctx context.Context, identifier string) (*domain.OTPEntry, error) {
	var sealed string
	var entry domain.OTPEntry
	err := r.db.QueryRow(ctx, `SELECT code, expires_at FROM otp_codes WHERE identifier = $1`, identifier).
		Scan(&sealed, &entry.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read otp: %w", err)
	}
	code, err := r.enc.Open(sealed, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to open otp: %w", err)
	}
	entry.Code = code
	return &entry, nil
}

// Set inserts or replaces the entry for identifier.
func (r *OTPRepository) Set(ctx context.Context, identifier string, entry domain.OTPEntry) error {
	sealed, err := r.enc.Seal(entry.Code, identifier)
	if err != nil {
		return fmt.Errorf("failed to seal otp: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO otp_codes (identifier, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (identifier) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`, identifier, sealed, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// Delete removes the entry for identifier.
func (r *OTPRepository) Delete(ctx context.Context, identifier string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE identifier = $1`, identifier); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// Take deletes the entry for identifier only if it still holds code. The
// delete is keyed on the sealed value that was read, so a concurrent Take or
// a reissue in between leaves nothing to remove and Take reports false.
func (r *OTPRepository) Take(ctx context.Context, identifier, code string) (bool, error) {
	var sealed string
	err := r.db.QueryRow(ctx, `SELECT code FROM otp_codes WHERE identifier = $1`, identifier).Scan(&sealed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read otp: %w", err)
	}
	stored, err := r.enc.Open(sealed, identifier)
	if err != nil {
		return false, fmt.Errorf("failed to open otp: %w", err)
	}
	if !crypto.EqualString(stored, code) {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE identifier = $1 AND code = $2`, identifier, sealed)
	if err != nil {
		return false, fmt.Errorf("failed to delete otp: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
