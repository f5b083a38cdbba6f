package repository

import (
	"errors"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// constraintFields maps unique constraint names to the field they guard.
var constraintFields = map[string]string{
	"users_email_key":             "email",
	"users_phone_key":             "phone",
	"users_google_id_key":         "google_id",
	"subscriptions_user_id_key":   "user_id",
	"payments_order_id_key":       "order_id",
	"payments_invoice_number_key": "invoice_number",
	"friend_requests_pair_key":    "friend_request",
}

// asDuplicate converts a pg unique violation (SQLSTATE 23505) into *domain.ErrDuplicate.
func asDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return &domain.ErrDuplicate{Field: field}
	}
	return err
}
