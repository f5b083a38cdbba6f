package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestAsDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"}
	err := asDuplicate(fmt.Errorf("insert: %w", pgErr))

	assert.True(t, domain.IsDuplicate(err, "phone"))
	assert.True(t, domain.IsDuplicate(err, ""))
	assert.False(t, domain.IsDuplicate(err, "email"))

	unknown := asDuplicate(&pgconn.PgError{Code: "23505", ConstraintName: "some_idx"})
	assert.True(t, domain.IsDuplicate(unknown, "some_idx"))

	other := errors.New("boom")
	assert.Equal(t, other, asDuplicate(other))
	assert.False(t, domain.IsDuplicate(asDuplicate(&pgconn.PgError{Code: "23503"}), ""))
}
