package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/codequest/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	accounts := newFakeAccounts(
		&domain.Account{ID: "a", Name: "Ann", Email: domain.StringPtr("ann@example.com")},
		&domain.Account{ID: "b", Name: "Ben"},
	)
	svc := NewUserService(accounts)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "a", "b", &domain.UpdateProfileRequest{About: "pwned"})
	assert.True(t, domain.HasReason(err, domain.ReasonNotOwner))
	assert.Equal(t, http.StatusForbidden, statusCode(t, err))

	updated, err := svc.UpdateProfile(ctx, "a", "a", &domain.UpdateProfileRequest{About: " Gopher ", Tags: []string{"go", " ", "sql"}})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "Gopher", updated.About)
	assert.Equal(t, []string{"go", "sql"}, updated.Tags)

	_, err = svc.UpdateProfile(ctx, "a", "a", &domain.UpdateProfileRequest{Name: "X"})
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
}

func TestListUsersHidesPrivateFields(t *testing.T) {
	accounts := newFakeAccounts(
		&domain.Account{ID: "a", Name: "Ann", Email: domain.StringPtr("ann@example.com"), Password: "hash"},
	)
	svc := NewUserService(accounts)

	profiles, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, domain.PublicProfile{ID: "a", Name: "Ann", Tags: []string{}}, profiles[0])
}
