package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendFixture struct {
	svc      *FriendService
	accounts *fakeAccounts
	requests *fakeFriends
	clock    *clock
}

func newFriendFixture(ids ...string) *friendFixture {
	accts := make([]*domain.Account, len(ids))
	for i, id := range ids {
		accts[i] = &domain.Account{ID: id, Name: id}
	}
	accounts := newFakeAccounts(accts...)
	requests := newFakeFriends(accounts)
	c := &clock{t: time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)}
	svc := NewFriendService(requests, accounts, nullLogger())
	svc.now = c.Now
	return &friendFixture{svc: svc, accounts: accounts, requests: requests, clock: c}
}

func (f *friendFixture) send(from, to string) (*domain.FriendRequest, error) {
	return f.svc.Send(context.Background(), from, &domain.SendFriendRequest{ToUserID: to})
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestFriendRequestResurrection(t *testing.T) {
	f := newFriendFixture("a", "b")
	ctx := context.Background()

	first, err := f.send("a", "b")
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(ctx, "b", first.ID))

	f.clock.Advance(time.Hour)
	again, err := f.send("a", "b")
	require.NoError(t, err)

	assert.Equal(t, 1, f.requests.rows())
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, domain.FriendPending, again.Status)
	assert.True(t, again.CreatedAt.After(first.CreatedAt))
	assert.Nil(t, again.RespondedAt)
}

func TestFriendRequestResurrectionReversesDirection(t *testing.T) {
	f := newFriendFixture("a", "b")
	ctx := context.Background()

	first, err := f.send("a", "b")
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(ctx, "b", first.ID))

	again, err := f.send("b", "a")
	require.NoError(t, err)
	assert.Equal(t, "b", again.FromUserID)
	assert.Equal(t, "a", again.ToUserID)
	assert.Equal(t, 1, f.requests.rows())
}

func TestFriendRequestRejectsInvalidSends(t *testing.T) {
	f := newFriendFixture("a", "b")

	_, err := f.send("a", "a")
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))

	_, err = f.send("a", "ghost")
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))

	_, err = f.send("a", "b")
	require.NoError(t, err)
	_, err = f.send("a", "b")
	assert.True(t, domain.HasReason(err, domain.ReasonDuplicateFriend))
	_, err = f.send("b", "a")
	assert.True(t, domain.HasReason(err, domain.ReasonDuplicateFriend), "a pending request blocks the opposite direction")
}

func TestFriendAccept(t *testing.T) {
	f := newFriendFixture("a", "b", "c")
	ctx := context.Background()
	fr, err := f.send("a", "b")
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, "c", fr.ID)
	assert.True(t, domain.HasReason(err, domain.ReasonNotRecipient))
	_, err = f.svc.Accept(ctx, "a", fr.ID)
	assert.Equal(t, http.StatusForbidden, statusCode(t, err))

	accepted, err := f.svc.Accept(ctx, "b", fr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendAccepted, accepted.Status)

	a, _ := f.accounts.FindByID(ctx, "a")
	b, _ := f.accounts.FindByID(ctx, "b")
	assert.Equal(t, []string{"b"}, a.Friends)
	assert.Equal(t, []string{"a"}, b.Friends)

	_, err = f.svc.Accept(ctx, "b", fr.ID)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))

	_, err = f.send("b", "a")
	assert.True(t, domain.HasReason(err, domain.ReasonAlreadyFriends))
}

func TestFriendCancel(t *testing.T) {
	f := newFriendFixture("a", "b")
	ctx := context.Background()
	fr, err := f.send("a", "b")
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, "b", fr.ID)
	assert.True(t, domain.HasReason(err, domain.ReasonNotOwner))

	require.NoError(t, f.svc.Cancel(ctx, "a", fr.ID))
	assert.Zero(t, f.requests.rows())

	err = f.svc.Cancel(ctx, "a", fr.ID)
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))
}

func TestFriendListsAndStatus(t *testing.T) {
	f := newFriendFixture("a", "b", "c")
	ctx := context.Background()

	st, err := f.svc.Status(ctx, "a", "a")
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipSelf, st.Status)

	fr, err := f.send("a", "b")
	require.NoError(t, err)

	st, _ = f.svc.Status(ctx, "a", "b")
	assert.Equal(t, domain.FriendshipRequestSent, st.Status)
	assert.Equal(t, fr.ID, st.RequestID)
	st, _ = f.svc.Status(ctx, "b", "a")
	assert.Equal(t, domain.FriendshipRequestReceived, st.Status)
	st, _ = f.svc.Status(ctx, "a", "c")
	assert.Equal(t, domain.FriendshipNone, st.Status)

	pending, err := f.svc.Pending(ctx, "b")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].From)
	assert.Equal(t, "a", pending[0].From.ID)

	sent, err := f.svc.Sent(ctx, "a")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].To)
	assert.Equal(t, "b", sent[0].To.ID)

	_, err = f.svc.Accept(ctx, "b", fr.ID)
	require.NoError(t, err)
	st, _ = f.svc.Status(ctx, "a", "b")
	assert.Equal(t, domain.FriendshipFriends, st.Status)

	friends, err := f.svc.Friends(ctx, "a")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "b", friends[0].ID)
}

func TestFriendRemove(t *testing.T) {
	f := newFriendFixture("a", "b")
	ctx := context.Background()

	err := f.svc.Remove(ctx, "a", "b")
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))

	fr, err := f.send("a", "b")
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, "b", fr.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, "b", "a"))
	a, _ := f.accounts.FindByID(ctx, "a")
	b, _ := f.accounts.FindByID(ctx, "b")
	assert.Empty(t, a.Friends)
	assert.Empty(t, b.Friends)

	again, err := f.send("a", "b")
	require.NoError(t, err, "an accepted request between former friends is reopened")
	assert.Equal(t, domain.FriendPending, again.Status)
}
