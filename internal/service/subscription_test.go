package service

import (
	"context"
	"testing"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := newFakeSubscriptions()
	svc := NewSubscriptionService(store, nullLogger())
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "u")
	require.NoError(t, err)
	second, err := svc.GetOrCreate(ctx, "u")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.TierFree, first.Tier)
	assert.Equal(t, 1, first.QuestionsPerDay)
	assert.True(t, first.IsActive)
	assert.Nil(t, first.EndDate)
	assert.Len(t, store.byUser, 1)
}

func TestCurrentPersistsOnlyChanges(t *testing.T) {
	c := &clock{t: time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)}
	store := newFakeSubscriptions()
	svc := NewSubscriptionService(store, nullLogger())
	svc.now = c.Now
	ctx := context.Background()

	_, err := svc.Current(ctx, "u")
	require.NoError(t, err)
	assert.Zero(t, store.saves)

	c.Advance(24 * time.Hour)
	_, err = svc.Current(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)
}

func TestViewReportsPlanAndRemaining(t *testing.T) {
	c := &clock{t: time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)}
	store := newFakeSubscriptions()
	svc := NewSubscriptionService(store, nullLogger())
	svc.now = c.Now
	ctx := context.Background()

	activatePlan(t, svc, store, "u", domain.TierSilver)

	view, err := svc.View(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, domain.TierSilver, view.PlanDetails.ID)
	assert.Equal(t, 10, view.Remaining)

	c.Advance(30*24*time.Hour + time.Second)
	view, err = svc.View(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, view.Subscription.Tier)
	assert.Equal(t, 1, view.Remaining)
}
