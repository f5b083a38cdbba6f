package service

import (
	"context"
	"testing"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHistoryStats(t *testing.T) {
	events := &fakeLoginEvents{}
	svc := NewLoginHistoryService(events, nullLogger())
	c := &clock{t: time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)}
	svc.now = c.Now
	ctx := context.Background()
	acct := &domain.Account{ID: "u", Email: domain.StringPtr("u@example.com")}

	record := func(ua string, success bool) {
		c.Advance(time.Minute)
		svc.Record(ctx, acct, device.Classify(ua), domain.RequestMeta{UserAgent: ua}, domain.LoginPassword, false, success)
	}
	record(uaEdge, true)
	record(uaChromeMobile, false)
	record(uaFirefox, true)
	record(uaFirefox, true)

	stats, err := svc.Stats(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLogins)
	assert.Equal(t, 1, stats.FailedLogins)
	assert.Equal(t, 1, stats.UniqueDevices)
	assert.Equal(t, []string{"desktop"}, stats.DevicesUsed)
	assert.Equal(t, []string{"Microsoft Edge", "Mozilla Firefox"}, stats.BrowsersUsed)
	require.NotNil(t, stats.LastLogin)
	assert.Equal(t, c.Now(), stats.LastLogin.LoginTime)
	assert.Equal(t, "u@example.com", stats.LastLogin.Email)

	recent, err := svc.Recent(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, recent, 4)
	assert.Equal(t, "Mozilla Firefox", recent[0].Browser)

	empty, err := svc.Stats(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalLogins)
	assert.Nil(t, empty.LastLogin)
	assert.NotNil(t, empty.DevicesUsed)
}

func TestLoginHistoryLimits(t *testing.T) {
	events := &fakeLoginEvents{}
	svc := NewLoginHistoryService(events, nullLogger())
	ctx := context.Background()
	acct := &domain.Account{ID: "u"}
	for i := 0; i < 60; i++ {
		svc.Record(ctx, acct, device.Info{}, domain.RequestMeta{}, domain.LoginPassword, false, true)
	}

	history, err := svc.History(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, history, 50)

	recent, err := svc.Recent(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, recent, 10)
}
