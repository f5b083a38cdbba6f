package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestIsWithinWindowIgnoresMinutes(t *testing.T) {
	loc := kolkata(t)
	at := func(h, m int) time.Time { return time.Date(2026, time.May, 1, h, m, 0, 0, loc) }

	assert.False(t, IsWithinWindow(at(9, 59), 10, 11, loc))
	assert.True(t, IsWithinWindow(at(10, 0), 10, 11, loc))
	assert.True(t, IsWithinWindow(at(10, 59), 10, 11, loc))
	assert.False(t, IsWithinWindow(at(11, 0), 10, 11, loc))
}

func TestIsWithinWindowConvertsZone(t *testing.T) {
	loc := kolkata(t)
	// 04:45 UTC is 10:15 IST.
	utc := time.Date(2026, time.May, 1, 4, 45, 0, 0, time.UTC)

	assert.True(t, IsWithinWindow(utc, 10, 11, loc))
	assert.False(t, IsWithinWindow(utc, 10, 11, time.UTC))
}

func TestWindowString(t *testing.T) {
	w := Window{StartHour: 10, EndHour: 11, Location: kolkata(t)}
	assert.Equal(t, "10:00 AM - 11:00 AM IST", w.String())

	m := Window{StartHour: 10, EndHour: 13, Location: time.UTC}
	assert.Equal(t, "10:00 AM - 1:00 PM UTC", m.String())
}

func TestWindowStatus(t *testing.T) {
	w := Window{StartHour: 10, EndHour: 11, Location: kolkata(t)}

	open := w.Status(time.Date(2026, time.May, 1, 10, 30, 0, 0, w.Location))
	assert.True(t, open.IsAllowed)
	assert.Equal(t, 10, open.CurrentHour)

	closed := w.Status(time.Date(2026, time.May, 1, 15, 0, 0, 0, w.Location))
	assert.False(t, closed.IsAllowed)
	assert.Contains(t, closed.Message, "10:00 AM - 11:00 AM IST")
}

func TestDayBoundsUsesWindowZone(t *testing.T) {
	loc := kolkata(t)
	w := Window{Location: loc}
	// 20:00 UTC on May 1 is already May 2 in IST.
	start, end := w.DayBounds(time.Date(2026, time.May, 1, 20, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, time.May, 2, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
