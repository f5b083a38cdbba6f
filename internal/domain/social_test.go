package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailyPostLimit(t *testing.T) {
	assert.Equal(t, 0, DailyPostLimit(0))
	assert.Equal(t, 1, DailyPostLimit(1))
	assert.Equal(t, 2, DailyPostLimit(2))
	assert.Equal(t, 2, DailyPostLimit(10))
	assert.Equal(t, Unlimited, DailyPostLimit(11))
}

func TestAdmitPost(t *testing.T) {
	none := AdmitPost(0, 0)
	assert.False(t, none.CanPost)
	denial := none.Denial()
	assert.Equal(t, ReasonNoFriends, denial.Reason)
	assert.Equal(t, 0, denial.Details["dailyLimit"])

	assert.True(t, AdmitPost(1, 0).CanPost)

	capped := AdmitPost(1, 1)
	assert.False(t, capped.CanPost)
	assert.Equal(t, ReasonPostQuota, capped.Denial().Reason)
	assert.Equal(t, 1, capped.Denial().Details["usedToday"])

	assert.True(t, AdmitPost(25, 400).CanPost)
}

func TestApplyVote(t *testing.T) {
	q := &Question{}

	ApplyVote(q, "u1", "upvote")
	assert.Equal(t, []string{"u1"}, q.UpVotes)

	ApplyVote(q, "u1", "downvote")
	assert.Empty(t, q.UpVotes)
	assert.Equal(t, []string{"u1"}, q.DownVotes)

	ApplyVote(q, "u1", "downvote")
	assert.Empty(t, q.DownVotes)
}
