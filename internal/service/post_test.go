package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postFixture struct {
	svc     *PostService
	friends *FriendService
	posts   *fakePosts
	media   *fakeMedia
	clock   *clock
}

func newPostFixture(t *testing.T, ids ...string) *postFixture {
	t.Helper()
	ff := newFriendFixture(ids...)
	loc := istLocation(t)
	ff.clock.t = time.Date(2026, time.May, 4, 12, 0, 0, 0, loc)

	posts := newFakePosts()
	store := &fakeMedia{}
	svc := NewPostService(posts, ff.accounts, store, domain.Window{Location: loc}, nullLogger())
	svc.now = ff.clock.Now
	return &postFixture{svc: svc, friends: ff.svc, posts: posts, media: store, clock: ff.clock}
}

func (f *postFixture) befriend(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	fr, err := f.friends.Send(ctx, a, &domain.SendFriendRequest{ToUserID: b})
	require.NoError(t, err)
	_, err = f.friends.Accept(ctx, b, fr.ID)
	require.NoError(t, err)
}

func (f *postFixture) post(userID, caption string) (*domain.CreatePostResponse, error) {
	return f.svc.Create(context.Background(), userID, &domain.CreatePostRequest{Caption: caption}, nil)
}

func TestPostAdmissionFollowsFriendCount(t *testing.T) {
	f := newPostFixture(t, "a", "b")

	_, err := f.post("a", "hello")
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.Code)
	assert.Equal(t, domain.ReasonNoFriends, appErr.Reason)
	assert.Equal(t, 0, appErr.Details["dailyLimit"])

	f.befriend(t, "a", "b")

	resp, err := f.post("a", "first")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RemainingToday)

	_, err = f.post("a", "second")
	assert.True(t, domain.HasReason(err, domain.ReasonPostQuota))
}

func TestPostAllowanceResetsOnKolkataMidnight(t *testing.T) {
	f := newPostFixture(t, "a", "b")
	f.befriend(t, "a", "b")

	_, err := f.post("a", "today")
	require.NoError(t, err)

	// 23:59 IST is still the same day.
	f.clock.t = time.Date(2026, time.May, 4, 23, 59, 0, 0, f.clock.t.Location())
	_, err = f.post("a", "late")
	assert.True(t, domain.HasReason(err, domain.ReasonPostQuota))

	// 18:31 UTC is 00:01 IST on the next day.
	f.clock.t = time.Date(2026, time.May, 4, 18, 31, 0, 0, time.UTC)
	_, err = f.post("a", "tomorrow")
	assert.NoError(t, err)
}

func TestPostUnlimitedWithManyFriends(t *testing.T) {
	ids := []string{"hub", "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11"}
	f := newPostFixture(t, ids...)
	for _, id := range ids[1:] {
		f.befriend(t, id, "hub")
	}

	for i := 0; i < 5; i++ {
		resp, err := f.post("hub", "again")
		require.NoError(t, err)
		assert.Equal(t, domain.Unlimited, resp.RemainingToday)
	}

	status, err := f.svc.Status(context.Background(), "hub")
	require.NoError(t, err)
	assert.True(t, status.CanPost)
	assert.Equal(t, 11, status.FriendCount)
	assert.Equal(t, 5, status.PostsToday)
}

func TestPostWithMedia(t *testing.T) {
	f := newPostFixture(t, "a", "b")
	f.befriend(t, "a", "b")

	resp, err := f.svc.Create(context.Background(), "a", &domain.CreatePostRequest{},
		&media.Upload{Filename: "cat.png", Kind: media.KindImage, Data: []byte("png")})

	require.NoError(t, err)
	assert.Equal(t, domain.MediaImage, resp.Post.MediaType)
	assert.Equal(t, "/uploads/posts/cat.png", resp.Post.MediaURL)
}

func TestFailedPostDiscardsUpload(t *testing.T) {
	f := newPostFixture(t, "a", "b")
	f.befriend(t, "a", "b")
	f.posts.createErr = errStore

	_, err := f.svc.Create(context.Background(), "a", &domain.CreatePostRequest{},
		&media.Upload{Filename: "cat.png", Kind: media.KindImage, Data: []byte("png")})

	assert.Equal(t, http.StatusInternalServerError, statusCode(t, err))
	assert.Equal(t, []string{"/uploads/posts/cat.png"}, f.media.deleted)
}

func TestPostNeedsCaptionOrMedia(t *testing.T) {
	f := newPostFixture(t, "a", "b")
	f.befriend(t, "a", "b")

	_, err := f.post("a", "   ")
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
}

func TestPostInteractions(t *testing.T) {
	f := newPostFixture(t, "a", "b")
	f.befriend(t, "a", "b")
	ctx := context.Background()
	resp, err := f.post("a", "hi")
	require.NoError(t, err)
	id := resp.Post.ID

	likes, err := f.svc.Like(ctx, "b", id)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	likes, err = f.svc.Like(ctx, "b", id)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	comments, err := f.svc.Comment(ctx, "b", id, &domain.CommentRequest{Text: " nice "})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Text)

	shares, err := f.svc.Share(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, shares)

	err = f.svc.Delete(ctx, "b", id)
	assert.True(t, domain.HasReason(err, domain.ReasonNotOwner))
	require.NoError(t, f.svc.Delete(ctx, "a", id))

	_, err = f.svc.Like(ctx, "b", id)
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))
	_, err = f.svc.Share(ctx, id)
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))
}

func TestFeedPaging(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	base := f.clock.Now()
	for i := 0; i < 12; i++ {
		require.NoError(t, f.posts.Create(ctx, &domain.PublicPost{
			ID:        string(rune('a' + i)),
			UserID:    "u",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := f.svc.Feed(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 12, page.Total)
	require.Len(t, page.Posts, 10)
	assert.Equal(t, "l", page.Posts[0].ID)

	page, err = f.svc.Feed(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
}
