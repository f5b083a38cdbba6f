package service

import (
	"context"
	"strings"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/media"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Feed paging defaults.
const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PostService runs the public feed and its friend-count based daily allowance.
type PostService struct {
	posts    PostStore
	accounts AccountStore
	media    media.Store
	day      domain.Window
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewPostService creates a new PostService. day supplies the zone whose calendar
// day bounds "today" for the allowance.
func NewPostService(posts PostStore, accounts AccountStore, store media.Store, day domain.Window, log logrus.FieldLogger) *PostService {
	return &PostService{
		posts:    posts,
		accounts: accounts,
		media:    store,
		day:      day,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

// Status reports whether the caller may post now.
func (s *PostService) Status(ctx context.Context, userID string) (domain.PostAdmission, error) {
	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return domain.PostAdmission{}, domain.ErrInternal("failed to find user", err)
	}
	if acct == nil {
		return domain.PostAdmission{}, domain.ErrNotFound("User not found")
	}
	from, to := s.day.DayBounds(s.now())
	count, err := s.posts.CountByUserBetween(ctx, userID, from, to)
	if err != nil {
		return domain.PostAdmission{}, domain.ErrInternal("failed to count posts", err)
	}
	return domain.AdmitPost(len(acct.Friends), count), nil
}

// Create publishes a post when the allowance permits. up may be nil.
func (s *PostService) Create(ctx context.Context, userID string, req *domain.CreatePostRequest, up *media.Upload) (*domain.CreatePostResponse, error) {
	req.Caption = strings.TrimSpace(req.Caption)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}
	if req.Caption == "" && up == nil {
		return nil, domain.ErrValidation("caption or media is required")
	}

	admission, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admission.CanPost {
		return nil, admission.Denial()
	}

	now := s.now()
	post := &domain.PublicPost{
		ID:        domain.NewID(),
		UserID:    userID,
		Caption:   req.Caption,
		MediaType: domain.MediaNone,
		Likes:     []string{},
		Comments:  []domain.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if up != nil {
		url, err := s.media.Save(ctx, "posts", *up)
		if err != nil {
			return nil, domain.ErrInternal("failed to store media", err)
		}
		post.MediaURL = url
		post.MediaType = domain.MediaType(up.Kind)
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.MediaURL != "" {
			discardUpload(ctx, s.media, s.log, post.MediaURL)
		}
		return nil, domain.ErrInternal("failed to create post", err)
	}

	remaining := domain.Unlimited
	if admission.Limit != domain.Unlimited {
		remaining = admission.Limit - admission.PostsToday - 1
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "post_id": post.ID}).Info("post published")
	return &domain.CreatePostResponse{
		Message:        "Post created successfully",
		Post:           post,
		RemainingToday: remaining,
	}, nil
}

// Feed returns one page of posts, newest first.
func (s *PostService) Feed(ctx context.Context, page, pageSize int) (*domain.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	posts, total, err := s.posts.ListPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, domain.ErrInternal("failed to load feed", err)
	}
	return &domain.FeedPage{Posts: posts, Page: page, PageSize: pageSize, Total: total}, nil
}

// Like toggles the caller's like and returns the like count.
func (s *PostService) Like(ctx context.Context, userID, postID string) (int, error) {
	likes, found, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return 0, domain.ErrInternal("failed to like post", err)
	}
	if !found {
		return 0, domain.ErrNotFound("Post not found")
	}
	return likes, nil
}

// Comment appends a comment and returns the post's comments.
func (s *PostService) Comment(ctx context.Context, userID, postID string, req *domain.CommentRequest) ([]domain.Comment, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}
	comments, err := s.posts.AddComment(ctx, postID, domain.Comment{
		UserID:    userID,
		Text:      req.Text,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, domain.ErrInternal("failed to add comment", err)
	}
	if comments == nil {
		return nil, domain.ErrNotFound("Post not found")
	}
	return comments, nil
}

// Share counts one share. Anyone may share any post.
func (s *PostService) Share(ctx context.Context, postID string) (int, error) {
	shares, found, err := s.posts.IncrementShares(ctx, postID)
	if err != nil {
		return 0, domain.ErrInternal("failed to share post", err)
	}
	if !found {
		return 0, domain.ErrNotFound("Post not found")
	}
	return shares, nil
}

// Delete removes one of the caller's posts.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return domain.ErrInternal("failed to find post", err)
	}
	if post == nil {
		return domain.ErrNotFound("Post not found")
	}
	if post.UserID != userID {
		return domain.ErrForbidden(domain.ReasonNotOwner, "You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return domain.ErrInternal("failed to delete post", err)
	}
	return nil
}

// discardUpload removes media whose owning record was never written.
func discardUpload(ctx context.Context, store media.Store, log logrus.FieldLogger, url string) {
	if err := store.Delete(context.WithoutCancel(ctx), url); err != nil {
		log.WithError(err).WithField("url", url).Warn("failed to delete orphaned upload")
	}
}
