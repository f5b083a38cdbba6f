package domain

import (
	"fmt"
	"time"
)

// FriendRequestStatus is the state of a friend request.
type FriendRequestStatus string

const (
	FriendPending  FriendRequestStatus = "pending"
	FriendAccepted FriendRequestStatus = "accepted"
	FriendRejected FriendRequestStatus = "rejected"
)

// FriendRequest is a directed edge between two accounts.
type FriendRequest struct {
	ID          string              `json:"id"`
	FromUserID  string              `json:"from"`
	ToUserID    string              `json:"to"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	RespondedAt *time.Time          `json:"respondedAt,omitempty"`
}

// FriendRequestView decorates a request with the counterpart's profile.
type FriendRequestView struct {
	FriendRequest
	From *PublicProfile `json:"fromUser,omitempty"`
	To   *PublicProfile `json:"toUser,omitempty"`
}

// Friendship status values.
const (
	FriendshipSelf            = "self"
	FriendshipFriends         = "friends"
	FriendshipRequestSent     = "request_sent"
	FriendshipRequestReceived = "request_received"
	FriendshipNone            = "not_friends"
)

// FriendshipStatus is the relation between the caller and another account.
type FriendshipStatus struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// SendFriendRequest is the input for sending a request.
type SendFriendRequest struct {
	ToUserID string `json:"toUserId" validate:"required"`
}

// MediaType is the kind of media attached to a post.
type MediaType string

const (
	MediaNone  MediaType = "none"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Comment is one entry in a post's comment list.
type Comment struct {
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicPost is a post on the public feed.
type PublicPost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Caption   string    `json:"caption"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	MediaType MediaType `json:"mediaType"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	Shares    int       `json:"shares"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DailyPostLimit maps friend count to posts per day:
// 0 friends → 0, 1 → 1, 2..10 → 2, more than 10 → Unlimited.
func DailyPostLimit(friendCount int) int {
	switch {
	case friendCount <= 0:
		return 0
	case friendCount == 1:
		return 1
	case friendCount > 10:
		return Unlimited
	default:
		return 2
	}
}

// PostAdmission is the outcome of checking the public-post quota.
type PostAdmission struct {
	CanPost     bool   `json:"canPost"`
	Reason      string `json:"reason"`
	FriendCount int    `json:"friendCount"`
	PostsToday  int    `json:"postsToday"`
	Limit       int    `json:"limit"`
}

// AdmitPost decides whether another post is allowed today.
func AdmitPost(friendCount, postsToday int) PostAdmission {
	limit := DailyPostLimit(friendCount)
	a := PostAdmission{FriendCount: friendCount, PostsToday: postsToday, Limit: limit}
	switch {
	case limit == 0:
		a.Reason = "You need at least 1 friend to post on the public page"
	case limit == Unlimited:
		a.CanPost = true
	case postsToday >= limit:
		a.Reason = fmt.Sprintf("Daily post limit reached. Limit: %d, Used today: %d", limit, postsToday)
	default:
		a.CanPost = true
	}
	return a
}

// Denial converts a refused admission into the 403 returned to clients.
func (a PostAdmission) Denial() *AppError {
	if a.Limit == 0 {
		return ErrPolicyDenied(ReasonNoFriends, a.Reason, map[string]interface{}{
			"friendCount": a.FriendCount,
			"dailyLimit":  0,
		})
	}
	msg := fmt.Sprintf(
		"Daily post limit reached. With %d friend(s), you can post up to %d time(s) per day.",
		a.FriendCount, a.Limit,
	)
	return ErrPolicyDenied(ReasonPostQuota, msg, map[string]interface{}{
		"friendCount": a.FriendCount,
		"dailyLimit":  a.Limit,
		"usedToday":   a.PostsToday,
	})
}

// FeedPage is one page of the public feed.
type FeedPage struct {
	Posts    []*PublicPost `json:"posts"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int           `json:"total"`
}

// CommentRequest is the input for commenting on a post.
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// CreatePostResponse reports the new post and how many more are allowed today.
type CreatePostResponse struct {
	Message        string      `json:"message"`
	Post           *PublicPost `json:"post"`
	RemainingToday int         `json:"remainingToday"` // -1 = unlimited
}

// CreatePostRequest is the text part of a new post.
type CreatePostRequest struct {
	Caption string `json:"caption" validate:"max=1000"`
}
