package service

import (
	"context"
	"errors"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// FriendService manages friend requests and friend sets.
type FriendService struct {
	requests FriendStore
	accounts AccountStore
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewFriendService creates a new FriendService.
func NewFriendService(requests FriendStore, accounts AccountStore, log logrus.FieldLogger) *FriendService {
	return &FriendService{
		requests: requests,
		accounts: accounts,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

func errDuplicateRequest() error {
	return domain.ErrRejected(domain.ReasonDuplicateFriend, "Friend request already sent")
}

func errNotPending() error {
	return domain.ErrBadRequest("Friend request is no longer pending")
}

// Send creates a pending request from the caller. A previously answered request
// between the same pair is reopened instead of duplicated.
func (s *FriendService) Send(ctx context.Context, fromID string, req *domain.SendFriendRequest) (*domain.FriendRequest, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}
	toID := req.ToUserID
	if fromID == toID {
		return nil, domain.ErrBadRequest("You cannot send a friend request to yourself")
	}

	sender, err := s.accounts.FindByID(ctx, fromID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	target, err := s.accounts.FindByID(ctx, toID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if sender == nil || target == nil {
		return nil, domain.ErrNotFound("User not found")
	}
	if sender.HasFriend(toID) {
		return nil, domain.ErrRejected(domain.ReasonAlreadyFriends, "You are already friends")
	}

	existing, err := s.requests.FindBetween(ctx, fromID, toID)
	if err != nil {
		return nil, domain.ErrInternal("failed to check friend request", err)
	}
	now := s.now()
	if existing != nil {
		if existing.Status == domain.FriendPending {
			return nil, errDuplicateRequest()
		}
		fr, err := s.requests.Reopen(ctx, existing.ID, fromID, toID, now)
		if err != nil {
			if domain.IsDuplicate(err, "") {
				return nil, errDuplicateRequest()
			}
			return nil, domain.ErrInternal("failed to reopen friend request", err)
		}
		return fr, nil
	}

	fr := &domain.FriendRequest{
		ID:         domain.NewID(),
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     domain.FriendPending,
		CreatedAt:  now,
	}
	if err := s.requests.Create(ctx, fr); err != nil {
		if domain.IsDuplicate(err, "") {
			return nil, errDuplicateRequest()
		}
		return nil, domain.ErrInternal("failed to create friend request", err)
	}
	return fr, nil
}

// recipientRequest loads a request the caller is allowed to answer.
func (s *FriendService) recipientRequest(ctx context.Context, userID, id string) (*domain.FriendRequest, error) {
	fr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find friend request", err)
	}
	if fr == nil {
		return nil, domain.ErrNotFound("Friend request not found")
	}
	if fr.ToUserID != userID {
		return nil, domain.ErrForbidden(domain.ReasonNotRecipient, "You can only respond to requests sent to you")
	}
	if fr.Status != domain.FriendPending {
		return nil, errNotPending()
	}
	return fr, nil
}

// Accept answers a pending request and links both accounts as friends.
func (s *FriendService) Accept(ctx context.Context, userID, id string) (*domain.FriendRequest, error) {
	if _, err := s.recipientRequest(ctx, userID, id); err != nil {
		return nil, err
	}
	fr, err := s.requests.Accept(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotPending) {
			return nil, errNotPending()
		}
		return nil, domain.ErrInternal("failed to accept friend request", err)
	}
	s.log.WithFields(logrus.Fields{"from": fr.FromUserID, "to": fr.ToUserID}).Info("friend request accepted")
	return fr, nil
}

// Reject declines a pending request addressed to the caller.
func (s *FriendService) Reject(ctx context.Context, userID, id string) error {
	if _, err := s.recipientRequest(ctx, userID, id); err != nil {
		return err
	}
	if err := s.requests.Reject(ctx, id, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotPending) {
			return errNotPending()
		}
		return domain.ErrInternal("failed to reject friend request", err)
	}
	return nil
}

// Cancel withdraws a pending request the caller sent.
func (s *FriendService) Cancel(ctx context.Context, userID, id string) error {
	fr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return domain.ErrInternal("failed to find friend request", err)
	}
	if fr == nil {
		return domain.ErrNotFound("Friend request not found")
	}
	if fr.FromUserID != userID {
		return domain.ErrForbidden(domain.ReasonNotOwner, "You can only cancel requests you sent")
	}
	if err := s.requests.DeletePending(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotPending) {
			return errNotPending()
		}
		return domain.ErrInternal("failed to cancel friend request", err)
	}
	return nil
}

// Pending lists requests waiting for the caller's answer.
func (s *FriendService) Pending(ctx context.Context, userID string) ([]*domain.FriendRequestView, error) {
	requests, err := s.requests.ListIncoming(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list friend requests", err)
	}
	return s.decorate(ctx, requests, func(fr *domain.FriendRequest) string { return fr.FromUserID }, true)
}

// Sent lists the caller's outstanding requests.
func (s *FriendService) Sent(ctx context.Context, userID string) ([]*domain.FriendRequestView, error) {
	requests, err := s.requests.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list friend requests", err)
	}
	return s.decorate(ctx, requests, func(fr *domain.FriendRequest) string { return fr.ToUserID }, false)
}

func (s *FriendService) decorate(ctx context.Context, requests []*domain.FriendRequest, other func(*domain.FriendRequest) string, incoming bool) ([]*domain.FriendRequestView, error) {
	ids := make([]string, len(requests))
	for i, fr := range requests {
		ids[i] = other(fr)
	}
	profiles, err := s.profiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.FriendRequestView, 0, len(requests))
	for _, fr := range requests {
		v := &domain.FriendRequestView{FriendRequest: *fr}
		if p, ok := profiles[other(fr)]; ok {
			if incoming {
				v.From = &p
			} else {
				v.To = &p
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *FriendService) profiles(ctx context.Context, ids []string) (map[string]domain.PublicProfile, error) {
	out := make(map[string]domain.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, domain.ErrInternal("failed to load users", err)
	}
	for _, a := range accounts {
		out[a.ID] = a.Profile()
	}
	return out, nil
}

// Friends lists the public profiles of userID's friends.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]domain.PublicProfile, error) {
	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound("User not found")
	}
	friends := []domain.PublicProfile{}
	if len(acct.Friends) == 0 {
		return friends, nil
	}
	accounts, err := s.accounts.FindByIDs(ctx, acct.Friends)
	if err != nil {
		return nil, domain.ErrInternal("failed to load friends", err)
	}
	for _, a := range accounts {
		friends = append(friends, a.Profile())
	}
	return friends, nil
}

// Remove ends a friendship on both sides.
func (s *FriendService) Remove(ctx context.Context, userID, friendID string) error {
	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return domain.ErrInternal("failed to find user", err)
	}
	if acct == nil || !acct.HasFriend(friendID) {
		return domain.ErrNotFound("Friend not found")
	}
	if err := s.requests.RemoveFriendship(ctx, userID, friendID); err != nil {
		return domain.ErrInternal("failed to remove friend", err)
	}
	return nil
}

// Status describes the relation between the caller and target.
func (s *FriendService) Status(ctx context.Context, userID, targetID string) (*domain.FriendshipStatus, error) {
	if userID == targetID {
		return &domain.FriendshipStatus{Status: domain.FriendshipSelf}, nil
	}
	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound("User not found")
	}
	if acct.HasFriend(targetID) {
		return &domain.FriendshipStatus{Status: domain.FriendshipFriends}, nil
	}

	fr, err := s.requests.FindBetween(ctx, userID, targetID)
	if err != nil {
		return nil, domain.ErrInternal("failed to check friend request", err)
	}
	if fr == nil || fr.Status != domain.FriendPending {
		return &domain.FriendshipStatus{Status: domain.FriendshipNone}, nil
	}
	if fr.FromUserID == userID {
		return &domain.FriendshipStatus{Status: domain.FriendshipRequestSent, RequestID: fr.ID}, nil
	}
	return &domain.FriendshipStatus{Status: domain.FriendshipRequestReceived, RequestID: fr.ID}, nil
}
