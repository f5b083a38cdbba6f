package handler

import (
	"net/http"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// FriendHandler handles friend requests and the friend list.
type FriendHandler struct {
	friends *service.FriendService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(friends *service.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// Send handles POST /api/friends/request.
func (h *FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendFriendRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	fr, err := h.friends.Send(r.Context(), userID(r), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]interface{}{"message": "Friend request sent", "request": fr})
}

// Accept handles PATCH /api/friends/request/{id}/accept.
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	fr, err := h.friends.Accept(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"message": "Friend request accepted", "request": fr})
}

// Reject handles PATCH /api/friends/request/{id}/reject.
func (h *FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.friends.Reject(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Friend request rejected"})
}

// Cancel handles DELETE /api/friends/request/{id}.
func (h *FriendHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.friends.Cancel(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Friend request cancelled"})
}

// Pending handles GET /api/friends/requests/pending.
func (h *FriendHandler) Pending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friends.Pending(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, requests)
}

// Sent handles GET /api/friends/requests/sent.
func (h *FriendHandler) Sent(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friends.Sent(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, requests)
}

// Mine handles GET /api/friends.
func (h *FriendHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, userID(r))
}

// OfUser handles GET /api/friends/{userId}.
func (h *FriendHandler) OfUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "userId"))
}

func (h *FriendHandler) list(w http.ResponseWriter, r *http.Request, id string) {
	friends, err := h.friends.Friends(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, friends)
}

// Remove handles DELETE /api/friends/{friendId}.
func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.friends.Remove(r.Context(), userID(r), chi.URLParam(r, "friendId")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Friend removed"})
}

// Status handles GET /api/friends/status/{targetUserId}.
func (h *FriendHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.friends.Status(r.Context(), userID(r), chi.URLParam(r, "targetUserId"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, status)
}
