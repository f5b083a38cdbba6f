package handler

import (
	"net/http"
	"strings"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/service"
	"github.com/codequest/backend/pkg/media"
	"github.com/go-chi/chi/v5"
)

// PostHandler handles the public feed.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Feed handles GET /api/posts?page=&limit=.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.Feed(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, page)
}

// Status handles GET /api/posts/status.
func (h *PostHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.posts.Status(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, status)
}

// Create handles POST /api/posts. Accepts JSON, or multipart with an optional "media" file.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req domain.CreatePostRequest
		up  *media.Upload
	)

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			Error(w, err)
			return
		}
		req.Caption = strings.TrimSpace(r.FormValue("caption"))
		file, err := readUpload(r, "media")
		if err != nil {
			Error(w, err)
			return
		}
		up = file
	} else if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.posts.Create(r.Context(), userID(r), &req, up)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, resp)
}

// Like handles PATCH /api/posts/{id}/like.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.posts.Like(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"likes": likes})
}

// Comment handles POST /api/posts/{id}/comment.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	comments, err := h.posts.Comment(r.Context(), userID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Share handles POST /api/posts/{id}/share.
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	shares, err := h.posts.Share(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"shares": shares})
}

// Delete handles DELETE /api/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Post deleted successfully"})
}
