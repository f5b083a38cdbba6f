package handler

import (
	"net/http"

	"github.com/codequest/backend/internal/service"
)

// LoginHistoryHandler serves the caller's own login events.
type LoginHistoryHandler struct {
	history *service.LoginHistoryService
}

// NewLoginHistoryHandler creates a new LoginHistoryHandler.
func NewLoginHistoryHandler(history *service.LoginHistoryService) *LoginHistoryHandler {
	return &LoginHistoryHandler{history: history}
}

// History handles GET /api/login-history.
func (h *LoginHistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.history.History(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "loginHistory": events})
}

// Recent handles GET /api/login-history/recent.
func (h *LoginHistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	events, err := h.history.Recent(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "recentLogins": events})
}

// Stats handles GET /api/login-history/stats.
func (h *LoginHistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": stats})
}
