package handler

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/codequest/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

var exposeErrors atomic.Bool

// ExposeInternalErrors controls whether 500 responses carry the underlying error.
// Only enable it in development.
func ExposeInternalErrors(on bool) {
	exposeErrors.Store(on)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("failed to encode JSON response")
		}
	}
}

// Error writes an error JSON response, using AppError status codes when available.
// The body carries the message, the reason code and any denial details.
func Error(w http.ResponseWriter, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		logrus.WithError(err).Error("unhandled error")
		body := map[string]interface{}{"error": "internal server error"}
		if exposeErrors.Load() {
			body["detail"] = err.Error()
		}
		JSON(w, http.StatusInternalServerError, body)
		return
	}

	body := make(map[string]interface{}, len(appErr.Details)+2)
	for k, v := range appErr.Details {
		body[k] = v
	}
	body["error"] = appErr.Message
	if appErr.Reason != "" {
		body["reason"] = appErr.Reason
	}
	if appErr.Code >= http.StatusInternalServerError {
		logrus.WithError(appErr).Error("request failed")
		if appErr.Err != nil && exposeErrors.Load() {
			body["detail"] = appErr.Err.Error()
		}
	}
	JSON(w, appErr.Code, body)
}

// DecodeJSON decodes a JSON request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return nil
}
