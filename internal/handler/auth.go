package handler

import (
	"context"
	"net/http"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/service"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.auth.Signup(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
// Chrome logins without an otp get a challenge instead of a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), &req, requestMeta(r))
	if err != nil {
		Error(w, err)
		return
	}

	if res.Challenge != nil {
		JSON(w, http.StatusOK, res.Challenge)
		return
	}
	JSON(w, http.StatusOK, res.Session)
}

// Google handles POST /api/auth/google.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.auth.GoogleLogin(r.Context(), &req, requestMeta(r))
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.auth.Me(r.Context(), userID(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"result": acct})
}

// SendEmailOTP handles POST /api/auth/email/send-otp.
func (h *AuthHandler) SendEmailOTP(w http.ResponseWriter, r *http.Request) {
	h.sendOTP(w, r, h.auth.SendEmailOTP)
}

// SendPhoneOTP handles POST /api/auth/phone/send-otp.
func (h *AuthHandler) SendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	h.sendOTP(w, r, h.auth.SendPhoneOTP)
}

// VerifyEmailOTP handles POST /api/auth/email/verify-otp.
func (h *AuthHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	res, err := h.auth.VerifyEmailOTP(r.Context(), &req, requestMeta(r))
	if err != nil {
		Error(w, err)
		return
	}
	writeVerifyResult(w, res)
}

// VerifyPhoneOTP handles POST /api/auth/phone/verify-otp.
func (h *AuthHandler) VerifyPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	res, err := h.auth.VerifyPhoneOTP(r.Context(), &req, requestMeta(r))
	if err != nil {
		Error(w, err)
		return
	}
	writeVerifyResult(w, res)
}

func (h *AuthHandler) sendOTP(w http.ResponseWriter, r *http.Request, send func(context.Context, *domain.OTPSendRequest) (*domain.OTPSent, error)) {
	var req domain.OTPSendRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := send(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

func writeVerifyResult(w http.ResponseWriter, res *domain.OTPVerifyResult) {
	switch {
	case res.Session != nil:
		JSON(w, http.StatusOK, res.Session)
	case res.NeedsRegistration:
		JSON(w, http.StatusOK, map[string]interface{}{
			"needsRegistration": true,
			"phone":             res.Identifier,
			"message":           "Please provide your name to complete registration",
		})
	default:
		JSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"verified": res.Verified,
			"email":    res.Identifier,
			"message":  "OTP verified successfully",
		})
	}
}
