package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured application error with HTTP status code.
// Reason is a machine-readable code for policy denials; Details carries the
// numeric limits (or other context) the client needs to render the denial.
type AppError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"error"`
	Reason  string                 `json:"reason,omitempty"`
	Details map[string]interface{} `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Reason codes.
const (
	ReasonQuestionQuota   = "question_quota_exceeded"
	ReasonPostQuota       = "post_quota_exceeded"
	ReasonNoFriends       = "friends_required"
	ReasonPaymentWindow   = "payment_window_closed"
	ReasonMobileWindow    = "mobile_window_closed"
	ReasonInvalidSig      = "invalid_signature"
	ReasonAlreadyDone     = "already_processed"
	ReasonOTPNotFound     = "otp_not_found"
	ReasonOTPExpired      = "otp_expired"
	ReasonOTPMismatch     = "otp_mismatch"
	ReasonDuplicate       = "duplicate"
	ReasonCrossDuplicate  = "cross_field_conflict"
	ReasonInvalidPlan     = "invalid_plan"
	ReasonNotOwner        = "not_owner"
	ReasonNotRecipient    = "not_recipient"
	ReasonAlreadyFriends  = "already_friends"
	ReasonDuplicateFriend = "duplicate_request"
)

// Common error constructors.

func ErrNotFound(msg string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: msg}
}

func ErrForbidden(reason, msg string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: msg, Reason: reason}
}

func ErrBadRequest(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

// ErrValidation reports missing or malformed input.
func ErrValidation(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

// ErrRejected is a 400 carrying a reason code (bad OTP, bad signature, already processed).
func ErrRejected(reason, msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg, Reason: reason}
}

// ErrPolicyDenied is a 403 for quota and time-window denials.
func ErrPolicyDenied(reason, msg string, details map[string]interface{}) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: msg, Reason: reason, Details: details}
}

// ErrIntegrity reports a unique-key conflict. reason distinguishes a same-field
// duplicate from a cross-field conflict.
func ErrIntegrity(reason, msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg, Reason: reason}
}

func ErrInternal(msg string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasReason reports whether err is an AppError with the given reason code.
func HasReason(err error, reason string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Reason == reason
}
