package domain

import "time"

// OTPEntry is the live one-time code for an identifier (email or phone).
type OTPEntry struct {
	Code      string
	ExpiresAt time.Time
}

// OTPSendRequest asks for a code to be issued to an email address or phone.
type OTPSendRequest struct {
	Email string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone string `json:"phone" validate:"required_without=Email,omitempty,e164|numeric"`
}

// OTPVerifyRequest completes an OTP login. Name is only needed to register a new phone account.
type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone string `json:"phone" validate:"required_without=Email,omitempty,e164|numeric"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

// OTPSent is returned after issuing a code.
type OTPSent struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	DevOTP  string `json:"devOtp,omitempty"`
}

// OTPVerifyResult is a session, or a prompt to supply a name for a new phone account.
type OTPVerifyResult struct {
	Session           *AuthResponse
	NeedsRegistration bool
	Verified          bool
	Identifier        string
}
