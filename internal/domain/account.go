package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. Email and phone are optional and unique when set.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	GoogleID  *string   `json:"-"`
	About     string    `json:"about"`
	Tags      []string  `json:"tags"`
	Friends   []string  `json:"friends"`
	JoinedOn  time.Time `json:"joinedOn"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Contact returns the email, or the phone when no email is set.
func (a *Account) Contact() string {
	if a.Email != nil && *a.Email != "" {
		return *a.Email
	}
	if a.Phone != nil {
		return *a.Phone
	}
	return ""
}

// HasFriend reports whether id is in the friend set.
func (a *Account) HasFriend(id string) bool {
	for _, f := range a.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// NewID generates a new UUID.
func NewID() string {
	return uuid.New().String()
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PublicProfile is the profile projection shown to other users.
type PublicProfile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	About    string    `json:"about"`
	Tags     []string  `json:"tags"`
	JoinedOn time.Time `json:"joinedOn"`
}

// Profile returns the public projection of an account.
func (a *Account) Profile() PublicProfile {
	return PublicProfile{ID: a.ID, Name: a.Name, About: a.About, Tags: a.Tags, JoinedOn: a.JoinedOn}
}

// SignupRequest is the validated input for email signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the validated input for logging in. OTP is sent on the retry
// after a challenge.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
	OTP      string `json:"otp" validate:"omitempty,len=6,numeric"`
}

// GoogleLoginRequest carries an identity already verified by the client SDK.
type GoogleLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	GoogleID string `json:"googleId" validate:"required"`
}

// UpdateProfileRequest is the editable profile subset.
type UpdateProfileRequest struct {
	Name  string   `json:"name" validate:"omitempty,min=2,max=100"`
	About string   `json:"about" validate:"max=500"`
	Tags  []string `json:"tags" validate:"max=20,dive,max=30"`
}

// AuthResponse is returned when a session token is issued.
type AuthResponse struct {
	Result    *Account `json:"result"`
	Token     string   `json:"token"`
	IsNewUser bool     `json:"isNewUser"`
	Message   string   `json:"message,omitempty"`
}

// OTPChallenge is returned when login needs a second factor.
type OTPChallenge struct {
	RequiresOTP bool   `json:"requiresOtp"`
	Message     string `json:"message"`
	Browser     string `json:"browser"`
	DevOTP      string `json:"devOtp,omitempty"`
}

// LoginResult is either a session or a challenge.
type LoginResult struct {
	Session   *AuthResponse
	Challenge *OTPChallenge
}

// JWTClaims is the token payload surfaced to middleware.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
