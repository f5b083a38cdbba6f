package domain

import "time"

// LoginMethod identifies how a login was attempted.
type LoginMethod string

const (
	LoginPassword  LoginMethod = "password"
	LoginPhoneOTP  LoginMethod = "phone_otp"
	LoginEmailOTP  LoginMethod = "email_otp"
	LoginFederated LoginMethod = "federated"
)

// LoginEvent is an append-only audit record of a login attempt.
type LoginEvent struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	Email      string      `json:"email,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Browser    string      `json:"browser"`
	OS         string      `json:"os"`
	DeviceType string      `json:"deviceType"`
	IPAddress  string      `json:"ipAddress"`
	Method     LoginMethod `json:"loginMethod"`
	RequireOTP bool        `json:"requireOtp"`
	Success    bool        `json:"success"`
	LoginTime  time.Time   `json:"loginTime"`
}

// LoginStats summarizes a user's login history.
type LoginStats struct {
	TotalLogins   int         `json:"totalLogins"`
	FailedLogins  int         `json:"failedLogins"`
	UniqueDevices int         `json:"uniqueDevices"`
	DevicesUsed   []string    `json:"devicesUsed"`
	BrowsersUsed  []string    `json:"browsersUsed"`
	LastLogin     *LoginEvent `json:"lastLogin"`
}

// RequestMeta is the request-derived context the auth gate classifies.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}
