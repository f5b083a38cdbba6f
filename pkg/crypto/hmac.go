package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignHex returns the lowercase hex HMAC-SHA256 of message under secret.
func SignHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHex reports whether signature is the hex HMAC-SHA256 of message.
// The comparison is constant-time.
func VerifyHex(secret, message, signature string) bool {
	expected := SignHex(secret, message)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// EqualString compares two strings in constant time.
func EqualString(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
