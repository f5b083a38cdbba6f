package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserID is the context key for the authenticated account's ID.
	UserID contextKey = "userID"
	// UserEmail is the context key for the authenticated account's email, if any.
	UserEmail contextKey = "userEmail"
	// UserPhone is the context key for the authenticated account's phone, if any.
	UserPhone contextKey = "userPhone"
	// RequestID tags log lines for one request.
	RequestID contextKey = "requestID"
)
