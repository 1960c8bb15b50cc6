package domain

import "time"

// Identity is the authenticated caller as reported by the identity provider.
// It is always resolved from the caller's own session token, never from a
// client-supplied id.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a signed-in identity-provider session.
type Session struct {
	SessionID  string    `json:"id" dynamodbav:"session_id"`
	IdentityID string    `json:"identity_id" dynamodbav:"identity_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
