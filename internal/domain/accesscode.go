package domain

import "time"

// AccessCode is an educator onboarding code. The plaintext is never stored:
// only a keyed digest for lookup and the last four characters for support.
// Codes are deactivated rather than deleted so the audit trail survives.
type AccessCode struct {
	CodeID          string     `json:"id" dynamodbav:"code_id"`
	CodeDigest      string     `json:"-" dynamodbav:"code_digest"`
	CodeHint        string     `json:"code_hint" dynamodbav:"code_hint"`
	Active          bool       `json:"active" dynamodbav:"active"`
	Label           string     `json:"label" dynamodbav:"label"`
	BoundIdentityID string     `json:"bound_identity_id,omitempty" dynamodbav:"bound_identity_id,omitempty"`
	BoundEmail      string     `json:"bound_email,omitempty" dynamodbav:"bound_email,omitempty"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty" dynamodbav:"last_used_at,omitempty"`
	CreatedAt       time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Bound reports whether the code has been claimed by an identity.
func (c *AccessCode) Bound() bool { return c.BoundIdentityID != "" }

type IssueCodeRequest struct {
	Label string `json:"label" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"` // optional recipient for code delivery
}
