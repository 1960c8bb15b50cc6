package domain

import "time"

// Role names stored on RoleProfile documents.
const (
	RoleStudent  = "student"
	RoleEducator = "educator"
	RoleAdmin    = "admin"
)

// RoleProfile is the per-identity profile document, keyed by the identity
// provider's user id. CreatedAt is set once on first creation and never
// overwritten by the upsert path.
type RoleProfile struct {
	IdentityID   string    `json:"id" dynamodbav:"identity_id"`
	Role         string    `json:"role" dynamodbav:"role"`
	AccessCodeID string    `json:"access_code_id,omitempty" dynamodbav:"access_code_id,omitempty"`
	Email        string    `json:"email" dynamodbav:"email"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}
