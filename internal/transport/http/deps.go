package http

import (
	"context"

	"github.com/ncetprep/educator-gate/internal/domain"
)

// CodeRepository is the minimal interface the router requires from an
// access-code store.
type CodeRepository interface {
	Create(ctx context.Context, c *domain.AccessCode) error
	Get(ctx context.Context, codeID string) (*domain.AccessCode, error)
	// GetActiveByDigest looks up by the `code_digest-index` GSI and only
	// matches active codes; a deactivated code is indistinguishable from a
	// missing one.
	GetActiveByDigest(ctx context.Context, digest string) (*domain.AccessCode, error)
	Bind(ctx context.Context, codeID, identityID, email string) error
	TouchLastUsed(ctx context.Context, codeID string) error
	Deactivate(ctx context.Context, codeID string) error
	ListPage(ctx context.Context, limit int32, cursor string) ([]domain.AccessCode, string, error)
}

// ProfileRepository is the minimal interface the router requires from a
// role-profile store.
type ProfileRepository interface {
	Get(ctx context.Context, identityID string) (*domain.RoleProfile, error)
	Put(ctx context.Context, p *domain.RoleProfile) error
	Update(ctx context.Context, identityID string, updates map[string]interface{}) error
}

// SessionRepository is the minimal interface the router requires from a
// session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}
