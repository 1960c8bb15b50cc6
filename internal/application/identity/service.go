// Package identity adapts Google OAuth sign-in into identity-provider
// sessions: create-session, get-current-identity, delete-session.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/infrastructure/google"
	jwtinfra "github.com/ncetprep/educator-gate/internal/infrastructure/jwt"
	"github.com/ncetprep/educator-gate/internal/pkg/id"
)

type SessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type ProfileGetter interface {
	Get(ctx context.Context, identityID string) (*domain.RoleProfile, error)
}

type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type SessionTokens interface {
	SignSession(sessionID, identityID, role string) (string, error)
	VerifySession(token string) (*jwtinfra.SessionClaims, error)
}

type SignInResult struct {
	Token   string
	Session *domain.Session
	Role    string
}

type Service interface {
	SignInWithGoogle(ctx context.Context, idToken string) (*SignInResult, error)
	// Current resolves the authenticated identity from the caller's own
	// session token. Client-supplied identity ids are never trusted.
	Current(ctx context.Context, sessionToken string) (*domain.Identity, error)
	TerminateSession(ctx context.Context, sessionToken string) error
}

type ServiceDeps struct {
	SessionRepo SessionStore
	ProfileRepo ProfileGetter
	Verifier    GoogleVerifier
	Tokens      SessionTokens
}

type service struct {
	sessionRepo SessionStore
	profileRepo ProfileGetter
	verifier    GoogleVerifier
	tokens      SessionTokens
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo: deps.SessionRepo,
		profileRepo: deps.ProfileRepo,
		verifier:    deps.Verifier,
		tokens:      deps.Tokens,
	}
}

func (s *service) SignInWithGoogle(ctx context.Context, idToken string) (*SignInResult, error) {
	payload, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if payload.Sub == "" || payload.Email == "" {
		return nil, fmt.Errorf("incomplete identity token: %w", domain.ErrUnauthorized)
	}
	if !payload.EmailVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}

	role := domain.RoleStudent
	prof, err := s.profileRepo.Get(ctx, payload.Sub)
	if err == nil {
		role = prof.Role
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:  id.New(),
		IdentityID: payload.Sub,
		Email:      payload.Email,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.tokens.SignSession(sess.SessionID, payload.Sub, role)
	if err != nil {
		return nil, err
	}
	return &SignInResult{Token: token, Session: sess, Role: role}, nil
}

func (s *service) Current(ctx context.Context, sessionToken string) (*domain.Identity, error) {
	if sessionToken == "" {
		return nil, fmt.Errorf("no session token: %w", domain.ErrUnauthorized)
	}
	claims, err := s.tokens.VerifySession(sessionToken)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", domain.ErrUnauthorized)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token carries no session: %w", domain.ErrUnauthorized)
	}
	sess, err := s.sessionRepo.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session gone: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session terminated: %w", domain.ErrUnauthorized)
	}
	return &domain.Identity{ID: sess.IdentityID, Email: sess.Email}, nil
}

func (s *service) TerminateSession(ctx context.Context, sessionToken string) error {
	claims, err := s.tokens.VerifySession(sessionToken)
	if err != nil {
		return fmt.Errorf("invalid session token: %w", domain.ErrUnauthorized)
	}
	return s.sessionRepo.Disable(ctx, claims.SessionID)
}
