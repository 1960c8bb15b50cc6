// Package gate implements the educator onboarding gate: code verification,
// gate-token issuance, and the binding flow that permanently associates an
// access code with a single identity.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ncetprep/educator-gate/internal/domain"
	jwtinfra "github.com/ncetprep/educator-gate/internal/infrastructure/jwt"
	"github.com/ncetprep/educator-gate/internal/pkg/accesscode"
)

// CodeRegistry is the access-code store the coordinator runs against.
type CodeRegistry interface {
	GetActiveByDigest(ctx context.Context, digest string) (*domain.AccessCode, error)
	Get(ctx context.Context, codeID string) (*domain.AccessCode, error)
	Bind(ctx context.Context, codeID, identityID, email string) error
	TouchLastUsed(ctx context.Context, codeID string) error
}

// ProfileUpserter upserts the per-identity role profile.
type ProfileUpserter interface {
	Upsert(ctx context.Context, identityID, role, accessCodeID, email string) (*domain.RoleProfile, error)
}

// IdentityProvider resolves the caller's identity from their own session
// token and can terminate that session.
type IdentityProvider interface {
	Current(ctx context.Context, sessionToken string) (*domain.Identity, error)
	TerminateSession(ctx context.Context, sessionToken string) error
}

// GateTokens signs and verifies gate tokens.
type GateTokens interface {
	SignGate(codeID string) (string, time.Time, error)
	VerifyGate(token string) (*jwtinfra.GateClaims, error)
}

type Service interface {
	// VerifyCode checks a submitted plaintext code and, on a match with an
	// active record, returns a gate token and its absolute expiry.
	VerifyCode(ctx context.Context, clientCode string) (string, time.Time, error)
	// CompleteBinding runs the binding state machine for the holder of a
	// gate token and an identity-provider session. Rejections are returned
	// as *domain.BindError carrying the wire reject code.
	CompleteBinding(ctx context.Context, gateToken, sessionToken string) (*domain.BindResult, error)
}

type ServiceDeps struct {
	Codes    CodeRegistry
	Profiles ProfileUpserter
	Identity IdentityProvider
	Tokens   GateTokens
	// Pepper keys the access-code digest; must match the issuance side.
	Pepper string
	// CallTimeout bounds each outbound store/provider call so a slow
	// dependency cannot hang the sign-up flow indefinitely.
	CallTimeout time.Duration
}

type service struct {
	codes       CodeRegistry
	profiles    ProfileUpserter
	identity    IdentityProvider
	tokens      GateTokens
	pepper      string
	callTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = 3 * time.Second
	}
	return &service{
		codes:       deps.Codes,
		profiles:    deps.Profiles,
		identity:    deps.Identity,
		tokens:      deps.Tokens,
		pepper:      deps.Pepper,
		callTimeout: deps.CallTimeout,
	}
}

func (s *service) VerifyCode(ctx context.Context, clientCode string) (string, time.Time, error) {
	if strings.TrimSpace(clientCode) == "" {
		return "", time.Time{}, fmt.Errorf("access code required: %w", domain.ErrBadRequest)
	}
	digest := accesscode.Digest(s.pepper, clientCode)

	cctx, cancel := s.bounded(ctx)
	code, err := s.codes.GetActiveByDigest(cctx, digest)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Wrong code and correct-but-deactivated code are the same
			// outcome: no active record matched the digest.
			return "", time.Time{}, fmt.Errorf("no active code matches: %w", domain.ErrUnauthorized)
		}
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.SignGate(code.CodeID)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *service) CompleteBinding(ctx context.Context, gateToken, sessionToken string) (*domain.BindResult, error) {
	if gateToken == "" {
		return reject(domain.RejectGateExpired, domain.ErrUnauthorized)
	}
	claims, err := s.tokens.VerifyGate(gateToken)
	if err != nil {
		return reject(domain.RejectGateInvalid, fmt.Errorf("verify gate token: %v: %w", err, domain.ErrUnauthorized))
	}

	if sessionToken == "" {
		return reject(domain.RejectNoSession, domain.ErrUnauthorized)
	}
	cctx, cancel := s.bounded(ctx)
	identity, err := s.identity.Current(cctx, sessionToken)
	cancel()
	if err != nil {
		return reject(domain.RejectInvalidSession, fmt.Errorf("resolve identity: %v: %w", err, domain.ErrUnauthorized))
	}

	cctx, cancel = s.bounded(ctx)
	code, err := s.codes.Get(cctx, claims.CodeID)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reject(domain.RejectCodeNotFound, fmt.Errorf("code %s: %w", claims.CodeID, domain.ErrNotFound))
		}
		return reject(domain.RejectUnknown, err)
	}
	if !code.Active {
		return reject(domain.RejectCodeInactive, domain.ErrForbidden)
	}

	rebind := false
	switch {
	case !code.Bound():
		if err := s.bind(ctx, code.CodeID, identity); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Lost the bind race. Re-read to see who won: the same
				// identity double-submitting is a repeat use, anyone else
				// means the code is taken.
				return s.resolveBindRace(ctx, code.CodeID, identity, sessionToken)
			}
			return reject(domain.RejectBindingFailed, err)
		}
	case code.BoundIdentityID == identity.ID:
		rebind = true
		cctx, cancel = s.bounded(ctx)
		err = s.codes.TouchLastUsed(cctx, code.CodeID)
		cancel()
		if err != nil {
			return reject(domain.RejectBindingFailed, err)
		}
	default:
		s.terminateSession(ctx, sessionToken, code.CodeID)
		return reject(domain.RejectCodeAlreadyBound, domain.ErrForbidden)
	}

	cctx, cancel = s.bounded(ctx)
	_, err = s.profiles.Upsert(cctx, identity.ID, domain.RoleEducator, code.CodeID, identity.Email)
	cancel()
	if err != nil {
		return reject(domain.RejectProfileFailed, err)
	}

	return &domain.BindResult{CodeID: code.CodeID, Identity: *identity, Rebind: rebind}, nil
}

func (s *service) bind(ctx context.Context, codeID string, identity *domain.Identity) error {
	cctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.codes.Bind(cctx, codeID, identity.ID, identity.Email)
}

// resolveBindRace handles a conditional-write conflict on bind: the guarded
// update found the code already claimed at write time.
func (s *service) resolveBindRace(ctx context.Context, codeID string, identity *domain.Identity, sessionToken string) (*domain.BindResult, error) {
	cctx, cancel := s.bounded(ctx)
	code, err := s.codes.Get(cctx, codeID)
	cancel()
	if err == nil && code.BoundIdentityID == identity.ID {
		cctx, cancel = s.bounded(ctx)
		_, err = s.profiles.Upsert(cctx, identity.ID, domain.RoleEducator, codeID, identity.Email)
		cancel()
		if err != nil {
			return reject(domain.RejectProfileFailed, err)
		}
		return &domain.BindResult{CodeID: codeID, Identity: *identity, Rebind: true}, nil
	}
	s.terminateSession(ctx, sessionToken, codeID)
	return reject(domain.RejectCodeAlreadyBound, domain.ErrForbidden)
}

// terminateSession force-terminates the caller's identity-provider session
// after a foreign-binding attempt. Best-effort: failure is logged but never
// changes the outward rejection.
func (s *service) terminateSession(ctx context.Context, sessionToken, codeID string) {
	cctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.identity.TerminateSession(cctx, sessionToken); err != nil {
		slog.Warn("could not terminate session after foreign bind attempt", "code_id", codeID, "err", err)
	}
}

func (s *service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.callTimeout)
}

func reject(code string, err error) (*domain.BindResult, error) {
	return nil, &domain.BindError{Code: code, Err: err}
}
