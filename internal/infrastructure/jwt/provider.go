package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ncetprep/educator-gate/internal/config"
)

// GateClaims is the payload of a gate token. It carries a code reference and
// nothing else: no identity claim ever rides on a gate token.
type GateClaims struct {
	CodeID string `json:"code_id"`
	jwt.RegisteredClaims
}

// SessionClaims is the payload of an identity-provider session token.
type SessionClaims struct {
	SessionID  string `json:"session_id"`
	IdentityID string `json:"identity_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs for gate tokens and sessions.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	gateTTL    time.Duration
	sessionTTL time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		gateTTL:    cfg.GateTokenTTL,
		sessionTTL: cfg.SessionTTL,
	}, nil
}

// SignGate issues a gate token for codeID. The absolute expiry is embedded in
// the token and returned so callers derive cookie lifetimes from it instead of
// configuring a second, separately drifting value.
func (p *Provider) SignGate(codeID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(p.gateTTL)
	claims := GateClaims{
		CodeID: codeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// VerifyGate checks the signature, then compares the embedded expiry against
// the clock itself. Claims validation inside the JWT library is disabled so
// the expiry contract does not depend on the library's clock-skew tolerance.
func (p *Provider) VerifyGate(tokenStr string) (*GateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &GateClaims{}, p.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*GateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid gate token claims")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("gate token expired")
	}
	if claims.CodeID == "" {
		return nil, errors.New("gate token missing code reference")
	}
	return claims, nil
}

func (p *Provider) SignSession(sessionID, identityID, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID:  sessionID,
		IdentityID: identityID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

func (p *Provider) VerifySession(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, p.keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token claims")
	}
	return claims, nil
}

func (p *Provider) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return p.publicKey, nil
}
