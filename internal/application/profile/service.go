// Package profile implements upsert-or-create semantics for role profiles.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncetprep/educator-gate/internal/domain"
)

// Store is the minimal role-profile document store.
type Store interface {
	Get(ctx context.Context, identityID string) (*domain.RoleProfile, error)
	Put(ctx context.Context, p *domain.RoleProfile) error
	Update(ctx context.Context, identityID string, updates map[string]interface{}) error
}

type Service interface {
	// Upsert creates the profile when absent and patches role,
	// access-code reference, and email when present. CreatedAt is set on
	// first creation only.
	Upsert(ctx context.Context, identityID, role, accessCodeID, email string) (*domain.RoleProfile, error)
	Get(ctx context.Context, identityID string) (*domain.RoleProfile, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Upsert(ctx context.Context, identityID, role, accessCodeID, email string) (*domain.RoleProfile, error) {
	existing, err := s.store.Get(ctx, identityID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			// Only "record absent" triggers create; anything else is a
			// store failure and must surface.
			return nil, fmt.Errorf("fetch profile: %w", err)
		}
		now := time.Now().UTC()
		p := &domain.RoleProfile{
			IdentityID:   identityID,
			Role:         role,
			AccessCodeID: accessCodeID,
			Email:        email,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.Put(ctx, p); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return p, nil
	}

	updates := map[string]interface{}{
		"role":  role,
		"email": email,
	}
	if accessCodeID != "" {
		updates["access_code_id"] = accessCodeID
	}
	if err := s.store.Update(ctx, identityID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	existing.Role = role
	existing.Email = email
	if accessCodeID != "" {
		existing.AccessCodeID = accessCodeID
	}
	return existing, nil
}

func (s *service) Get(ctx context.Context, identityID string) (*domain.RoleProfile, error) {
	return s.store.Get(ctx, identityID)
}
