// Package code implements administrative access-code issuance and retirement.
package code

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/pkg/accesscode"
	"github.com/ncetprep/educator-gate/internal/pkg/id"
)

type Registry interface {
	Create(ctx context.Context, c *domain.AccessCode) error
	Get(ctx context.Context, codeID string) (*domain.AccessCode, error)
	Deactivate(ctx context.Context, codeID string) error
	ListPage(ctx context.Context, limit int32, cursor string) ([]domain.AccessCode, string, error)
}

type Mailer interface {
	SendEmail(to, subject, body string) error
}

// IssueResult carries the stored record and the plaintext code. The
// plaintext exists only in this response (and the optional delivery mail);
// it is never persisted.
type IssueResult struct {
	Code      *domain.AccessCode
	Plaintext string
}

type Service interface {
	Issue(ctx context.Context, req domain.IssueCodeRequest) (*IssueResult, error)
	Deactivate(ctx context.Context, codeID string) error
	Get(ctx context.Context, codeID string) (*domain.AccessCode, error)
	List(ctx context.Context, limit int32, cursor string) ([]domain.AccessCode, string, error)
}

type service struct {
	registry Registry
	mailer   Mailer
	pepper   string
}

func NewService(registry Registry, mailer Mailer, pepper string) Service {
	return &service{registry: registry, mailer: mailer, pepper: pepper}
}

func (s *service) Issue(ctx context.Context, req domain.IssueCodeRequest) (*IssueResult, error) {
	plaintext, err := accesscode.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	now := time.Now().UTC()
	c := &domain.AccessCode{
		CodeID:     id.New(),
		CodeDigest: accesscode.Digest(s.pepper, plaintext),
		CodeHint:   accesscode.Hint(plaintext),
		Active:     true,
		Label:      req.Label,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.registry.Create(ctx, c); err != nil {
		return nil, err
	}

	if req.Email != "" && s.mailer != nil {
		body := fmt.Sprintf("Your educator access code: %s\n\nSign in and enter it on the educator onboarding page.", plaintext)
		if err := s.mailer.SendEmail(req.Email, "Your educator access code", body); err != nil {
			// The code is already issued; delivery can be retried by support.
			slog.Warn("could not deliver access code email", "code_id", c.CodeID, "err", err)
		}
	}

	return &IssueResult{Code: c, Plaintext: plaintext}, nil
}

func (s *service) Deactivate(ctx context.Context, codeID string) error {
	if _, err := s.registry.Get(ctx, codeID); err != nil {
		return err
	}
	return s.registry.Deactivate(ctx, codeID)
}

func (s *service) Get(ctx context.Context, codeID string) (*domain.AccessCode, error) {
	return s.registry.Get(ctx, codeID)
}

func (s *service) List(ctx context.Context, limit int32, cursor string) ([]domain.AccessCode, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.registry.ListPage(ctx, limit, cursor)
}
