package code

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/pkg/accesscode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRegistry struct{ mock.Mock }

func (m *mockRegistry) Create(ctx context.Context, c *domain.AccessCode) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockRegistry) Get(ctx context.Context, codeID string) (*domain.AccessCode, error) {
	args := m.Called(ctx, codeID)
	if c, _ := args.Get(0).(*domain.AccessCode); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRegistry) Deactivate(ctx context.Context, codeID string) error {
	return m.Called(ctx, codeID).Error(0)
}
func (m *mockRegistry) ListPage(ctx context.Context, limit int32, cursor string) ([]domain.AccessCode, string, error) {
	args := m.Called(ctx, limit, cursor)
	codes, _ := args.Get(0).([]domain.AccessCode)
	return codes, args.String(1), args.Error(2)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

const pepper = "test-pepper"

var codeFormat = regexp.MustCompile(`^NCET-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestIssue_PersistsDigestNotPlaintext(t *testing.T) {
	reg := &mockRegistry{}
	var stored *domain.AccessCode
	reg.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.AccessCode) bool {
		stored = c
		return c.CodeID != "" && c.Active
	})).Return(nil)

	res, err := NewService(reg, nil, pepper).Issue(context.Background(), domain.IssueCodeRequest{Label: "Spring cohort"})

	require.NoError(t, err)
	assert.Regexp(t, codeFormat, res.Plaintext)
	assert.Equal(t, accesscode.Digest(pepper, res.Plaintext), stored.CodeDigest)
	assert.Equal(t, accesscode.Hint(res.Plaintext), stored.CodeHint)
	assert.NotContains(t, stored.CodeDigest, res.Plaintext)
	assert.Equal(t, "Spring cohort", stored.Label)
}

func TestIssue_DeliversByEmailWhenRequested(t *testing.T) {
	reg, ml := &mockRegistry{}, &mockMailer{}
	reg.On("Create", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "teacher@school.edu", mock.Anything, mock.MatchedBy(func(body string) bool {
		return regexp.MustCompile(`NCET-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}`).MatchString(body)
	})).Return(nil)

	_, err := NewService(reg, ml, pepper).Issue(context.Background(), domain.IssueCodeRequest{Label: "x", Email: "teacher@school.edu"})

	require.NoError(t, err)
	ml.AssertExpectations(t)
}

func TestIssue_DeliveryFailureDoesNotFailIssuance(t *testing.T) {
	reg, ml := &mockRegistry{}, &mockMailer{}
	reg.On("Create", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	res, err := NewService(reg, ml, pepper).Issue(context.Background(), domain.IssueCodeRequest{Label: "x", Email: "teacher@school.edu"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Plaintext)
}

func TestIssue_CreateFailure(t *testing.T) {
	reg := &mockRegistry{}
	reg.On("Create", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	_, err := NewService(reg, nil, pepper).Issue(context.Background(), domain.IssueCodeRequest{Label: "x"})

	require.Error(t, err)
}

func TestDeactivate_UnknownCode(t *testing.T) {
	reg := &mockRegistry{}
	reg.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	err := NewService(reg, nil, pepper).Deactivate(context.Background(), "nope")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	reg.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestDeactivate_Existing(t *testing.T) {
	reg := &mockRegistry{}
	reg.On("Get", mock.Anything, "code-1").Return(&domain.AccessCode{CodeID: "code-1", Active: true}, nil)
	reg.On("Deactivate", mock.Anything, "code-1").Return(nil)

	err := NewService(reg, nil, pepper).Deactivate(context.Background(), "code-1")

	require.NoError(t, err)
}

func TestList_ClampsLimit(t *testing.T) {
	reg := &mockRegistry{}
	reg.On("ListPage", mock.Anything, int32(25), "").Return([]domain.AccessCode{}, "", nil)

	_, _, err := NewService(reg, nil, pepper).List(context.Background(), 0, "")

	require.NoError(t, err)
	reg.AssertCalled(t, "ListPage", mock.Anything, int32(25), "")
}
