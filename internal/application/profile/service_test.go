package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Get(ctx context.Context, identityID string) (*domain.RoleProfile, error) {
	args := m.Called(ctx, identityID)
	if p, _ := args.Get(0).(*domain.RoleProfile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Put(ctx context.Context, p *domain.RoleProfile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockStore) Update(ctx context.Context, identityID string, updates map[string]interface{}) error {
	return m.Called(ctx, identityID, updates).Error(0)
}

func TestUpsert_CreatesWhenAbsent(t *testing.T) {
	store := &mockStore{}
	store.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	store.On("Put", mock.Anything, mock.MatchedBy(func(p *domain.RoleProfile) bool {
		return p.IdentityID == "u1" &&
			p.Role == domain.RoleEducator &&
			p.AccessCodeID == "code-1" &&
			p.Email == "a@x.com" &&
			!p.CreatedAt.IsZero()
	})).Return(nil)

	p, err := NewService(store).Upsert(context.Background(), "u1", domain.RoleEducator, "code-1", "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleEducator, p.Role)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpsert_UpdatesWhenPresent(t *testing.T) {
	store := &mockStore{}
	existing := &domain.RoleProfile{IdentityID: "u1", Role: domain.RoleStudent, Email: "old@x.com"}
	store.On("Get", mock.Anything, "u1").Return(existing, nil)
	store.On("Update", mock.Anything, "u1", map[string]interface{}{
		"role":           domain.RoleEducator,
		"email":          "a@x.com",
		"access_code_id": "code-1",
	}).Return(nil)

	p, err := NewService(store).Upsert(context.Background(), "u1", domain.RoleEducator, "code-1", "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleEducator, p.Role)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "code-1", p.AccessCodeID)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestUpsert_OmitsEmptyCodeReference(t *testing.T) {
	store := &mockStore{}
	existing := &domain.RoleProfile{IdentityID: "u1", Role: domain.RoleEducator, AccessCodeID: "code-1"}
	store.On("Get", mock.Anything, "u1").Return(existing, nil)
	store.On("Update", mock.Anything, "u1", map[string]interface{}{
		"role":  domain.RoleEducator,
		"email": "a@x.com",
	}).Return(nil)

	p, err := NewService(store).Upsert(context.Background(), "u1", domain.RoleEducator, "", "a@x.com")

	require.NoError(t, err)
	// An empty argument never clears an existing code reference.
	assert.Equal(t, "code-1", p.AccessCodeID)
}

func TestUpsert_StoreFailureSurfaces(t *testing.T) {
	store := &mockStore{}
	store.On("Get", mock.Anything, "u1").Return(nil, errors.New("dynamo down"))

	_, err := NewService(store).Upsert(context.Background(), "u1", domain.RoleEducator, "code-1", "a@x.com")

	require.Error(t, err)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
