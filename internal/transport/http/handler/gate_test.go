package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateService struct{ mock.Mock }

func (m *mockGateService) VerifyCode(ctx context.Context, clientCode string) (string, time.Time, error) {
	args := m.Called(ctx, clientCode)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
func (m *mockGateService) CompleteBinding(ctx context.Context, gateToken, sessionToken string) (*domain.BindResult, error) {
	args := m.Called(ctx, gateToken, sessionToken)
	if res, _ := args.Get(0).(*domain.BindResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- VerifyCode ---

func TestVerifyCode_SetsGateCookie(t *testing.T) {
	svc := &mockGateService{}
	svc.On("VerifyCode", mock.Anything, "NCET-AB12-CD34-EF56").
		Return("gate-token", time.Now().Add(10*time.Minute), nil)
	h := NewGateHandler(svc, allowAll{})

	req := httptest.NewRequest(http.MethodPost, "/v1/gate/verify-code",
		strings.NewReader(`{"clientCode":"NCET-AB12-CD34-EF56"}`))
	rec := httptest.NewRecorder()
	h.VerifyCode(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)

	cookie := findCookie(t, rec, GateCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "gate-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Greater(t, cookie.MaxAge, 0)
	assert.LessOrEqual(t, cookie.MaxAge, int((10 * time.Minute).Seconds()))
}

func TestVerifyCode_RateLimited(t *testing.T) {
	svc := &mockGateService{}
	h := NewGateHandler(svc, denyAll{})

	req := httptest.NewRequest(http.MethodPost, "/v1/gate/verify-code",
		strings.NewReader(`{"clientCode":"NCET-AB12-CD34-EF56"}`))
	rec := httptest.NewRecorder()
	h.VerifyCode(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
	svc.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything)
}

func TestVerifyCode_MissingCode(t *testing.T) {
	svc := &mockGateService{}
	svc.On("VerifyCode", mock.Anything, "").
		Return("", time.Time{}, domain.ErrBadRequest)
	h := NewGateHandler(svc, allowAll{})

	req := httptest.NewRequest(http.MethodPost, "/v1/gate/verify-code", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.VerifyCode(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, findCookie(t, rec, GateCookieName))
}

func TestVerifyCode_NoMatch(t *testing.T) {
	svc := &mockGateService{}
	svc.On("VerifyCode", mock.Anything, "NCET-0000-0000-0000").
		Return("", time.Time{}, domain.ErrUnauthorized)
	h := NewGateHandler(svc, allowAll{})

	req := httptest.NewRequest(http.MethodPost, "/v1/gate/verify-code",
		strings.NewReader(`{"clientCode":"NCET-0000-0000-0000"}`))
	rec := httptest.NewRecorder()
	h.VerifyCode(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
	assert.Nil(t, findCookie(t, rec, GateCookieName))
}

func TestVerifyCode_InvalidBody(t *testing.T) {
	svc := &mockGateService{}
	h := NewGateHandler(svc, allowAll{})

	req := httptest.NewRequest(http.MethodPost, "/v1/gate/verify-code", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.VerifyCode(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- CompleteBinding ---

func bindRequest(gateToken, sessionToken string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/gate/complete", nil)
	if gateToken != "" {
		req.AddCookie(&http.Cookie{Name: GateCookieName, Value: gateToken})
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionToken})
	}
	return req
}

func TestCompleteBinding_SuccessClearsGateCookie(t *testing.T) {
	svc := &mockGateService{}
	svc.On("CompleteBinding", mock.Anything, "gate", "sess").
		Return(&domain.BindResult{CodeID: "code-1"}, nil)
	h := NewGateHandler(svc, allowAll{})

	rec := httptest.NewRecorder()
	h.CompleteBinding(rec, bindRequest("gate", "sess"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	cookie := findCookie(t, rec, GateCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestCompleteBinding_NoGateCookie(t *testing.T) {
	svc := &mockGateService{}
	svc.On("CompleteBinding", mock.Anything, "", "sess").
		Return(nil, &domain.BindError{Code: domain.RejectGateExpired, Err: domain.ErrUnauthorized})
	h := NewGateHandler(svc, allowAll{})

	rec := httptest.NewRecorder()
	h.CompleteBinding(rec, bindRequest("", "sess"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.RejectGateExpired)
}

func TestCompleteBinding_AlreadyBoundClearsSessionCookie(t *testing.T) {
	svc := &mockGateService{}
	svc.On("CompleteBinding", mock.Anything, "gate", "sess").
		Return(nil, &domain.BindError{Code: domain.RejectCodeAlreadyBound, Err: domain.ErrForbidden})
	h := NewGateHandler(svc, allowAll{})

	rec := httptest.NewRecorder()
	h.CompleteBinding(rec, bindRequest("gate", "sess"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.RejectCodeAlreadyBound)

	cookie := findCookie(t, rec, middleware.SessionCookieName)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)
}

func TestCompleteBinding_CodeNotFound(t *testing.T) {
	svc := &mockGateService{}
	svc.On("CompleteBinding", mock.Anything, "gate", "sess").
		Return(nil, &domain.BindError{Code: domain.RejectCodeNotFound, Err: domain.ErrNotFound})
	h := NewGateHandler(svc, allowAll{})

	rec := httptest.NewRecorder()
	h.CompleteBinding(rec, bindRequest("gate", "sess"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteBinding_StoreFailure(t *testing.T) {
	svc := &mockGateService{}
	svc.On("CompleteBinding", mock.Anything, "gate", "sess").
		Return(nil, &domain.BindError{Code: domain.RejectBindingFailed, Err: assert.AnError})
	h := NewGateHandler(svc, allowAll{})

	rec := httptest.NewRecorder()
	h.CompleteBinding(rec, bindRequest("gate", "sess"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.RejectBindingFailed)

	// The gate cookie is left alone on failure so the same flow can be
	// retried with the same token.
	assert.Nil(t, findCookie(t, rec, GateCookieName))
}

func TestBindStatusMapping(t *testing.T) {
	cases := map[string]int{
		domain.RejectGateExpired:      http.StatusUnauthorized,
		domain.RejectGateInvalid:      http.StatusUnauthorized,
		domain.RejectNoSession:        http.StatusUnauthorized,
		domain.RejectInvalidSession:   http.StatusUnauthorized,
		domain.RejectCodeInactive:     http.StatusForbidden,
		domain.RejectCodeAlreadyBound: http.StatusForbidden,
		domain.RejectCodeNotFound:     http.StatusNotFound,
		domain.RejectBindingFailed:    http.StatusInternalServerError,
		domain.RejectProfileFailed:    http.StatusInternalServerError,
		domain.RejectUnknown:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, bindStatus(code), code)
	}
}
