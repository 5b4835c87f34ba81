package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/qivlabs/qiv-auth/internal/api/http/context"
	"github.com/qivlabs/qiv-auth/internal/api/http/session"
	"github.com/qivlabs/qiv-auth/internal/mocks"
	"github.com/qivlabs/qiv-auth/internal/model"
	"github.com/qivlabs/qiv-auth/internal/service"
	"github.com/qivlabs/qiv-auth/internal/testutil"
)

// authServiceMock is a mock type for the AuthService interface.
type authServiceMock struct {
	mock.Mock
}

func (m *authServiceMock) Register(ctx context.Context, params service.RegisterParams) (model.Identity, string, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Identity), args.String(1), args.Error(2)
}

func (m *authServiceMock) Login(ctx context.Context, email, password string) (model.Identity, string, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.Identity), args.String(1), args.Error(2)
}

func (m *authServiceMock) ReconcileFederatedProfile(ctx context.Context, profile model.FederatedProfile) (model.Identity, string, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(model.Identity), args.String(1), args.Error(2)
}

func (m *authServiceMock) RequestReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *authServiceMock) ConfirmReset(ctx context.Context, email, code, newPassword string) (model.Identity, string, error) {
	args := m.Called(ctx, email, code, newPassword)
	return args.Get(0).(model.Identity), args.String(1), args.Error(2)
}

func newTestAuth(svc AuthService, identities model.IdentityStore) *Auth {
	return NewAuth(svc, identities, httpctx.NewManager(), session.CookieOptions{}, testutil.MakeNoopLogger())
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestAuth_Register_Created(t *testing.T) {
	svc := &authServiceMock{}
	identity := model.Identity{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
	svc.On("Register", mock.Anything, service.RegisterParams{
		Username: "alice", Email: "a@x.com", Password: "Abc12345!", ConfirmPassword: "Abc12345!",
	}).Return(identity, "token", nil)

	h := newTestAuth(svc, &mocks.IdentityStore{})
	rec := postJSON(t, h.Register, map[string]string{
		"username":        "alice",
		"email":           "a@x.com",
		"password":        "Abc12345!",
		"confirmPassword": "Abc12345!",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp identityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "a@x.com", resp.User.Email)

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAuth_Register_ValidationError(t *testing.T) {
	svc := &authServiceMock{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(model.Identity{}, "", model.NewValidationError("username", "Username is required"))

	h := newTestAuth(svc, &mocks.IdentityStore{})
	rec := postJSON(t, h.Register, map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Username is required", resp.Error)
	assert.Equal(t, "username", resp.Field)
}

func TestAuth_Register_Conflict(t *testing.T) {
	svc := &authServiceMock{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(model.Identity{}, "", model.NewConflictError("user with this email already exists"))

	h := newTestAuth(svc, &mocks.IdentityStore{})
	rec := postJSON(t, h.Register, map[string]string{"email": "a@x.com"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Nil(t, sessionCookie(t, rec))
}

func TestAuth_Register_BadBody(t *testing.T) {
	h := newTestAuth(&authServiceMock{}, &mocks.IdentityStore{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_Login_OK(t *testing.T) {
	svc := &authServiceMock{}
	identity := model.Identity{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
	svc.On("Login", mock.Anything, "a@x.com", "Abc12345!").Return(identity, "token", nil)

	h := newTestAuth(svc, &mocks.IdentityStore{})
	rec := postJSON(t, h.Login, map[string]string{"email": "a@x.com", "password": "Abc12345!"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sessionCookie(t, rec))
}

func TestAuth_Login_Unauthorized(t *testing.T) {
	svc := &authServiceMock{}
	svc.On("Login", mock.Anything, "a@x.com", "wrong").
		Return(model.Identity{}, "", model.NewAuthError("invalid email or password"))

	h := newTestAuth(svc, &mocks.IdentityStore{})
	rec := postJSON(t, h.Login, map[string]string{"email": "a@x.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid email or password", resp.Error)
}

func TestAuth_Logout_ClearsCookie(t *testing.T) {
	h := newTestAuth(&authServiceMock{}, &mocks.IdentityStore{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuth_Me(t *testing.T) {
	identities := &mocks.IdentityStore{}
	userID := uuid.New()
	identities.On("GetByID", mock.Anything, userID).
		Return(model.Identity{ID: userID, Username: "alice", Email: "a@x.com"}, nil)

	ctxMgr := httpctx.NewManager()
	h := NewAuth(&authServiceMock{}, identities, ctxMgr, session.CookieOptions{}, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctxMgr.SetUserIDToContext(req.Context(), userID))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestAuth_Me_Unauthenticated(t *testing.T) {
	h := newTestAuth(&authServiceMock{}, &mocks.IdentityStore{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
