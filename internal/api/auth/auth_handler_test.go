package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandlerRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockAuthService)
		req := types.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"}
		svc.On("Register", mock.Anything, req).Return(&types.TokenResponse{Token: "signed", ExpiresAt: time.Now()}, nil)

		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"name":"Ada","email":"ada@example.com","password":"secret1"}`))
		NewHandlerImpl(svc, discardLogger).Register(rr, r)

		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "signed", body["data"].(map[string]any)["token"])
	})

	t.Run("validation errors are listed per field", func(t *testing.T) {
		svc := new(MockAuthService)
		verr := types.NewValidationError("email", "Please include a valid email")
		verr.Add("password", "Please enter a password with 6 or more characters")
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, verr)

		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":"Ada"}`))
		NewHandlerImpl(svc, discardLogger).Register(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Please include a valid email, Please enter a password with 6 or more characters", body["error"])
		assert.Len(t, body["errors"], 2)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockAuthService)
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":`))
		NewHandlerImpl(svc, discardLogger).Register(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestHandlerLogin(t *testing.T) {
	t.Run("invalid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, types.ErrUnauthenticated)

		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`))
		NewHandlerImpl(svc, discardLogger).Login(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rr)["error"])
	})

	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, types.LoginRequest{Email: "ada@example.com", Password: "secret1"}).
			Return(&types.TokenResponse{Token: "signed"}, nil)

		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`))
		NewHandlerImpl(svc, discardLogger).Login(rr, r)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHandlerMeAndLogout(t *testing.T) {
	user := &types.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	svc := new(MockAuthService)
	svc.On("Me", mock.Anything, user.ID).Return(user, nil)
	h := NewHandlerImpl(svc, discardLogger)

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	h.Me(rr, r.WithContext(WithUser(r.Context(), user)))

	assert.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.Equal(t, user.ID.String(), data["_id"])
	assert.NotContains(t, rr.Body.String(), "hash")

	rr = httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{}}`, rr.Body.String())
}
