package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/medpredict-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(role string) models.User {
	return models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     role,
	}
}

func TestGenerateValidate_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)

	token, err := m.Generate(testUser(models.RoleUser))
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestValidate_WrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)
	other := NewManager("other-secret", time.Hour, false)

	token, err := m.Generate(testUser(models.RoleUser))
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidate_ExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Hour, false)

	token, err := m.Generate(testUser(models.RoleUser))
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

// claimsEcho records whether the wrapped handler ran and with which claims.
type claimsEcho struct {
	ran    bool
	claims *Claims
}

func (c *claimsEcho) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.ran = true
		c.claims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)
	echo := &claimsEcho{}

	// Browser route: redirect to login.
	rec := httptest.NewRecorder()
	m.RequireAuth(echo.handler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, echo.ran)

	// API route: 401 JSON.
	rec = httptest.NewRecorder()
	m.RequireAuth(echo.handler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, echo.ran)
}

func TestRequireAuth_ValidCookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)
	echo := &claimsEcho{}

	token, err := m.Generate(testUser(models.RoleUser))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

	rec := httptest.NewRecorder()
	m.RequireAuth(echo.handler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, echo.ran)
	require.NotNil(t, echo.claims)
	assert.Equal(t, "user-1", echo.claims.UserID)
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)
	echo := &claimsEcho{}

	token, err := m.Generate(testUser(models.RoleAdmin))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	m.RequireAuth(echo.handler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, echo.ran)
}

func TestRequireAdmin_GatesByRole(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)
	echo := &claimsEcho{}
	guarded := m.RequireAuth(m.RequireAdmin(echo.handler()))

	// Ordinary user is redirected away, handler never runs.
	userToken, err := m.Generate(testUser(models.RoleUser))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: userToken})
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.False(t, echo.ran)

	// Admin passes through.
	adminToken, err := m.Generate(testUser(models.RoleAdmin))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: adminToken})
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, echo.ran)
}

func TestClearSessionCookie_Idempotent(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	m.ClearSessionCookie(rec)
	m.ClearSessionCookie(rec)

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, SessionCookie, c.Name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}
