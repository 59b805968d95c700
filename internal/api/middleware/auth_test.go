package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedHandler(called *bool) http.Handler {
	return Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthAcceptsValidToken(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret))

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil)

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthRejectsWrongScheme(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "other-secret"))

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthRejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil)
	req.Header.Set("Authorization", "Bearer "+unsigned)

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expired, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil)
	req.Header.Set("Authorization", "Bearer "+expired)

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthAllowsPreflight(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodOptions, "/transfers/retrieve", nil)

	rec := httptest.NewRecorder()
	authedHandler(&called).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called, "CORS preflights pass through without a token")
}
