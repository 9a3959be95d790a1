package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
)

func setup(t *testing.T) (*rsa.PrivateKey, http.Handler, *models.Actor) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	users := repositories.NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{
		ID: "u-1", Email: "a@acme.test", OrganizationID: "org-1", Permissions: []string{"rent:read"}, IsActive: true,
	}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-off", OrganizationID: "org-1"}))

	var seen models.Actor
	h := AuthMiddleware(&key.PublicKey, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		seen = a
		w.WriteHeader(http.StatusNoContent)
	}))
	return key, h, &seen
}

func call(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rent", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddlewareLoadsActor(t *testing.T) {
	key, h, seen := setup(t)
	tok, err := IssueToken(key, "u-1", time.Hour)
	require.NoError(t, err)

	rr := call(h, tok)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "org-1", seen.OrganizationID)
	assert.Equal(t, []string{"rent:read"}, seen.Permissions)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	key, h, _ := setup(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(h, "").Code)

	forged, err := IssueToken(other, "u-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(h, forged).Code)

	inactive, err := IssueToken(key, "u-off", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(h, inactive).Code)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "u-1", "iss": TokenIssuer, "exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString(key)
	require.NoError(t, err)
	rr := call(h, expired)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "token_expired")

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "u-1", "iss": "someone-else", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(h, wrongIssuer).Code)
}
