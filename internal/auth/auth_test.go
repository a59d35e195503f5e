package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestParseNormalizesScopes(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":    "owner",
		"iss":    "activitylog",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeActivitiesRead, ScopeActivitiesWrite},
	})

	claims, err := Parse(token, Config{Secret: testSecret, Issuer: "activitylog"})
	require.NoError(t, err)
	require.Equal(t, "owner", claims.Subject)
	require.True(t, claims.HasScope(ScopeActivitiesRead))
	require.True(t, claims.HasScope(ScopeActivitiesWrite))
	require.False(t, claims.HasScope("admin"))
}

func TestParseAcceptsSpaceSeparatedScopes(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":    "owner",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": "activities:read activities:write",
	})

	claims, err := Parse(token, Config{Secret: testSecret})
	require.NoError(t, err)
	require.Len(t, claims.Scopes, 2)
}

func TestParseRejectsInvalidTokens(t *testing.T) {
	_, err := Parse("", Config{Secret: testSecret})
	require.ErrorIs(t, err, ErrMissingToken)

	expired := signToken(t, jwt.MapClaims{"sub": "owner", "exp": time.Now().Add(-time.Minute).Unix()})
	_, err = Parse(expired, Config{Secret: testSecret})
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := signToken(t, jwt.MapClaims{"sub": "owner", "iss": "other", "exp": time.Now().Add(time.Hour).Unix()})
	_, err = Parse(wrongIssuer, Config{Secret: testSecret, Issuer: "activitylog"})
	require.ErrorIs(t, err, ErrInvalidToken)

	noSubject := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	_, err = Parse(noSubject, Config{Secret: testSecret})
	require.ErrorIs(t, err, ErrInvalidToken)

	good := signToken(t, jwt.MapClaims{"sub": "owner", "exp": time.Now().Add(time.Hour).Unix()})
	_, err = Parse(good, Config{Secret: "another-secret"})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasScopeOnNilClaims(t *testing.T) {
	var claims *Claims
	require.False(t, claims.HasScope(ScopeActivitiesRead))
}

func TestMiddlewareDisabledWithoutSecret(t *testing.T) {
	called := false
	handler := NewMiddleware(Config{}).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activities", nil))
	require.True(t, called)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	var subject string
	handler := NewMiddleware(Config{Secret: testSecret}).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		require.True(t, ok)
		subject = claims.Subject
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, jwt.MapClaims{"sub": "owner", "exp": time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "owner", subject)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := NewMiddleware(Config{Secret: testSecret}).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activities", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "unauthorized")
}

func TestMiddlewareSkipsOpenPaths(t *testing.T) {
	handler := NewMiddleware(Config{Secret: testSecret}).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/", "/healthz", "/metrics", "/static/app.js"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequireScope(t *testing.T) {
	ctx := context.Background()
	require.ErrorIs(t, RequireScope(ctx, ScopeActivitiesRead), ErrMissingToken)

	writer := &Claims{Subject: "owner", Scopes: map[string]struct{}{ScopeActivitiesWrite: {}}}
	ctx = WithClaims(ctx, writer)
	require.NoError(t, RequireScope(ctx, ScopeActivitiesRead, ScopeActivitiesWrite))

	err := RequireScope(ctx, ScopeActivitiesRead)
	require.ErrorIs(t, err, ErrForbidden)
	require.Contains(t, err.Error(), ScopeActivitiesRead)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	require.Equal(t, "abc.def", token)

	token, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	require.Equal(t, "xyz", token)

	_, err = BearerToken("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, ErrInvalidToken)
}
