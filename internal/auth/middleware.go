package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Skipper reports whether a request may bypass token checks.
type Skipper func(r *http.Request) bool

// OpenPaths leaves the embedded page, its assets, health and metrics reachable without a token.
func OpenPaths(r *http.Request) bool {
	switch path := r.URL.Path; {
	case path == "/", path == "/healthz", path == "/metrics":
		return true
	case strings.HasPrefix(path, "/static/"):
		return true
	}
	return false
}

// Middleware attaches verified claims to requests carrying a bearer token.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs a middleware that skips OpenPaths.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg, Skipper: OpenPaths}
}

// Wrap wraps an http.Handler with authentication. Without a configured secret it returns next
// unchanged.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	if !m.Config.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || (m.Skipper != nil && m.Skipper(r)) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := BearerToken(r.Header.Get("Authorization"))
		var claims *Claims
		if err == nil {
			claims, err = Parse(token, m.Config)
		}
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="activitylog"`)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"type": "unauthorized", "detail": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
