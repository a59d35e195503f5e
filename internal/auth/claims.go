package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Scopes understood by the activity log API.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
)

// ErrForbidden is returned by RequireScope when the claims lack every accepted scope.
var ErrForbidden = errors.New("insufficient scope")

// Claims represents the payload extracted from a JWT.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

// HasScope reports whether the claim set includes the provided scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

type claimsKey struct{}

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

// RequireScope checks the context's claims against accepted, any one of which suffices. It returns
// ErrMissingToken when no claims are present and ErrForbidden when none of the scopes match.
func RequireScope(ctx context.Context, accepted ...string) error {
	claims, ok := FromContext(ctx)
	if !ok {
		return ErrMissingToken
	}
	for _, scope := range accepted {
		if claims.HasScope(scope) {
			return nil
		}
	}
	return fmt.Errorf("%w: need %s", ErrForbidden, strings.Join(accepted, " or "))
}
