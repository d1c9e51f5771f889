package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
)

type authCtxKey int

const (
	authUserKey authCtxKey = iota
	authTokenKey
)

// requireAuth resolves the session cookie to an account and stashes both
// the account and the raw token on the request context.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(auth.SessionCookieName)
		if err != nil || c.Value == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		token, ok := a.cookieCodec.Decode(c.Value)
		if !ok {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		u, err := a.authSvc.GetUserBySession(r.Context(), token)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, u)
		ctx = context.WithValue(ctx, authTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(authUserKey).(domain.User)
	return u, ok
}

func CurrentSessionToken(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(authTokenKey).(string)
	return s, ok
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
