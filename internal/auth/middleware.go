package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CookieName is the session cookie set on sign-in.
const CookieName = "precario_session"

// SignInPath is where anonymous page requests are sent.
const SignInPath = "/signin"

type contextKey struct{}

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFrom returns the session stored by Require, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// Middleware enforces sign-in on wrapped handlers.
type Middleware struct {
	Auth *Authenticator

	// Unauthorized writes the response for anonymous /api/ requests. The
	// default is a bare 401.
	Unauthorized http.HandlerFunc

	// Secure marks issued cookies Secure (HTTPS deployments).
	Secure bool
}

// Require passes signed-in requests to next with the session in the context.
// Anonymous page requests get 303 to /signin?next=<path>; anonymous /api/
// requests go to Unauthorized.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Auth.Enabled() {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Session{Email: "anonymous"})))
			return
		}

		if s, ok := m.Auth.Lookup(TokenFromRequest(r)); ok {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			if m.Unauthorized != nil {
				m.Unauthorized(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		http.Redirect(w, r, SignInPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	})
}

// SetCookie stores the session token in the response.
func (m *Middleware) SetCookie(w http.ResponseWriter, s Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Middleware) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the bearer token or, failing that, the session
// cookie value.
func TokenFromRequest(r *http.Request) string {
	if token, ok := BearerToken(r); ok {
		return token
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// BearerToken extracts "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// SafeNext returns next when it is a local absolute path, "/labels"
// otherwise, so the sign-in form cannot redirect off-site.
func SafeNext(next string) string {
	if !IsLocalPath(next) {
		return "/labels"
	}
	return next
}

// IsLocalPath reports whether next is a path on this host. Browsers read a
// backslash as a slash and drop tabs and newlines, so a backslash or a
// control character anywhere is rejected along with "//host".
func IsLocalPath(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return false
	}
	for _, r := range next {
		if r == '\\' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
