// Package rbac gates routes on the acting user's real role.
package rbac

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/artstock/console/internal/auth"
)

// Guards builds the authentication and role gates. Both read the session
// store bound to the request and never consult any display-only role
// override.
type Guards struct {
	Logger           *slog.Logger
	LoginPath        string
	UnauthorizedPath string
	// Loading renders while the session store is not ready.
	Loading http.Handler
	// OnDeny observes each rejected request by reason.
	OnDeny func(reason string)
}

// Denial reasons passed to OnDeny.
const (
	DenyUnauthenticated = "unauthenticated"
	DenyNoUser          = "no_user"
	DenyRole            = "role"
)

// RequireAuth lets authenticated requests through and sends anyone else to
// the login page, remembering the requested location.
func (g Guards) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := auth.StoreFromContext(r.Context())
		if !store.Initialized() {
			g.loading(w, r)
			return
		}
		if !store.Authenticated() {
			g.deny(DenyUnauthenticated)
			http.Redirect(w, r, g.loginURL(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits users holding one of roles. Authenticated users
// without the role are redirected to the unauthorized page; requests with no
// user get an empty 403.
func (g Guards) RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := auth.StoreFromContext(r.Context())
			if !store.Initialized() {
				g.loading(w, r)
				return
			}
			user, ok := store.User()
			if !ok {
				g.deny(DenyNoUser)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if !user.Role.In(allowed...) {
				g.deny(DenyRole)
				if g.Logger != nil {
					g.Logger.Info("role gate denied",
						slog.String("path", r.URL.Path),
						slog.String("role", string(user.Role)))
				}
				http.Redirect(w, r, g.unauthorizedPath(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allows reports whether role passes a RequireRole(roles...) gate.
func Allows(role auth.Role, roles ...auth.Role) bool {
	return role.In(normalizeRoles(roles)...)
}

func (g Guards) loading(w http.ResponseWriter, r *http.Request) {
	if g.Loading != nil {
		g.Loading.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`<!doctype html><title>Cargando</title><p class="loading">Cargando…</p>`))
}

func (g Guards) deny(reason string) {
	if g.OnDeny != nil {
		g.OnDeny(reason)
	}
}

func (g Guards) loginURL(r *http.Request) string {
	login := g.LoginPath
	if login == "" {
		login = "/login"
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return login
	}
	return login + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

func (g Guards) unauthorizedPath() string {
	if g.UnauthorizedPath == "" {
		return "/unauthorized"
	}
	return g.UnauthorizedPath
}

func normalizeRoles(roles []auth.Role) []auth.Role {
	seen := make(map[auth.Role]struct{}, len(roles))
	out := make([]auth.Role, 0, len(roles))
	for _, role := range roles {
		role = auth.Role(strings.TrimSpace(strings.ToLower(string(role))))
		if !role.Valid() {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
