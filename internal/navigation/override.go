package navigation

import (
	"net/http"
	"strings"

	"github.com/artstock/console/internal/auth"
)

// OverrideCookie holds the display-only "view as" role. It is a session
// cookie and is never written to browser storage.
const OverrideCookie = "artstock_view_as"

// EffectiveRole is the role navigation is rendered for. A super admin may
// preview another role; every other user sees their own.
func EffectiveRole(real auth.Role, override string) auth.Role {
	if real != auth.RoleSuperAdmin {
		return real
	}
	role, err := auth.ParseRole(override)
	if err != nil {
		return real
	}
	return role
}

// OverrideFromRequest reads the requested preview role, if any.
func OverrideFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(OverrideCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// SetOverride stores role as the preview role; an empty role clears it.
func SetOverride(w http.ResponseWriter, role auth.Role, secure bool) {
	cookie := &http.Cookie{
		Name:     OverrideCookie,
		Value:    string(role),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if role == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
