package navigation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artstock/console/internal/auth"
)

func TestEffectiveRole(t *testing.T) {
	assert.Equal(t, auth.RoleUser, EffectiveRole(auth.RoleSuperAdmin, "user"))
	assert.Equal(t, auth.RoleAdmin, EffectiveRole(auth.RoleSuperAdmin, "admin"))
	assert.Equal(t, auth.RoleSuperAdmin, EffectiveRole(auth.RoleSuperAdmin, ""))
	assert.Equal(t, auth.RoleSuperAdmin, EffectiveRole(auth.RoleSuperAdmin, "root"))
	assert.Equal(t, auth.RoleAdmin, EffectiveRole(auth.RoleAdmin, "super_admin"))
	assert.Equal(t, auth.RoleUser, EffectiveRole(auth.RoleUser, "admin"))
}

func TestOverrideCookieRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	SetOverride(rr, auth.RoleUser, false)
	cookies := rr.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Zero(t, cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.IsZero(), "preview must not outlive the browser session")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, "user", OverrideFromRequest(req))

	cleared := httptest.NewRecorder()
	SetOverride(cleared, "", false)
	assert.Equal(t, -1, cleared.Result().Cookies()[0].MaxAge)
	assert.Equal(t, "", OverrideFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
}
