package authhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/navigation"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/testing/sessiontest"
	"github.com/artstock/console/internal/view"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	renderer := view.NewRenderer(engine, shared.NewCSRFManager("secret"), nil, nil)
	r := chi.NewRouter()
	NewHandler(nil, sessiontest.Directory(t), renderer, Options{DemoAccounts: true}).MountRoutes(r)
	return r
}

func loginValues(email, password, next string) url.Values {
	return url.Values{"email": {email}, "password": {password}, "next": {next}}
}

func TestShowLoginListsDemoAccounts(t *testing.T) {
	sess, store := sessiontest.Anonymous(t)
	rr := sessiontest.Serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/login?next=/billing", nil), sess, store)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, sessiontest.SuperAdmin)
	assert.Contains(t, body, `name="next" value="/billing"`)
	assert.Contains(t, body, `name="csrf_token"`)
}

func TestShowLoginRedirectsSignedInUser(t *testing.T) {
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/login", nil), sess, store)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginSuccessRedirectsToNext(t *testing.T) {
	sess, store := sessiontest.Anonymous(t)
	before := sess.ID
	req := sessiontest.PostForm("/login", loginValues(sessiontest.Admin, sessiontest.Password, "/billing?status=overdue"))
	rr := sessiontest.Serve(newRouter(t), req, sess, store)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/billing?status=overdue", rr.Header().Get("Location"))
	assert.NotEqual(t, before, sess.ID, "session id rotates on sign-in")
	assert.True(t, store.HasRole(auth.RoleAdmin))

	entries := sessiontest.Entries(t, sess)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionLoginSuccess, entries[0].Action)

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)
}

func TestLoginNeverReturnsToLogin(t *testing.T) {
	sess, store := sessiontest.Anonymous(t)
	req := sessiontest.PostForm("/login", loginValues(sessiontest.SuperAdmin, sessiontest.Password, "/login?next=/audit"))
	rr := sessiontest.Serve(newRouter(t), req, sess, store)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginSendsCustomersToPortal(t *testing.T) {
	sess, store := sessiontest.Anonymous(t)
	req := sessiontest.PostForm("/login", loginValues(sessiontest.User, sessiontest.Password, "/billing"))
	rr := sessiontest.Serve(newRouter(t), req, sess, store)
	assert.Equal(t, "/portal", rr.Header().Get("Location"))
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	sess, store := sessiontest.Anonymous(t)
	req := sessiontest.PostForm("/login", loginValues(sessiontest.Admin, sessiontest.Password, "//evil.example/x"))
	rr := sessiontest.Serve(newRouter(t), req, sess, store)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginFailureIsGeneric(t *testing.T) {
	cases := map[string]url.Values{
		"bad password":   loginValues(sessiontest.Admin, "wrong-password", ""),
		"unknown user":   loginValues("nobody@artstock.demo", sessiontest.Password, ""),
		"not an email":   loginValues("admin", sessiontest.Password, ""),
		"empty password": loginValues(sessiontest.Admin, "", ""),
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			sess, store := sessiontest.Anonymous(t)
			rr := sessiontest.Serve(newRouter(t), sessiontest.PostForm("/login", form), sess, store)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "Correo o contraseña inválidos")
			assert.False(t, store.Authenticated())
			assert.Empty(t, sessiontest.Entries(t, sess))
		})
	}
}

func TestLogoutClearsSessionAndPreview(t *testing.T) {
	sess, store := sessiontest.SignedIn(t, sessiontest.SuperAdmin)
	rr := sessiontest.Serve(newRouter(t), sessiontest.PostForm("/logout", nil), sess, store)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, store.Authenticated())
	assert.Empty(t, sess.Get("artstock_session"))

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == navigation.OverrideCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
	assert.Equal(t, audit.ActionLogout, sessiontest.Entries(t, sess)[0].Action)
}

func TestUnauthorizedShowsActualRole(t *testing.T) {
	sess, store := sessiontest.SignedIn(t, sessiontest.User)
	rr := sessiontest.Serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/unauthorized", nil), sess, store)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "role-user")
	assert.Contains(t, rr.Body.String(), `href="/portal"`)
}

func TestSessionAPI(t *testing.T) {
	sess, store := sessiontest.SignedIn(t, sessiontest.SuperAdmin)
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: navigation.OverrideCookie, Value: "admin"})
	rr := sessiontest.Serve(newRouter(t), req, sess, store)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		IsAuthenticated bool      `json:"isAuthenticated"`
		User            auth.User `json:"user"`
		EffectiveRole   auth.Role `json:"effectiveRole"`
		Previewing      bool      `json:"previewing"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.IsAuthenticated)
	assert.Equal(t, auth.RoleSuperAdmin, body.User.Role)
	assert.Equal(t, auth.RoleAdmin, body.EffectiveRole)
	assert.True(t, body.Previewing)
}

func TestSessionAPIWithoutStore(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLanding(t *testing.T) {
	assert.Equal(t, "/portal/payments", landing(auth.RoleUser, "/portal/payments"))
	assert.Equal(t, "/portal", landing(auth.RoleUser, "/settings"))
	assert.Equal(t, "/settings", landing(auth.RoleAdmin, "/settings"))
	assert.Equal(t, "/", landing(auth.RoleAdmin, ""))
}
