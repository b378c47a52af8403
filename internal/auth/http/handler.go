// Package authhttp serves sign-in, sign-out and the session API.
package authhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/navigation"
	"github.com/artstock/console/internal/platform/httpx"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/view"
)

const invalidLoginMessage = "Correo o contraseña inválidos"

// AccountLister lists the accounts shown as sign-in hints.
type AccountLister interface {
	Accounts(ctx context.Context) ([]auth.Account, error)
}

// Options tune the handler.
type Options struct {
	SecureCookies bool
	// DemoAccounts lists the directory on the login page.
	DemoAccounts bool
	// LoginLimiter wraps POST /login; nil disables limiting.
	LoginLimiter func(http.Handler) http.Handler
	// ObserveLogin receives each sign-in outcome; nil disables it.
	ObserveLogin func(outcome string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	accounts  AccountLister
	renderer  *view.Renderer
	validator *validator.Validate
	opts      Options
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, accounts AccountLister, renderer *view.Renderer, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		accounts:  accounts,
		renderer:  renderer,
		validator: validator.New(),
		opts:      opts,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	if h.opts.LoginLimiter != nil {
		r.With(h.opts.LoginLimiter).Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/logout", h.handleLogout)
	r.Get("/unauthorized", h.showUnauthorized)
	r.Get("/api/session", h.handleSessionAPI)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Name     string `validate:"max=80"`
}

type loginPageData struct {
	Email        string
	Name         string
	Next         string
	Error        string
	DemoAccounts []auth.Account
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	store := auth.StoreFromContext(r.Context())
	if user, ok := store.User(); ok {
		http.Redirect(w, r, landing(user.Role, r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{Next: r.URL.Query().Get("next")})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
	}
	data := loginPageData{Email: form.Email, Name: form.Name, Next: r.PostFormValue("next")}
	if err := h.validator.Struct(form); err != nil {
		h.observe("rejected")
		data.Error = invalidLoginMessage
		h.renderLogin(w, r, http.StatusBadRequest, data)
		return
	}

	store := auth.StoreFromContext(r.Context())
	if store == nil {
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión aún no está lista, intenta de nuevo.")
		return
	}
	user, err := store.SignIn(r.Context(), auth.Credentials{Identifier: form.Email, Secret: form.Password}, form.Name)
	switch {
	case errors.Is(err, auth.ErrInvalidIdentifier), errors.Is(err, auth.ErrInvalidCredentials):
		h.logger.Info("login rejected", slog.String("email", form.Email))
		h.observe("rejected")
		data.Error = invalidLoginMessage
		h.renderLogin(w, r, http.StatusBadRequest, data)
		return
	case err != nil && user.ID == "":
		h.logger.Error("sign in", slog.Any("error", err))
		h.observe("error")
		h.renderer.Error(w, r, http.StatusInternalServerError, "No se pudo iniciar sesión.")
		return
	case err != nil:
		// Signed in, but the audit entry was not written.
		h.logger.Warn("sign in audit", slog.Any("error", err))
	}

	h.observe("success")
	navigation.SetOverride(w, "", h.opts.SecureCookies)
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Rotate()
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Bienvenido, " + user.Name})
	}
	http.Redirect(w, r, landing(user.Role, data.Next), http.StatusSeeOther)
}

func (h *Handler) observe(outcome string) {
	if h.opts.ObserveLogin != nil {
		h.opts.ObserveLogin(outcome)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if store := auth.StoreFromContext(r.Context()); store != nil {
		if err := store.SignOut(r.Context()); err != nil {
			h.logger.Warn("sign out", slog.Any("error", err))
		}
	}
	navigation.SetOverride(w, "", h.opts.SecureCookies)
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Rotate()
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashInfo, Message: "Sesión cerrada"})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type unauthorizedData struct {
	Role auth.Role
	Home string
}

func (h *Handler) showUnauthorized(w http.ResponseWriter, r *http.Request) {
	data := unauthorizedData{Home: "/login"}
	if user, ok := auth.StoreFromContext(r.Context()).User(); ok {
		data.Role = user.Role
		data.Home = landing(user.Role, "")
	}
	h.renderer.Page(w, r, http.StatusForbidden, "pages/unauthorized.html", "Acceso no autorizado", data)
}

type sessionResponse struct {
	auth.Session
	EffectiveRole auth.Role `json:"effectiveRole,omitempty"`
	Previewing    bool      `json:"previewing"`
}

func (h *Handler) handleSessionAPI(w http.ResponseWriter, r *http.Request) {
	store := auth.StoreFromContext(r.Context())
	if !store.Initialized() {
		httpx.RespondError(w, r, httpx.ErrUnavailable)
		return
	}
	resp := sessionResponse{Session: store.Session()}
	if resp.User != nil {
		resp.EffectiveRole = navigation.EffectiveRole(resp.User.Role, navigation.OverrideFromRequest(r))
		resp.Previewing = resp.EffectiveRole != resp.User.Role
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	data.Next = shared.SafeRedirect(data.Next, "")
	if h.opts.DemoAccounts && h.accounts != nil {
		accounts, err := h.accounts.Accounts(r.Context())
		if err != nil {
			h.logger.Warn("list demo accounts", slog.Any("error", err))
		}
		data.DemoAccounts = accounts
	}
	h.renderer.Page(w, r, status, "pages/login.html", "Iniciar sesión", data)
}

// landing picks where a signed-in user goes after login. Customers always
// land in the portal; nobody is sent back to the login page.
func landing(role auth.Role, next string) string {
	if role == auth.RoleUser {
		target := shared.SafeRedirect(next, "")
		if target == "/profile" || target == "/portal" || strings.HasPrefix(target, "/portal/") {
			return target
		}
		return "/portal"
	}
	target := shared.SafeRedirect(next, "/")
	if target == "/login" || strings.HasPrefix(target, "/login?") || strings.HasPrefix(target, "/login/") {
		return "/"
	}
	return target
}
