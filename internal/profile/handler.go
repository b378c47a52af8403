// Package profile serves the signed-in user's profile, preferences and
// security requests.
package profile

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/preferences"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/view"
)

// Path is the profile page.
const Path = "/profile"

var fieldMessages = map[string]string{
	"name":   "El nombre es obligatorio (máximo 80 caracteres)",
	"email":  "Ingresa un correo válido",
	"avatar": "Ingresa una URL válida",
}

// Handler serves the profile page.
type Handler struct {
	logger    *slog.Logger
	renderer  *view.Renderer
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, renderer *view.Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, renderer: renderer, validator: validator.New()}
}

// MountRoutes registers the profile routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.showProfile)
	r.Post(Path, h.handleUpdate)
	r.Post(Path+"/preferences", h.handlePreferences)
	r.Post(Path+"/password", h.handlePasswordRequest)
	r.Post(Path+"/2fa", h.handleTwoFactor)
}

type profileForm struct {
	Name   string `validate:"required,max=80"`
	Email  string `validate:"required,email"`
	Avatar string `validate:"omitempty,url,max=512"`
}

type languageOption struct {
	Code  string
	Label string
}

type pageData struct {
	User      auth.User
	Theme     string
	Language  string
	Languages []languageOption
	Errors    map[string]string
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.StoreFromContext(r.Context()).User()
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	h.render(w, r, http.StatusOK, user, nil)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	store := auth.StoreFromContext(r.Context())
	current, ok := store.User()
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	form := profileForm{
		Name:   strings.TrimSpace(r.PostFormValue("name")),
		Email:  strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Avatar: strings.TrimSpace(r.PostFormValue("avatar")),
	}
	if err := h.validator.Struct(form); err != nil {
		draft := current
		draft.Name, draft.Email, draft.Avatar = form.Name, form.Email, form.Avatar
		h.render(w, r, http.StatusBadRequest, draft, view.FieldErrors(err, fieldMessages))
		return
	}
	if form.Name == current.Name && form.Email == current.Email && form.Avatar == current.Avatar {
		flash(r, shared.FlashInfo, "No hay cambios que guardar")
		http.Redirect(w, r, Path, http.StatusSeeOther)
		return
	}

	_, err := store.UpdateUser(r.Context(), auth.UserPatch{Name: &form.Name, Email: &form.Email, Avatar: &form.Avatar})
	switch {
	case errors.Is(err, auth.ErrInvalidIdentifier):
		h.render(w, r, http.StatusBadRequest, current, map[string]string{"email": fieldMessages["email"]})
		return
	case errors.Is(err, auth.ErrStoreClosed), errors.Is(err, auth.ErrNotInitialized):
		h.logger.Error("update profile", slog.Any("error", err))
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión no está disponible.")
		return
	case err != nil:
		h.logger.Warn("update profile audit", slog.Any("error", err))
	}
	flash(r, shared.FlashSuccess, "Perfil actualizado")
	http.Redirect(w, r, Path, http.StatusSeeOther)
}

func (h *Handler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión no está disponible.")
		return
	}
	before := preferences.Load(sess)
	next := before
	next.Theme = strings.TrimSpace(r.PostFormValue("theme"))
	if raw := r.PostFormValue("language"); raw != "" {
		tag, err := preferences.MatchLanguage(raw)
		if err != nil {
			flash(r, shared.FlashError, "Idioma no soportado")
			http.Redirect(w, r, Path, http.StatusSeeOther)
			return
		}
		next.Language = tag
	}
	if err := preferences.Save(sess, next); err != nil {
		flash(r, shared.FlashError, "Tema no soportado")
		http.Redirect(w, r, Path, http.StatusSeeOther)
		return
	}

	store := auth.StoreFromContext(r.Context())
	user, _ := store.User()
	if err := store.Record(r.Context(), audit.ActionPreferencesUpdated, "user", user.ID, "Preferencias actualizadas",
		snapshot(before), snapshot(next)); err != nil {
		h.logger.Warn("record preferences", slog.Any("error", err))
	}
	flash(r, shared.FlashSuccess, "Preferencias guardadas")
	http.Redirect(w, r, Path, http.StatusSeeOther)
}

func (h *Handler) handlePasswordRequest(w http.ResponseWriter, r *http.Request) {
	h.securityAction(w, r, audit.ActionPasswordRequested, "Solicitud de cambio de contraseña", "Te enviamos un correo para cambiar tu contraseña")
}

func (h *Handler) handleTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.securityAction(w, r, audit.ActionTwoFactorEnabled, "Autenticación de dos factores habilitada", "2FA activado")
}

// securityAction records a security request; the console has no mailer or
// second factor, so the audit entry is the whole effect.
func (h *Handler) securityAction(w http.ResponseWriter, r *http.Request, action, details, message string) {
	store := auth.StoreFromContext(r.Context())
	user, ok := store.User()
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := store.Record(r.Context(), action, "user", user.ID, details, nil, nil); err != nil {
		h.logger.Error("record security action", slog.String("action", action), slog.Any("error", err))
		flash(r, shared.FlashError, "No se pudo registrar la solicitud")
	} else {
		flash(r, shared.FlashSuccess, message)
	}
	http.Redirect(w, r, Path, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, user auth.User, errs map[string]string) {
	prefs := preferences.Defaults()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		prefs = preferences.Load(sess)
	}
	languages := make([]languageOption, 0, len(preferences.Supported))
	for _, tag := range preferences.Supported {
		languages = append(languages, languageOption{Code: preferences.Code(tag), Label: preferences.Label(tag)})
	}
	h.renderer.Page(w, r, status, "pages/profile.html", "Mi perfil", pageData{
		User:      user,
		Theme:     prefs.Theme,
		Language:  preferences.Code(prefs.Language),
		Languages: languages,
		Errors:    errs,
	})
}

func snapshot(p preferences.Preferences) map[string]any {
	return map[string]any{"theme": p.Theme, "language": preferences.Code(p.Language)}
}

func flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}
