package view

import (
	"log/slog"
	"net/http"

	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/navigation"
	"github.com/artstock/console/internal/preferences"
	"github.com/artstock/console/internal/shared"
)

// Shell is the chrome around signed-in pages.
type Shell struct {
	User          auth.User
	RealRole      auth.Role
	EffectiveRole auth.Role
	Previewing    bool
	Sections      []navigation.Section
	Theme         string
	Language      string
	// ViewAsRoles is offered to super admins in the preview switch.
	ViewAsRoles []auth.Role
}

// Renderer renders pages with their shell, flash message and CSRF token.
type Renderer struct {
	engine *Engine
	csrf   *shared.CSRFManager
	nav    *navigation.Service
	logger *slog.Logger
}

// NewRenderer constructs a Renderer. nav may be nil for public-only use.
func NewRenderer(engine *Engine, csrf *shared.CSRFManager, nav *navigation.Service, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{engine: engine, csrf: csrf, nav: nav, logger: logger}
}

// Token returns the request's CSRF token, issuing one if needed.
func (rd *Renderer) Token(r *http.Request) string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || rd.csrf == nil {
		return ""
	}
	token, err := rd.csrf.EnsureToken(sess)
	if err != nil {
		rd.logger.Error("issue csrf token", slog.Any("error", err))
		return ""
	}
	return token
}

// Page renders template name with the request's shell.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	td := TemplateData{
		Title:       title,
		CSRFToken:   rd.Token(r),
		CurrentPath: r.URL.Path,
		Shell:       rd.Shell(r),
		Data:        data,
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		td.Flash = sess.PopFlash()
	}
	if err := rd.engine.RenderStatus(w, status, name, td); err != nil {
		rd.logger.Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Error renders the generic error page.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.Page(w, r, status, "pages/error.html", http.StatusText(status), ErrorData{Status: status, Message: message})
}

// ErrorData feeds pages/error.html.
type ErrorData struct {
	Status  int
	Message string
}

// Shell builds the chrome for the signed-in user, or nil.
func (rd *Renderer) Shell(r *http.Request) *Shell {
	user, ok := auth.StoreFromContext(r.Context()).User()
	if !ok {
		return nil
	}
	prefs := preferences.Defaults()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		prefs = preferences.Load(sess)
	}
	shell := &Shell{
		User:          user,
		RealRole:      user.Role,
		EffectiveRole: user.Role,
		Theme:         prefs.Theme,
		Language:      preferences.Code(prefs.Language),
	}
	if user.Role == auth.RoleSuperAdmin {
		shell.ViewAsRoles = auth.AllRoles
	}
	if rd.nav != nil {
		nav := rd.nav.Build(r.Context(), user.Role, navigation.OverrideFromRequest(r), r.URL.Path)
		shell.EffectiveRole = nav.EffectiveRole
		shell.Previewing = nav.Previewing
		shell.Sections = nav.Sections
	}
	return shell
}
