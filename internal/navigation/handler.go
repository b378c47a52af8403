package navigation

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/platform/httpx"
	"github.com/artstock/console/internal/rbac"
	"github.com/artstock/console/internal/shared"
)

// Handler exposes the preview switch and the navigation API.
type Handler struct {
	service       *Service
	logger        *slog.Logger
	secureCookies bool
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, logger *slog.Logger, secureCookies bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger, secureCookies: secureCookies}
}

// MountRoutes registers the navigation endpoints.
func (h *Handler) MountRoutes(r chi.Router, guards rbac.Guards) {
	r.With(guards.RequireAuth, guards.RequireRole(auth.RoleSuperAdmin)).Post("/session/view-as", h.handleViewAs)
	r.With(guards.RequireAuth).Get("/api/navigation", h.handleAPI)
}

func (h *Handler) handleViewAs(w http.ResponseWriter, r *http.Request) {
	store := auth.StoreFromContext(r.Context())
	user, ok := store.User()
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var role auth.Role
	if raw := strings.TrimSpace(r.PostFormValue("role")); raw != "" && raw != "actual" {
		parsed, err := auth.ParseRole(raw)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		role = parsed
	}
	if role == user.Role {
		role = ""
	}
	SetOverride(w, role, h.secureCookies)

	shown := role
	if shown == "" {
		shown = user.Role
	}
	if err := store.Record(r.Context(), audit.ActionRoleSwitchedDemo, "session", user.ID, "Demo: Rol cambiado a "+string(shown), nil, nil); err != nil {
		h.logger.Error("record role preview", slog.Any("error", err))
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{
			Kind:    shared.FlashInfo,
			Message: "Demo: Ahora viendo como " + strings.ReplaceAll(string(shown), "_", " "),
		})
	}
	http.Redirect(w, r, shared.SafeRedirect(r.PostFormValue("next"), "/"), http.StatusSeeOther)
}

func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.StoreFromContext(r.Context()).User()
	if !ok {
		httpx.RespondError(w, r, httpx.ErrUnauthorized)
		return
	}
	view := h.service.Build(r.Context(), user.Role, OverrideFromRequest(r), r.URL.Query().Get("path"))
	httpx.JSON(w, http.StatusOK, view)
}
