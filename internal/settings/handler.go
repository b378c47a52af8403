package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/view"
)

// Path is the settings page.
const Path = "/settings"

var fieldMessages = map[string]string{
	"name":         "La razón social es obligatoria",
	"country":      "Usa el código de país de dos letras",
	"currency":     "Moneda no soportada",
	"billingemail": "Ingresa un correo de facturación válido",
	"taxrate":      "El impuesto debe estar entre 0 y 100",
}

// Handler serves the settings page.
type Handler struct {
	logger   *slog.Logger
	renderer *view.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, renderer *view.Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, renderer: renderer}
}

// MountRoutes registers the settings routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.showSettings)
	r.Post(Path+"/company", h.handleCompany)
	r.Post(Path+"/fiscal", h.handleFiscal)
	r.Post(Path+"/notifications", h.handleNotifications)
	r.Post(Path+"/team/{id}/role", h.handleRole)
	r.Post(Path+"/team/{id}/status", h.handleStatus)
}

type pageData struct {
	Settings       Settings
	Team           []Member
	Roles          []auth.Role
	Currencies     []string
	CanChangeRoles bool
	Errors         map[string]string
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión no está disponible.")
		return
	}
	h.render(w, r, http.StatusOK, Load(sess), nil)
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "company", "Configuración de empresa actualizada", func(s *Settings, form func(string) string) (before, after map[string]any) {
		before = s.Company.snapshot()
		s.Company = Company{
			Name:         strings.TrimSpace(form("name")),
			Country:      strings.ToUpper(strings.TrimSpace(form("country"))),
			Currency:     strings.ToUpper(strings.TrimSpace(form("currency"))),
			BillingEmail: strings.ToLower(strings.TrimSpace(form("billing_email"))),
		}
		return before, s.Company.snapshot()
	})
}

func (h *Handler) handleFiscal(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "fiscal", "Configuración fiscal actualizada", func(s *Settings, form func(string) string) (before, after map[string]any) {
		before = s.Fiscal.snapshot()
		rate, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(form("tax_rate")), ",", "."), 64)
		if err != nil {
			rate = -1
		}
		s.Fiscal = Fiscal{
			DeclarableFlow: form("declarable_flow") == "on",
			InternalFlow:   form("internal_flow") == "on",
			TaxRate:        rate,
		}
		return before, s.Fiscal.snapshot()
	})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "notifications", "Preferencias de notificaciones actualizadas", func(s *Settings, form func(string) string) (before, after map[string]any) {
		before = s.Notifications.snapshot()
		s.Notifications = Notifications{
			PaymentOverdue:        form("payment_overdue") == "on",
			ExpiringSubscriptions: form("expiring_subscriptions") == "on",
			LowInventory:          form("low_inventory") == "on",
		}
		return before, s.Notifications.snapshot()
	})
}

// update applies one section form, persists it and records settings_updated
// with the section's before and after values.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, section, details string, apply func(*Settings, func(string) string) (map[string]any, map[string]any)) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión no está disponible.")
		return
	}
	current := Load(sess)
	before, after := apply(&current, r.PostFormValue)
	if err := Save(sess, current); err != nil {
		if !errors.Is(err, ErrInvalidSettings) {
			h.logger.Error("save settings", slog.String("section", section), slog.Any("error", err))
		}
		h.render(w, r, http.StatusBadRequest, current, view.FieldErrors(err, fieldMessages))
		return
	}
	if err := auth.StoreFromContext(r.Context()).Record(r.Context(), audit.ActionSettingsUpdated, "settings", section, details, before, after); err != nil {
		h.logger.Warn("record settings", slog.Any("error", err))
	}
	flash(r, shared.FlashSuccess, "Configuración guardada")
	http.Redirect(w, r, Path, http.StatusSeeOther)
}

func (h *Handler) handleRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	store := auth.StoreFromContext(r.Context())
	if !store.HasRole(auth.RoleSuperAdmin) {
		flash(r, shared.FlashError, "Solo Super Admin puede cambiar roles")
		http.Redirect(w, r, Path, http.StatusSeeOther)
		return
	}
	role, err := auth.ParseRole(r.PostFormValue("role"))
	if err != nil {
		flash(r, shared.FlashError, "Rol no válido")
		http.Redirect(w, r, Path, http.StatusSeeOther)
		return
	}
	h.updateMember(w, r, func(m *Member) { m.Role = role }, audit.ActionRoleChanged,
		func(Member) string { return "Rol cambiado a " + string(role) }, "Rol actualizado")
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.updateMember(w, r, func(m *Member) {
		if m.Status == StatusActive {
			m.Status = StatusInactive
		} else {
			m.Status = StatusActive
		}
	}, audit.ActionUserStatusChanged, func(m Member) string {
		return fmt.Sprintf("Estado de usuario cambiado a %s", m.Status)
	}, "Estado de usuario actualizado")
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request, fn func(*Member), action string, details func(Member) string, message string) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión no está disponible.")
		return
	}
	id := chi.URLParam(r, "id")
	team := LoadTeam(sess)
	before, after, err := UpdateMember(team, id, fn)
	if errors.Is(err, ErrMemberNotFound) {
		h.renderer.Error(w, r, http.StatusNotFound, "El usuario "+id+" no existe.")
		return
	}
	if err := SaveTeam(sess, team); err != nil {
		h.logger.Error("save team", slog.Any("error", err))
		h.renderer.Error(w, r, http.StatusInternalServerError, "No se pudo guardar el equipo.")
		return
	}
	if err := auth.StoreFromContext(r.Context()).Record(r.Context(), action, "user", id, details(after), before.Snapshot(), after.Snapshot()); err != nil {
		h.logger.Warn("record team change", slog.Any("error", err))
	}
	flash(r, shared.FlashSuccess, message)
	http.Redirect(w, r, Path, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, s Settings, errs map[string]string) {
	sess := shared.SessionFromContext(r.Context())
	h.renderer.Page(w, r, status, "pages/settings.html", "Configuración", pageData{
		Settings:       s,
		Team:           LoadTeam(sess),
		Roles:          auth.AllRoles,
		Currencies:     Currencies,
		CanChangeRoles: auth.StoreFromContext(r.Context()).HasRole(auth.RoleSuperAdmin),
		Errors:         errs,
	})
}

func flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}
