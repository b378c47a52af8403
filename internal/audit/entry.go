// Package audit keeps the append-only, newest-first log of privileged
// actions for one browser profile.
package audit

import (
	"strings"
	"time"
)

// MaxEntries bounds the persisted log; older entries are dropped on append.
const MaxEntries = 500

// Actions recorded by the console.
const (
	ActionLoginSuccess       = "login_success"
	ActionLogout             = "logout"
	ActionProfileUpdated     = "profile_updated"
	ActionPreferencesUpdated = "preferences_updated"
	ActionSettingsUpdated    = "settings_updated"
	ActionRoleChanged        = "role_changed"
	ActionUserStatusChanged  = "user_status_changed"
	ActionPasswordRequested  = "password_change_requested"
	ActionTwoFactorEnabled   = "2fa_enabled"
	ActionRoleSwitchedDemo   = "role_switched_demo"
	ActionPaymentRecorded    = "payment_recorded"
	ActionCredentialsRotated = "credentials_rotated"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	ActorEmail string         `json:"actorEmail"`
	ActorRole  string         `json:"actorRole"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Details    string         `json:"details"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
}

// Actor identifies who performed an action.
type Actor struct {
	Email string
	Role  string
}

// IsZero reports whether no actor is present.
func (a Actor) IsZero() bool {
	return strings.TrimSpace(a.Email) == ""
}

var actionLabels = map[string]string{
	ActionLoginSuccess:       "Inicio de sesión",
	ActionLogout:             "Cierre de sesión",
	ActionProfileUpdated:     "Perfil actualizado",
	ActionPreferencesUpdated: "Preferencias",
	ActionSettingsUpdated:    "Configuración",
	ActionRoleChanged:        "Cambio de rol",
	ActionUserStatusChanged:  "Estado de usuario",
	ActionPasswordRequested:  "Cambio de contraseña",
	ActionTwoFactorEnabled:   "2FA habilitado",
	ActionRoleSwitchedDemo:   "Demo: Rol cambiado",
	ActionPaymentRecorded:    "Pago registrado",
	ActionCredentialsRotated: "Credenciales rotadas",
}

// ActionLabel returns the display label for an action, or the action itself.
func ActionLabel(action string) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return action
}
