// Package settings keeps the company configuration and team roster of one
// browser profile.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/storage"
)

var (
	// ErrMemberNotFound is returned for unknown team member ids.
	ErrMemberNotFound = errors.New("settings: team member not found")
	// ErrInvalidSettings wraps validation failures.
	ErrInvalidSettings = errors.New("settings: invalid settings")
)

// Currencies accepted for billing.
var Currencies = []string{"USD", "PEN", "MXN", "COP"}

// Company is the legal and billing identity.
type Company struct {
	Name         string `json:"name" validate:"required,max=120"`
	Country      string `json:"country" validate:"required,len=2"`
	Currency     string `json:"currency" validate:"required,oneof=USD PEN MXN COP"`
	BillingEmail string `json:"billingEmail" validate:"required,email"`
}

// Fiscal controls which flows are reported.
type Fiscal struct {
	DeclarableFlow bool    `json:"declarableFlow"`
	InternalFlow   bool    `json:"internalFlow"`
	TaxRate        float64 `json:"taxRate" validate:"gte=0,lte=100"`
}

// Notifications toggles operator alerts.
type Notifications struct {
	PaymentOverdue        bool `json:"paymentOverdue"`
	ExpiringSubscriptions bool `json:"expiringSubscriptions"`
	LowInventory          bool `json:"lowInventory"`
}

// Settings groups every configurable section.
type Settings struct {
	Company       Company       `json:"company"`
	Fiscal        Fiscal        `json:"fiscal"`
	Notifications Notifications `json:"notifications"`
}

// Member statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Member is one console operator on the team roster.
type Member struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   auth.Role `json:"role"`
	Status string    `json:"status"`
}

// Defaults returns the settings of a fresh profile.
func Defaults() Settings {
	return Settings{
		Company: Company{
			Name:         "Art Stock SAC",
			Country:      "PE",
			Currency:     "USD",
			BillingEmail: "facturacion@artstock.com",
		},
		Fiscal:        Fiscal{DeclarableFlow: true, TaxRate: 18},
		Notifications: Notifications{PaymentOverdue: true, ExpiringSubscriptions: true, LowInventory: true},
	}
}

// DefaultTeam returns the starting roster.
func DefaultTeam() []Member {
	return []Member{
		{ID: "USR-001", Name: "Carlos Mendoza", Email: "carlos@artstock.com", Role: auth.RoleSuperAdmin, Status: StatusActive},
		{ID: "USR-002", Name: "María García", Email: "maria@artstock.com", Role: auth.RoleAdmin, Status: StatusActive},
		{ID: "USR-003", Name: "Pedro Torres", Email: "pedro@artstock.com", Role: auth.RoleUser, Status: StatusActive},
		{ID: "USR-004", Name: "Ana López", Email: "ana@artstock.com", Role: auth.RoleUser, Status: StatusInactive},
	}
}

var validate = validator.New()

// Validate checks every section.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// Load reads settings from kv. Missing or unreadable records yield defaults.
func Load(kv storage.KV) Settings {
	out := Defaults()
	raw := kv.Get(storage.KeySettings)
	if raw == "" {
		return out
	}
	var stored Settings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.Validate() != nil {
		return out
	}
	return stored
}

// Save validates and writes s to kv.
func Save(kv storage.KV, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	kv.Set(storage.KeySettings, string(data))
	return nil
}

// LoadTeam reads the roster from kv, falling back to DefaultTeam.
func LoadTeam(kv storage.KV) []Member {
	raw := kv.Get(storage.KeyTeam)
	if raw == "" {
		return DefaultTeam()
	}
	var team []Member
	if err := json.Unmarshal([]byte(raw), &team); err != nil || len(team) == 0 {
		return DefaultTeam()
	}
	return team
}

// SaveTeam writes the roster to kv.
func SaveTeam(kv storage.KV, team []Member) error {
	data, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("settings: encode team: %w", err)
	}
	kv.Set(storage.KeyTeam, string(data))
	return nil
}

// UpdateMember applies fn to the member with id and returns the member
// before and after the change.
func UpdateMember(team []Member, id string, fn func(*Member)) (before, after Member, err error) {
	i := slices.IndexFunc(team, func(m Member) bool { return m.ID == id })
	if i < 0 {
		return Member{}, Member{}, ErrMemberNotFound
	}
	before = team[i]
	fn(&team[i])
	return before, team[i], nil
}

// Snapshot flattens a member for audit records.
func (m Member) Snapshot() map[string]any {
	return map[string]any{"id": m.ID, "name": m.Name, "email": m.Email, "role": string(m.Role), "status": m.Status}
}

func (c Company) snapshot() map[string]any {
	return map[string]any{"name": c.Name, "country": c.Country, "currency": c.Currency, "billingEmail": c.BillingEmail}
}

func (f Fiscal) snapshot() map[string]any {
	return map[string]any{"declarableFlow": f.DeclarableFlow, "internalFlow": f.InternalFlow, "taxRate": f.TaxRate}
}

func (n Notifications) snapshot() map[string]any {
	return map[string]any{
		"paymentOverdue":        n.PaymentOverdue,
		"expiringSubscriptions": n.ExpiringSubscriptions,
		"lowInventory":          n.LowInventory,
	}
}
