package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleEntries() []Entry {
	return []Entry{
		{ID: "AUD-3", ActorEmail: "superadmin@artstock.demo", Action: ActionRoleChanged, EntityID: "USR-002", Details: "Rol cambiado a user"},
		{ID: "AUD-2", ActorEmail: "admin@artstock.demo", Action: ActionSettingsUpdated, EntityID: "company", Details: "Configuración de empresa actualizada"},
		{ID: "AUD-1", ActorEmail: "admin@artstock.demo", Action: ActionLoginSuccess, EntityID: "USR-X", Details: "Usuario inició sesión"},
	}
}

func TestApplyByAction(t *testing.T) {
	got := Apply(sampleEntries(), Filter{Action: ActionSettingsUpdated})
	assert.Len(t, got, 1)
	assert.Equal(t, "AUD-2", got[0].ID)

	assert.Len(t, Apply(sampleEntries(), Filter{Action: ActionAll}), 3)
	assert.Len(t, Apply(sampleEntries(), Filter{}), 3)
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	got := Apply(sampleEntries(), Filter{Search: "SUPERADMIN"})
	assert.Len(t, got, 1)

	got = Apply(sampleEntries(), Filter{Search: "usr-"})
	assert.Len(t, got, 2)
	assert.Equal(t, "AUD-3", got[0].ID)

	got = Apply(sampleEntries(), Filter{Action: ActionLoginSuccess, Search: "empresa"})
	assert.Empty(t, got)
}

func TestChips(t *testing.T) {
	chips := Chips(sampleEntries(), "")
	assert.Len(t, chips, 4)
	assert.Equal(t, ActionAll, chips[0].Value)
	assert.Equal(t, 3, chips[0].Count)
	assert.True(t, chips[0].Active)
	for _, c := range chips[1:] {
		assert.Equal(t, 1, c.Count, c.Value)
		assert.False(t, c.Active)
	}
}

func TestActionLabel(t *testing.T) {
	assert.Equal(t, "Cambio de rol", ActionLabel(ActionRoleChanged))
	assert.Equal(t, "custom_action", ActionLabel("custom_action"))
	assert.Equal(t, []string{ActionLoginSuccess, ActionRoleChanged, ActionSettingsUpdated}, Actions(sampleEntries()))
}
