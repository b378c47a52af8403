package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artstock/console/internal/auth"
)

func labels(sections []Section) map[string][]string {
	out := make(map[string][]string)
	for _, s := range sections {
		for _, item := range s.Items {
			out[s.Title] = append(out[s.Title], item.Label)
		}
	}
	return out
}

func TestDefaultTreeParses(t *testing.T) {
	tree, err := DefaultTree()
	require.NoError(t, err)
	assert.Len(t, tree, 6)
}

func TestFilterOnlyKeepsAllowedEntries(t *testing.T) {
	tree, err := DefaultTree()
	require.NoError(t, err)

	for _, role := range auth.AllRoles {
		visible := Filter(tree, role)
		for _, section := range visible {
			assert.NotEmpty(t, section.Items, "section %s kept without items", section.Title)
			if len(section.Roles) > 0 {
				assert.Contains(t, section.Roles, role)
			}
			for _, item := range section.Items {
				if len(item.Roles) > 0 {
					assert.Contains(t, item.Roles, role, item.Label)
				}
			}
		}
	}
}

func TestFilterPerRole(t *testing.T) {
	tree, err := DefaultTree()
	require.NoError(t, err)

	super := labels(Filter(tree, auth.RoleSuperAdmin))
	assert.Contains(t, super["Sistema"], "Auditoría")
	assert.NotContains(t, super, "Portal")

	admin := labels(Filter(tree, auth.RoleAdmin))
	assert.Equal(t, []string{"Configuración", "Sistema"}, admin["Sistema"])

	user := Filter(tree, auth.RoleUser)
	require.Len(t, user, 1)
	assert.Equal(t, "Portal", user[0].Title)
	assert.Len(t, user[0].Items, 4)
}

func TestFilterDropsSectionsEmptiedByItemRoles(t *testing.T) {
	tree := []Section{
		{Title: "Solo super", Items: []Item{{Label: "Auditoría", Path: "/audit", Roles: []auth.Role{auth.RoleSuperAdmin}}}},
		{Title: "Abierta", Items: []Item{{Label: "Inicio", Path: "/"}}},
	}
	got := Filter(tree, auth.RoleAdmin)
	require.Len(t, got, 1)
	assert.Equal(t, "Abierta", got[0].Title)
	assert.Len(t, tree[0].Items, 1, "input must not be modified")
}

func TestMarkActiveAndBadges(t *testing.T) {
	tree, err := DefaultTree()
	require.NoError(t, err)
	visible := Filter(tree, auth.RoleAdmin)
	MarkActive(visible, "/subscriptions")
	ApplyBadges(visible, Counts{"subscriptions": 11})

	for _, s := range visible {
		for _, item := range s.Items {
			assert.Equal(t, item.Path == "/subscriptions", item.Active, item.Path)
			switch item.Path {
			case "/subscriptions":
				assert.Equal(t, 11, item.Badge)
			case "/billing":
				assert.Equal(t, 2, item.Badge)
			}
		}
	}
}

func TestParseTreeRejectsUnknownRole(t *testing.T) {
	_, err := ParseTree([]byte("- title: X\n  roles: [root]\n  items: [{label: A, path: /a}]\n"))
	assert.Error(t, err)
	_, err = ParseTree([]byte("- title: X\n  items: [{label: A, path: a}]\n"))
	assert.Error(t, err)
}
