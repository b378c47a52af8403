// Package navigation derives the sidebar shown to a role.
package navigation

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artstock/console/internal/auth"
)

//go:embed navigation.yaml
var defaultTree []byte

// Item is one navigation link.
type Item struct {
	Label    string      `yaml:"label" json:"label"`
	Path     string      `yaml:"path" json:"path"`
	Icon     string      `yaml:"icon" json:"icon"`
	Badge    int         `yaml:"badge,omitempty" json:"badge,omitempty"`
	BadgeKey string      `yaml:"badge_key,omitempty" json:"-"`
	Roles    []auth.Role `yaml:"roles,omitempty" json:"roles,omitempty"`
	Active   bool        `yaml:"-" json:"active,omitempty"`
}

// Section groups items under a heading.
type Section struct {
	Title string      `yaml:"title" json:"title"`
	Roles []auth.Role `yaml:"roles,omitempty" json:"roles,omitempty"`
	Items []Item      `yaml:"items" json:"items"`
}

// DefaultTree returns the console's navigation tree.
func DefaultTree() ([]Section, error) {
	return ParseTree(defaultTree)
}

// ParseTree decodes a YAML tree and rejects unknown roles.
func ParseTree(data []byte) ([]Section, error) {
	var tree []Section
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("navigation: decode tree: %w", err)
	}
	for _, section := range tree {
		if err := checkRoles(section.Title, section.Roles); err != nil {
			return nil, err
		}
		for _, item := range section.Items {
			if !strings.HasPrefix(item.Path, "/") {
				return nil, fmt.Errorf("navigation: item %q: path must be absolute", item.Label)
			}
			if err := checkRoles(item.Label, item.Roles); err != nil {
				return nil, err
			}
		}
	}
	return tree, nil
}

func checkRoles(owner string, roles []auth.Role) error {
	for _, role := range roles {
		if !role.Valid() {
			return fmt.Errorf("navigation: %q: unknown role %q", owner, role)
		}
	}
	return nil
}
