package navigation

import "github.com/artstock/console/internal/auth"

// Filter returns the part of tree visible to role. A section or item is
// visible when it lists no roles or lists role; sections left without items
// are dropped. The input is not modified.
func Filter(tree []Section, role auth.Role) []Section {
	out := make([]Section, 0, len(tree))
	for _, section := range tree {
		if !visibleTo(section.Roles, role) {
			continue
		}
		items := make([]Item, 0, len(section.Items))
		for _, item := range section.Items {
			if visibleTo(item.Roles, role) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		section.Items = items
		out = append(out, section)
	}
	return out
}

func visibleTo(roles []auth.Role, role auth.Role) bool {
	if len(roles) == 0 {
		return true
	}
	return role.In(roles...)
}

// MarkActive flags the item whose path equals path.
func MarkActive(sections []Section, path string) {
	for i := range sections {
		for j := range sections[i].Items {
			sections[i].Items[j].Active = sections[i].Items[j].Path == path
		}
	}
}

// ApplyBadges replaces fallback badges with live counts keyed by BadgeKey.
func ApplyBadges(sections []Section, counts Counts) {
	if counts == nil {
		return
	}
	for i := range sections {
		for j := range sections[i].Items {
			item := &sections[i].Items[j]
			if item.BadgeKey == "" {
				continue
			}
			if n, ok := counts[item.BadgeKey]; ok {
				item.Badge = n
			}
		}
	}
}
