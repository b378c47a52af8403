package auth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var demoNames = map[string]string{
	"superadmin@artstock.demo": "Carlos Mendoza",
	"admin@artstock.demo":      "María García",
	"user@artstock.demo":       "Pedro Torres",
}

// DisplayName resolves the name shown for a signing-in user: an explicit
// name wins, then the directory name, then the demo table, then a name
// derived from the address local part ("ana.perez" -> "Ana Perez").
func DisplayName(email, explicit, directory string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if name := strings.TrimSpace(directory); name != "" {
		return name
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if name, ok := demoNames[email]; ok {
		return name
	}
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	// Casers carry state and are not shared across goroutines.
	return cases.Title(language.Spanish, cases.NoLower).String(local)
}
