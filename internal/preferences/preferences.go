// Package preferences reads and writes per-browser display preferences.
package preferences

import (
	"errors"
	"strings"

	"golang.org/x/text/language"

	"github.com/artstock/console/internal/storage"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ErrUnknownTheme is returned for themes other than dark and light.
var ErrUnknownTheme = errors.New("preferences: unknown theme")

// Supported lists the interface languages, default first.
var Supported = []language.Tag{language.Spanish, language.English, language.Portuguese}

var matcher = language.NewMatcher(Supported)

// Preferences are the display settings of one browser profile.
type Preferences struct {
	Theme    string       `json:"theme"`
	Language language.Tag `json:"language"`
}

// Defaults returns the preferences of a fresh profile.
func Defaults() Preferences {
	return Preferences{Theme: ThemeDark, Language: language.Spanish}
}

// Load reads preferences from kv, falling back to defaults for missing or
// unrecognised values.
func Load(kv storage.KV) Preferences {
	p := Defaults()
	if kv == nil {
		return p
	}
	if theme := kv.Get(storage.KeyTheme); theme == ThemeLight || theme == ThemeDark {
		p.Theme = theme
	}
	if raw := kv.Get(storage.KeyLanguage); raw != "" {
		if tag, err := MatchLanguage(raw); err == nil {
			p.Language = tag
		}
	}
	return p
}

// Save writes p to kv.
func Save(kv storage.KV, p Preferences) error {
	if p.Theme != ThemeDark && p.Theme != ThemeLight {
		return ErrUnknownTheme
	}
	kv.Set(storage.KeyTheme, p.Theme)
	kv.Set(storage.KeyLanguage, Code(p.Language))
	return nil
}

// MatchLanguage maps a BCP 47 tag or Accept-Language style list onto the
// closest supported language.
func MatchLanguage(raw string) (language.Tag, error) {
	tags, _, err := language.ParseAcceptLanguage(strings.TrimSpace(raw))
	if err != nil {
		return language.Und, err
	}
	if len(tags) == 0 {
		return language.Spanish, nil
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx], nil
}

// Code is the short language code stored and shown in the lang attribute.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Label is the display name of a supported language.
func Label(tag language.Tag) string {
	switch Code(tag) {
	case "en":
		return "English"
	case "pt":
		return "Português"
	}
	return "Español"
}
