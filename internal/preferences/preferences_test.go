package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/artstock/console/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	p := Load(storage.NewMemoryKV())
	assert.Equal(t, ThemeDark, p.Theme)
	assert.Equal(t, "es", Code(p.Language))
}

func TestSaveAndLoad(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, Save(kv, Preferences{Theme: ThemeLight, Language: language.English}))
	assert.Equal(t, "light", kv.Get(storage.KeyTheme))
	assert.Equal(t, "en", kv.Get(storage.KeyLanguage))

	p := Load(kv)
	assert.Equal(t, ThemeLight, p.Theme)
	assert.Equal(t, "en", Code(p.Language))

	assert.ErrorIs(t, Save(kv, Preferences{Theme: "sepia"}), ErrUnknownTheme)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set(storage.KeyTheme, "neon")
	kv.Set(storage.KeyLanguage, "%%%")
	p := Load(kv)
	assert.Equal(t, Defaults().Theme, p.Theme)
	assert.Equal(t, "es", Code(p.Language))
}

func TestMatchLanguage(t *testing.T) {
	tag, err := MatchLanguage("pt-BR")
	require.NoError(t, err)
	assert.Equal(t, "pt", Code(tag))

	tag, err = MatchLanguage("de-DE,en;q=0.8")
	require.NoError(t, err)
	assert.Equal(t, "en", Code(tag))
}
