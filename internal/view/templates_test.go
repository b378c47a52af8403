package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderStatusWritesNothingOnFailure(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, http.StatusOK, "pages/missing.html", TemplateData{})
	assert.Error(t, err)
	assert.Empty(t, rr.Body.String())
}

func TestRenderPublicPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, engine.RenderStatus(rr, http.StatusNotFound, "pages/not_found.html", TemplateData{
		Title:       "No encontrado",
		CurrentPath: "/nope",
	}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "<code>/nope</code>")
	assert.Contains(t, rr.Body.String(), `data-theme="dark"`)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AM", Initials("ana maría lópez"))
	assert.Equal(t, "Á", Initials("ángel"))
	assert.Equal(t, "?", Initials("  "))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "PEN 12.345,50", Money(12345.5, "PEN"))
}

func TestRenderNode(t *testing.T) {
	out, err := RenderNode(g.Text("<b>"))
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;", string(out))

	out, err = RenderNode(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
