package inventory

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/testing/sessiontest"
	"github.com/artstock/console/internal/view"
)

var today = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (chi.Router, *fixtures.Catalog) {
	t.Helper()
	catalog, err := fixtures.Generate(7, today)
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewHandler(nil, catalog, view.NewRenderer(engine, shared.NewCSRFManager("secret"), nil, nil))
	h.now = func() time.Time { return today }
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, catalog
}

func rotatable(t *testing.T, catalog *fixtures.Catalog) fixtures.InventoryItem {
	t.Helper()
	for _, it := range catalog.Inventory() {
		if it.Shared() && len(fixtures.DefaultRotation(it)) > 0 {
			return it
		}
	}
	t.Fatal("no shared account with assigned slots")
	return fixtures.InventoryItem{}
}

func TestListTabs(t *testing.T) {
	r, catalog := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/inventory?size=100", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, it := range catalog.Inventory() {
		marker := `data-key="` + it.ID + `"`
		if it.Shared() {
			assert.Contains(t, body, marker)
		} else {
			assert.NotContains(t, body, marker)
		}
	}
	assert.Contains(t, body, `href="/inventory?type=individual"`)

	rr = sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/inventory?type=individual&status=available&size=100", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	body = rr.Body.String()
	for _, it := range catalog.Inventory() {
		marker := `data-key="` + it.ID + `"`
		if !it.Shared() && it.Status == fixtures.InventoryAvailable {
			assert.Contains(t, body, marker)
		} else {
			assert.NotContains(t, body, marker)
		}
	}
}

func TestExpandedAccountShowsSlotsAndHistory(t *testing.T) {
	r, catalog := setup(t)
	item := rotatable(t, catalog)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/inventory?size=100&open="+item.ID, nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `action="/inventory/`+item.ID+`/rotate"`)
	assert.Contains(t, body, `class="slot-table"`)
	for _, id := range fixtures.DefaultRotation(item) {
		assert.Contains(t, body, `name="slot" value="`+id+`"`)
	}
	assert.Contains(t, body, "Historial de accesos")
	assert.Contains(t, body, `name="csrf_token"`)
}

func TestRotateCredentials(t *testing.T) {
	r, catalog := setup(t)
	item := rotatable(t, catalog)
	slots := fixtures.DefaultRotation(item)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	form := url.Values{"slot": slots, "next": {"/inventory?open=" + item.ID}}
	rr := sessiontest.Serve(r, sessiontest.PostForm("/inventory/"+item.ID+"/rotate", form), sess, store)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/inventory?open="+item.ID, rr.Header().Get("Location"))

	entry := sessiontest.Entries(t, sess)[0]
	assert.Equal(t, audit.ActionCredentialsRotated, entry.Action)
	assert.Equal(t, "inventory", entry.EntityType)
	assert.Equal(t, item.ID, entry.EntityID)
	assert.Len(t, entry.After["subscriptions"], len(slots))
	assert.Contains(t, entry.After["username"], "@gmail.com")

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)
	assert.Contains(t, flash.Message, "notificación enviada")
}

func TestRotateCredentialsRejected(t *testing.T) {
	r, catalog := setup(t)
	item := rotatable(t, catalog)
	var individual string
	for _, it := range catalog.Inventory() {
		if !it.Shared() {
			individual = it.ID
			break
		}
	}
	cases := map[string]struct {
		id   string
		form url.Values
	}{
		"nothing selected": {item.ID, url.Values{}},
		"unknown slot":     {item.ID, url.Values{"slot": {item.ID + "-S99"}}},
		"individual":       {individual, url.Values{"slot": {"x"}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
			rr := sessiontest.Serve(r, sessiontest.PostForm("/inventory/"+tc.id+"/rotate", tc.form), sess, store)

			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/inventory", rr.Header().Get("Location"))
			flash := sess.PopFlash()
			require.NotNil(t, flash)
			assert.Equal(t, shared.FlashError, flash.Kind)
			assert.Equal(t, audit.ActionLoginSuccess, sessiontest.Entries(t, sess)[0].Action, "nothing audited")
		})
	}
}

func TestRotateUnknownAccount(t *testing.T) {
	r, _ := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(r, sessiontest.PostForm("/inventory/INV-NONE/rotate", url.Values{"slot": {"x"}}), sess, store)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "INV-NONE")
}
