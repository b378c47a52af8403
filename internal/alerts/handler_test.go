package alerts

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/testing/sessiontest"
	"github.com/artstock/console/internal/view"
)

func setup(t *testing.T) (chi.Router, *fixtures.Catalog) {
	t.Helper()
	catalog, err := fixtures.Generate(7, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewHandler(nil, catalog, view.NewRenderer(engine, shared.NewCSRFManager("secret"), nil, nil))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, catalog
}

func TestListFiltersByType(t *testing.T) {
	r, catalog := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/alerts?type=invoice_overdue&size=100", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, a := range catalog.Alerts() {
		marker := `data-key="` + a.ID + `"`
		if a.Type == fixtures.AlertInvoiceOverdue {
			assert.Contains(t, body, marker)
		} else {
			assert.NotContains(t, body, marker)
		}
	}
}

func TestMarkReadThenFilterUnread(t *testing.T) {
	r, catalog := setup(t)
	target := catalog.Alerts()[0]
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	form := url.Values{"id": {target.ID}, "next": {"/alerts?read=unread"}}
	rr := sessiontest.Serve(r, sessiontest.PostForm("/alerts/read", form), sess, store)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/alerts?read=unread", rr.Header().Get("Location"))
	assert.True(t, Load(sess).IsRead(target.ID))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)

	rr = sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/alerts?read=unread&size=100", nil), sess, store)
	assert.NotContains(t, rr.Body.String(), `data-key="`+target.ID+`"`)
	rr = sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/alerts?read=read&size=100", nil), sess, store)
	assert.Contains(t, rr.Body.String(), `data-key="`+target.ID+`"`)
}

func TestMarkAllRead(t *testing.T) {
	r, catalog := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, sessiontest.PostForm("/alerts/read", url.Values{"all": {"on"}}), sess, store)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	st := Load(sess)
	for _, a := range catalog.Alerts() {
		assert.True(t, st.IsRead(a.ID), a.ID)
	}
}

func TestDismissHidesAlert(t *testing.T) {
	r, catalog := setup(t)
	target := catalog.Alerts()[0]
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, sessiontest.PostForm("/alerts/dismiss", url.Values{"id": {target.ID}}), sess, store)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/alerts", rr.Header().Get("Location"))

	rr = sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/alerts?size=100", nil), sess, store)
	assert.NotContains(t, rr.Body.String(), `data-key="`+target.ID+`"`)

	sess.PopFlash()
	rr = sessiontest.Serve(r, sessiontest.PostForm("/alerts/dismiss", url.Values{"id": {target.ID}}), sess, store)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashError, flash.Kind, "dismissed alerts cannot be acted on again")
}

func TestUnknownAlertIsNotStored(t *testing.T) {
	r, _ := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, sessiontest.PostForm("/alerts/read", url.Values{"id": {"ALT-NONE"}}), sess, store)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Empty(t, Load(sess).Read)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashError, flash.Kind)
}
