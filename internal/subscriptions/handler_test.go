package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
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

func find(t *testing.T, catalog *fixtures.Catalog, payable bool) fixtures.Subscription {
	t.Helper()
	for _, s := range catalog.Subscriptions() {
		settled := s.Status == fixtures.StatusActive && s.PaymentStatus == fixtures.PaymentPaid
		if settled != payable {
			return s
		}
	}
	t.Fatalf("no subscription with payable=%v", payable)
	return fixtures.Subscription{}
}

func TestListFiltersByStatus(t *testing.T) {
	r, catalog := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/subscriptions?status=overdue&size=100", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	for _, s := range catalog.Subscriptions() {
		marker := `data-key="` + s.ID + `"`
		if s.Status == fixtures.StatusOverdue {
			assert.Contains(t, body, marker)
		} else {
			assert.NotContains(t, body, marker)
		}
	}
	assert.Contains(t, body, `href="/subscriptions?status=expiring"`)
}

func TestListSearchWithoutMatches(t *testing.T) {
	r, _ := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/subscriptions?q=zzzz-nada", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No hay suscripciones que coincidan")
}

func TestExpandedRowOffersPaymentForm(t *testing.T) {
	r, catalog := setup(t)
	sub := find(t, catalog, true)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/subscriptions?size=100&open="+sub.ID, nil), sess, store)

	body := rr.Body.String()
	assert.Contains(t, body, `action="/subscriptions/`+sub.ID+`/payments"`)
	assert.Contains(t, body, `name="csrf_token"`)
	assert.Contains(t, body, `href="/inventory?open=`+sub.InventoryID)
}

func TestRecordPayment(t *testing.T) {
	r, catalog := setup(t)
	sub := find(t, catalog, true)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	form := url.Values{"amount": {"25,50"}, "method": {"yape"}, "reference": {"OP-1"}, "next": {"/subscriptions?open=" + sub.ID}}
	rr := sessiontest.Serve(r, sessiontest.PostForm("/subscriptions/"+sub.ID+"/payments", form), sess, store)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/subscriptions?open="+sub.ID, rr.Header().Get("Location"))

	entry := sessiontest.Entries(t, sess)[0]
	assert.Equal(t, audit.ActionPaymentRecorded, entry.Action)
	assert.Equal(t, sub.ID, entry.EntityID)
	assert.Equal(t, "yape", entry.After["method"])
	assert.Equal(t, 25.5, entry.After["amount"])

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)
}

func TestRecordPaymentRejected(t *testing.T) {
	r, catalog := setup(t)
	cases := map[string]struct {
		id   string
		form url.Values
	}{
		"settled":    {find(t, catalog, false).ID, url.Values{"amount": {"10"}, "method": {"cash"}}},
		"bad amount": {find(t, catalog, true).ID, url.Values{"amount": {"-3"}, "method": {"cash"}}},
		"bad method": {find(t, catalog, true).ID, url.Values{"amount": {"10"}, "method": {"bitcoin"}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
			rr := sessiontest.Serve(r, sessiontest.PostForm("/subscriptions/"+tc.id+"/payments", tc.form), sess, store)

			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/subscriptions", rr.Header().Get("Location"))
			flash := sess.PopFlash()
			require.NotNil(t, flash)
			assert.Equal(t, shared.FlashError, flash.Kind)
			assert.Equal(t, audit.ActionLoginSuccess, sessiontest.Entries(t, sess)[0].Action, "nothing audited")
		})
	}
}

func TestRecordPaymentUnknownSubscription(t *testing.T) {
	r, _ := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	form := url.Values{"amount": {"10"}, "method": {"cash"}}
	rr := sessiontest.Serve(r, sessiontest.PostForm("/subscriptions/SUB-9999/payments", form), sess, store)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "SUB-9999"))
}
