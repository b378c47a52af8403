package payments

import (
	"net/http"
	"net/http/httptest"
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

var today = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (chi.Router, *fixtures.Catalog) {
	t.Helper()
	catalog, err := fixtures.Generate(7, today)
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewHandler(nil, catalog, view.NewRenderer(engine, shared.NewCSRFManager("secret"), nil, nil))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, catalog
}

func TestListFiltersByMethodAndStatus(t *testing.T) {
	r, catalog := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/payments?status=pending&size=100", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, p := range catalog.Payments() {
		marker := `data-key="` + p.ID + `"`
		if p.Status == fixtures.PaymentPending {
			assert.Contains(t, body, marker)
		} else {
			assert.NotContains(t, body, marker)
		}
	}
	assert.Contains(t, body, `href="/payments?method=card&amp;status=pending"`)

	rr = sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/payments?method=yape&size=100", nil), sess, store)
	body = rr.Body.String()
	for _, p := range catalog.Payments() {
		if p.Method != "yape" {
			assert.NotContains(t, body, `data-key="`+p.ID+`"`)
		}
	}
}

func TestSummaryShowsTotals(t *testing.T) {
	r, catalog := setup(t)
	totals := fixtures.TotalPayments(catalog.Payments())
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/payments", nil), sess, store)
	body := rr.Body.String()
	assert.Contains(t, body, "Confirmado: ")
	if usd, ok := totals.Confirmed["USD"]; ok {
		assert.Contains(t, body, view.Money(usd, "USD"))
	}
}

func TestExpandedPaymentShowsReceipt(t *testing.T) {
	r, catalog := setup(t)
	p := catalog.Payments()[0]
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)

	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/payments?open="+p.ID, nil), sess, store)
	body := rr.Body.String()
	assert.Contains(t, body, `class="detail receipt"`)
	assert.Contains(t, body, p.InvoiceID)
	assert.Contains(t, body, "/subscriptions?open="+p.SubscriptionID)
}

func TestSummaryWithoutConfirmedPayments(t *testing.T) {
	out := summary(fixtures.PaymentTotals{Confirmed: map[string]float64{}, Pending: 2})
	assert.Equal(t, "Confirmado: - · Pendientes de confirmar: 2", out)

	out = summary(fixtures.PaymentTotals{Confirmed: map[string]float64{"USD": 10, "PEN": 5}})
	assert.Equal(t, "Confirmado: "+view.Money(5, "PEN")+" + "+view.Money(10, "USD")+" · Pendientes de confirmar: 0", out)
}
