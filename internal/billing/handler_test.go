package billing

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

func setup(t *testing.T) (chi.Router, *fixtures.Catalog) {
	t.Helper()
	catalog, err := fixtures.Generate(11, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	r := chi.NewRouter()
	NewHandler(nil, catalog, view.NewRenderer(engine, shared.NewCSRFManager("secret"), nil, nil)).MountRoutes(r)
	return r, catalog
}

func TestListFiltersByStatus(t *testing.T) {
	r, catalog := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/billing?status=paid&size=100", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	for _, inv := range catalog.Invoices() {
		if inv.Status == fixtures.PaymentPaid {
			assert.Contains(t, body, `data-key="`+inv.ID+`"`)
		} else {
			assert.NotContains(t, body, `data-key="`+inv.ID+`"`)
		}
	}
}

func TestPageIsClampedAfterFiltering(t *testing.T) {
	r, _ := setup(t)
	sess, store := sessiontest.SignedIn(t, sessiontest.Admin)
	rr := sessiontest.Serve(r, httptest.NewRequest(http.MethodGet, "/billing?status=overdue&page=9", nil), sess, store)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Mostrando 1 - ")
}
