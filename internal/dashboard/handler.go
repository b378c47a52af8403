// Package dashboard serves the operator home page.
package dashboard

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artstock/console/internal/billing"
	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Handler serves the dashboard.
type Handler struct {
	logger   *slog.Logger
	catalog  *fixtures.Catalog
	renderer *view.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, catalog *fixtures.Catalog, renderer *view.Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, catalog: catalog, renderer: renderer}
}

// MountRoutes registers the dashboard route. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleDashboard)
}

type pageData struct {
	KPIs    []view.KPI
	Pending view.ListData
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("q"))
	k := h.catalog.KPIs()

	pending := h.catalog.FilterInvoices(fixtures.InvoiceFilter{Outstanding: true, Search: search})
	table := grid.Table{
		Path:         "/",
		Query:        view.FilterQuery("q", search),
		Columns:      billing.Columns,
		Rows:         view.Rows(pending),
		State:        grid.ParseState(q),
		EmptyMessage: "No hay cobros pendientes",
	}
	data := pageData{
		KPIs: []view.KPI{
			{Title: "Suscripciones activas", Value: strconv.Itoa(k.ActiveSubscriptions), Tone: "success"},
			{Title: "Por vencer", Value: strconv.Itoa(k.ExpiringSubscriptions), Tone: "warning"},
			{Title: "Vencidas o suspendidas", Value: strconv.Itoa(k.OverdueSubscriptions + k.SuspendedSubscriptions), Tone: "danger"},
			{Title: "Clientes activos", Value: strconv.Itoa(k.ActiveCustomers), Hint: strconv.Itoa(k.FormerCustomers) + " inactivos"},
			{Title: "Por cobrar", Value: amounts(k.ToCollect), Hint: strconv.Itoa(k.PendingInvoices+k.OverdueInvoices) + " facturas abiertas", Tone: "warning"},
			{Title: "Cobrado", Value: amounts(k.Collected), Tone: "success"},
		},
		Pending: view.ListData{
			Heading:     "Cobros pendientes",
			Subtitle:    "Facturas pendientes, parciales y vencidas.",
			Path:        "/",
			Search:      search,
			Placeholder: "Buscar factura o cliente",
			Actions:     []view.Link{{Href: billing.Path, Label: "Ver cobranza"}},
			Grid:        table.Node(),
		},
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/dashboard.html", "Dashboard", data)
}

// amounts formats per-currency totals in a stable order.
func amounts(byCurrency map[string]float64) string {
	if len(byCurrency) == 0 {
		return view.Money(0, "PEN")
	}
	parts := make([]string, 0, len(byCurrency))
	for _, currency := range slices.Sorted(maps.Keys(byCurrency)) {
		parts = append(parts, view.Money(byCurrency[currency], currency))
	}
	return strings.Join(parts, " · ")
}
