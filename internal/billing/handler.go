// Package billing serves the invoice and collections list.
package billing

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Path is where the list lives.
const Path = "/billing"

// StatusChips are the invoice status filters.
var StatusChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todas"},
	{Value: fixtures.PaymentPending, Label: "Pendientes", Tone: "warning"},
	{Value: fixtures.PaymentOverdue, Label: "Vencidas", Tone: "danger"},
	{Value: fixtures.PaymentPartial, Label: "Parciales", Tone: "warning"},
	{Value: fixtures.PaymentPaid, Label: "Pagadas", Tone: "success"},
}

// Columns are the invoice grid columns.
var Columns = []grid.Column{
	{Key: "id", Header: "Factura", Sortable: true, Width: "110px"},
	{Key: "customerName", Header: "Cliente", Sortable: true},
	{Key: "product", Header: "Producto", Sortable: true},
	{Key: "period", Header: "Periodo"},
	{Key: "dueDate", Header: "Vence", Sortable: true, Render: view.DateCell("dueDate")},
	{Key: "amount", Header: "Monto", Sortable: true, Render: view.MoneyCell("amount", "currency")},
	{Key: "paidAmount", Header: "Abonado", Sortable: true, Render: view.MoneyCell("paidAmount", "currency")},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "subscriptionId", Header: "Suscripción", Hidden: true},
}

// Handler serves the billing page.
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

// MountRoutes registers the billing routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	search := strings.TrimSpace(q.Get("q"))

	matching := h.catalog.FilterInvoices(fixtures.InvoiceFilter{Search: search})
	invoices := h.catalog.FilterInvoices(fixtures.InvoiceFilter{Status: status, Search: search})
	filters := view.FilterQuery("status", status, "q", search)

	table := grid.Table{
		Path:         Path,
		Query:        filters,
		Columns:      Columns,
		Rows:         view.Rows(invoices),
		State:        grid.ParseState(q),
		EmptyMessage: "No hay facturas para mostrar",
	}
	data := view.ListData{
		Heading:     "Cobranza",
		Subtitle:    "Facturas emitidas y su estado de pago.",
		Chips:       grid.ChipBar(Path, filters, "status", view.Chips(StatusChips, fixtures.InvoiceCounts(matching), len(matching), status)),
		Path:        Path,
		Keep:        view.FilterQuery("status", status),
		Search:      search,
		Placeholder: "Buscar por factura, cliente o producto",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Cobranza", data)
}
