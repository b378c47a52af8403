// Package payments serves the payment ledger.
package payments

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Path is where the ledger lives.
const Path = "/payments"

var methodChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todos"},
	{Value: "card", Label: "Tarjeta"},
	{Value: "transfer", Label: "Transferencia"},
	{Value: "yape", Label: "Yape", Tone: "info"},
	{Value: "plin", Label: "Plin", Tone: "info"},
	{Value: "cash", Label: "Efectivo"},
}

var statusChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todos"},
	{Value: fixtures.PaymentConfirmed, Label: "Confirmados", Tone: "success"},
	{Value: fixtures.PaymentPending, Label: "Pendientes", Tone: "warning"},
}

// Columns are the ledger grid columns.
var Columns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true, Width: "100px"},
	{Key: "recordedAt", Header: "Fecha", Sortable: true, Render: view.DateCell("recordedAt")},
	{Key: "customerName", Header: "Cliente", Sortable: true},
	{Key: "amount", Header: "Monto", Sortable: true, Render: view.MoneyCell("amount", "currency")},
	{Key: "method", Header: "Método", Sortable: true},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "reference", Header: "Referencia"},
	{Key: "invoiceId", Header: "Factura", Hidden: true},
	{Key: "subscriptionId", Header: "Suscripción", Hidden: true},
}

// Handler serves the payments page.
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

// MountRoutes registers the payment routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	method := strings.TrimSpace(q.Get("method"))
	status := strings.TrimSpace(q.Get("status"))
	search := strings.TrimSpace(q.Get("q"))

	byMethod := h.catalog.FilterPayments(fixtures.PaymentFilter{Status: status, Search: search})
	byStatus := h.catalog.FilterPayments(fixtures.PaymentFilter{Method: method, Search: search})
	ledger := h.catalog.FilterPayments(fixtures.PaymentFilter{Method: method, Status: status, Search: search})
	filters := view.FilterQuery("method", method, "status", status, "q", search)

	table := grid.Table{
		Path:         Path,
		Query:        filters,
		Columns:      Columns,
		Rows:         view.Rows(ledger),
		State:        grid.ParseState(q),
		Expand:       receipt,
		RowClass:     rowClass,
		EmptyMessage: "No hay pagos que coincidan",
	}
	statusCounts := make(map[string]int)
	for _, p := range byStatus {
		statusCounts[p.Status]++
	}
	data := view.ListData{
		Heading:  "Pagos",
		Subtitle: summary(fixtures.TotalPayments(ledger)),
		Chips: g.Group([]g.Node{
			grid.ChipBar(Path, filters, "method", view.Chips(methodChips, fixtures.PaymentCounts(byMethod), len(byMethod), method)),
			grid.ChipBar(Path, filters, "status", view.Chips(statusChips, statusCounts, len(byStatus), status)),
		}),
		Path:        Path,
		Keep:        view.FilterQuery("method", method, "status", status),
		Search:      search,
		Placeholder: "Buscar por ID, cliente, referencia o factura",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Pagos", data)
}

// summary states the confirmed totals per currency and the pending count.
func summary(t fixtures.PaymentTotals) string {
	currencies := make([]string, 0, len(t.Confirmed))
	for c := range t.Confirmed {
		currencies = append(currencies, c)
	}
	slices.Sort(currencies)
	parts := make([]string, 0, len(currencies)+1)
	for _, c := range currencies {
		parts = append(parts, view.Money(t.Confirmed[c], c))
	}
	out := "Confirmado: " + grid.Missing
	if len(parts) > 0 {
		out = "Confirmado: " + strings.Join(parts, " + ")
	}
	return out + " · Pendientes de confirmar: " + strconv.Itoa(t.Pending)
}

func rowClass(row grid.Row) string {
	if p, ok := row.(fixtures.Payment); ok && p.Status == fixtures.PaymentPending {
		return "row-warning"
	}
	return ""
}

func receipt(row grid.Row) g.Node {
	p, ok := row.(fixtures.Payment)
	if !ok {
		return nil
	}
	field := func(label, value string) []g.Node {
		if value == "" {
			value = grid.Missing
		}
		return []g.Node{html.Dt(g.Text(label)), html.Dd(g.Text(value))}
	}
	var items []g.Node
	items = append(items, field("Recibo", p.ID)...)
	items = append(items, field("Cliente", p.CustomerName+" ("+p.CustomerID+")")...)
	items = append(items, field("Monto", view.Money(p.Amount, p.Currency))...)
	items = append(items, field("Método", fixtures.MethodLabel(p.Method))...)
	items = append(items, field("Referencia", p.Reference)...)
	items = append(items, field("Factura", p.InvoiceID)...)
	items = append(items, field("Suscripción", p.SubscriptionID)...)
	items = append(items, field("Fecha", p.RecordedAt.Format("02/01/2006 15:04"))...)
	return html.Div(html.Class("detail receipt"),
		html.Dl(append([]g.Node{html.Class("detail-list")}, items...)...),
		html.A(html.Class("btn btn-sm"), html.Href("/subscriptions?open="+p.SubscriptionID+"&q="+p.SubscriptionID), g.Text("Ver suscripción")),
	)
}
