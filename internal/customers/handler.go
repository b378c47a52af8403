// Package customers serves the customer directory.
package customers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Path is where the list lives.
const Path = "/customers"

var typeChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todos"},
	{Value: "contact", Label: "Contactos"},
	{Value: "company", Label: "Empresas", Tone: "info"},
	{Value: "reseller", Label: "Resellers", Tone: "success"},
}

// Columns are the customer grid columns.
var Columns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true, Width: "100px"},
	{Key: "name", Header: "Nombre", Sortable: true},
	{Key: "email", Header: "Correo", Sortable: true},
	{Key: "phone", Header: "Teléfono", Hidden: true},
	{Key: "country", Header: "País", Sortable: true},
	{Key: "type", Header: "Tipo", Sortable: true, Render: view.StatusCell("type")},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "activeSubscriptions", Header: "Suscripciones", Sortable: true},
	{Key: "totalPaid", Header: "Total pagado", Sortable: true, Render: func(row grid.Row) g.Node {
		v, _ := row.Field("totalPaid")
		amount, _ := v.(float64)
		return g.Text(view.Money(amount, "PEN"))
	}},
	{Key: "paymentBehavior", Header: "Comportamiento", Hidden: true},
	{Key: "createdAt", Header: "Alta", Sortable: true, Render: view.DateCell("createdAt")},
}

// Handler serves the customers page.
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

// MountRoutes registers the customer routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := strings.TrimSpace(q.Get("type"))
	search := strings.TrimSpace(q.Get("q"))

	matching := h.catalog.FilterCustomers(fixtures.CustomerFilter{Search: search})
	customers := h.catalog.FilterCustomers(fixtures.CustomerFilter{Type: kind, Search: search})
	filters := view.FilterQuery("type", kind, "q", search)

	table := grid.Table{
		Path:         Path,
		Query:        filters,
		Columns:      Columns,
		Rows:         view.Rows(customers),
		State:        grid.ParseState(q),
		Expand:       h.detail,
		EmptyMessage: "No se encontraron clientes",
	}
	data := view.ListData{
		Heading:     "Clientes",
		Subtitle:    "Contactos, empresas y resellers.",
		Chips:       grid.ChipBar(Path, filters, "type", view.Chips(typeChips, fixtures.CustomerCounts(matching), len(matching), kind)),
		Path:        Path,
		Keep:        view.FilterQuery("type", kind),
		Search:      search,
		Placeholder: "Buscar por ID, nombre o correo",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Clientes", data)
}

// detail lists the customer's subscriptions.
func (h *Handler) detail(row grid.Row) g.Node {
	subs := h.catalog.FilterSubscriptions(fixtures.SubscriptionFilter{CustomerID: row.RowKey()})
	if len(subs) == 0 {
		return html.P(html.Class("muted"), g.Text("Sin suscripciones registradas."))
	}
	items := make([]g.Node, 0, len(subs))
	for _, s := range subs {
		items = append(items, html.Li(
			html.A(html.Href("/subscriptions?q="+s.ID+"&open="+s.ID), g.Text(s.ID)),
			g.Text(" "+s.Product+" · "+s.Plan+" · "),
			html.Span(html.Class("status status-"+s.Status), g.Text(fixtures.StatusLabel(s.Status))),
		))
	}
	return html.Ul(html.Class("detail-list"), g.Group(items))
}
