// Package products serves the product list derived from subscriptions and
// stock.
package products

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Path is where the list lives.
const Path = "/products"

var typeChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todos"},
	{Value: fixtures.TypeIndividual, Label: "Individual (1:1)"},
	{Value: fixtures.TypeShared, Label: "Compartido (1:N)", Tone: "info"},
}

// Columns are the product grid columns.
var Columns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true, Width: "100px"},
	{Key: "name", Header: "Producto", Sortable: true},
	{Key: "type", Header: "Tipo", Sortable: true},
	{Key: "totalQty", Header: "Stock", Sortable: true},
	{Key: "available", Header: "Disponibles", Sortable: true},
	{Key: "sold", Header: "Vendidos", Sortable: true},
	{Key: "expiring", Header: "Por vencer", Sortable: true},
	{Key: "defaultPrice", Header: "Precio", Sortable: true, Render: view.MoneyCell("defaultPrice", "currency")},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "sku", Header: "SKU", Hidden: true},
	{Key: "provider", Header: "Proveedor", Hidden: true},
}

// Handler serves the products page.
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

// MountRoutes registers the product routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := strings.TrimSpace(q.Get("type"))
	search := strings.TrimSpace(q.Get("q"))

	all := h.catalog.Products()
	matching := fixtures.FilterProducts(all, fixtures.ProductFilter{Search: search})
	items := fixtures.FilterProducts(all, fixtures.ProductFilter{Type: kind, Search: search})
	filters := view.FilterQuery("type", kind, "q", search)

	table := grid.Table{
		Path:         Path,
		Query:        filters,
		Columns:      Columns,
		Rows:         view.Rows(items),
		State:        grid.ParseState(q),
		Expand:       detail,
		EmptyMessage: "No hay productos que coincidan",
	}
	data := view.ListData{
		Heading:     "Productos",
		Subtitle:    strconv.Itoa(len(all)) + " productos en catálogo.",
		Chips:       grid.ChipBar(Path, filters, "type", view.Chips(typeChips, fixtures.ProductCounts(matching), len(matching), kind)),
		Path:        Path,
		Keep:        view.FilterQuery("type", kind),
		Search:      search,
		Placeholder: "Buscar por nombre o SKU",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Productos", data)
}

func detail(row grid.Row) g.Node {
	p, ok := row.(fixtures.Product)
	if !ok {
		return nil
	}
	item := func(label, value string) []g.Node {
		return []g.Node{html.Dt(g.Text(label)), html.Dd(g.Text(value))}
	}
	var items []g.Node
	items = append(items, item("SKU", p.SKU)...)
	items = append(items, item("Proveedor", p.Provider)...)
	items = append(items, item("Disponibles", strconv.Itoa(p.Available)+" de "+strconv.Itoa(p.TotalQty))...)
	items = append(items, item("Suscripciones", strconv.Itoa(p.Sold))...)
	return html.Div(html.Class("detail"),
		html.Dl(append([]g.Node{html.Class("detail-list")}, items...)...),
		html.A(html.Class("btn btn-sm"), html.Href("/subscriptions?q="+url.QueryEscape(p.Name)), g.Text("Ver suscripciones")),
		html.A(html.Class("btn btn-sm btn-ghost"), html.Href("/inventory?q="+url.QueryEscape(p.Name)), g.Text("Ver inventario")),
	)
}
