// Package portal serves the customer self-service pages.
package portal

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"

	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Section names.
const (
	SectionHome          = "home"
	SectionSubscriptions = "subscriptions"
	SectionPayments      = "payments"
	SectionSupport       = "support"
)

var subscriptionColumns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true},
	{Key: "product", Header: "Producto", Sortable: true},
	{Key: "plan", Header: "Plan"},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "expiryDate", Header: "Vence", Sortable: true, Render: view.DateCell("expiryDate")},
	{Key: "amount", Header: "Monto", Render: view.MoneyCell("amount", "currency")},
}

var invoiceColumns = []grid.Column{
	{Key: "id", Header: "Factura", Sortable: true},
	{Key: "product", Header: "Producto"},
	{Key: "period", Header: "Periodo"},
	{Key: "dueDate", Header: "Vence", Sortable: true, Render: view.DateCell("dueDate")},
	{Key: "amount", Header: "Monto", Render: view.MoneyCell("amount", "currency")},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
}

// Handler serves /portal and its sections.
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

// MountRoutes registers the portal routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/portal", h.section(SectionHome))
	r.Get("/portal/subscriptions", h.section(SectionSubscriptions))
	r.Get("/portal/payments", h.section(SectionPayments))
	r.Get("/portal/support", h.section(SectionSupport))
	r.Get("/portal/*", h.handleUnknown)
}

type pageData struct {
	Heading string
	Section string
	KPIs    []view.KPI
	Grid    g.Node
}

func (h *Handler) section(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.StoreFromContext(r.Context()).User()
		customer, known := h.catalog.CustomerByEmail(user.Email)
		var subs []fixtures.Subscription
		var invoices []fixtures.Invoice
		if known {
			subs = h.catalog.FilterSubscriptions(fixtures.SubscriptionFilter{CustomerID: customer.ID})
			invoices = h.catalog.FilterInvoices(fixtures.InvoiceFilter{CustomerID: customer.ID})
		}

		data := pageData{Section: name}
		state := grid.ParseState(r.URL.Query())
		switch name {
		case SectionHome:
			data.Heading = "Mi portal"
			open := 0
			for _, inv := range invoices {
				if inv.Status != fixtures.PaymentPaid {
					open++
				}
			}
			data.KPIs = []view.KPI{
				{Title: "Suscripciones", Value: strconv.Itoa(len(subs)), Tone: "success"},
				{Title: "Por vencer", Value: strconv.Itoa(fixtures.SubscriptionCounts(subs)[fixtures.StatusExpiring]), Tone: "warning"},
				{Title: "Facturas abiertas", Value: strconv.Itoa(open), Tone: "danger"},
			}
		case SectionSubscriptions:
			data.Heading = "Mis suscripciones"
			data.Grid = grid.Table{
				Path: r.URL.Path, Columns: subscriptionColumns, Rows: view.Rows(subs), State: state,
				HideColumnToggle: true, EmptyMessage: "Aún no tienes suscripciones",
			}.Node()
		case SectionPayments:
			data.Heading = "Mis pagos"
			data.Grid = grid.Table{
				Path: r.URL.Path, Columns: invoiceColumns, Rows: view.Rows(invoices), State: state,
				HideColumnToggle: true, EmptyMessage: "No tienes facturas emitidas",
			}.Node()
		case SectionSupport:
			data.Heading = "Soporte"
		}
		h.renderer.Page(w, r, http.StatusOK, "pages/portal.html", data.Heading, data)
	}
}

func (h *Handler) handleUnknown(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusNotFound, "pages/not_found.html", "Página no encontrada", nil)
}
