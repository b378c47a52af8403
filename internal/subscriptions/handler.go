// Package subscriptions serves the subscription list and payment capture.
package subscriptions

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/view"
)

// Path is where the list lives.
const Path = "/subscriptions"

var statusChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todas"},
	{Value: fixtures.StatusActive, Label: "Activas", Tone: "success"},
	{Value: fixtures.StatusExpiring, Label: "Por vencer", Tone: "warning"},
	{Value: fixtures.StatusOverdue, Label: "Vencidas", Tone: "danger"},
	{Value: fixtures.StatusSuspended, Label: "Suspendidas", Tone: "danger"},
}

// Columns are the subscription grid columns.
var Columns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true, Width: "110px"},
	{Key: "customerName", Header: "Cliente", Sortable: true},
	{Key: "product", Header: "Producto", Sortable: true},
	{Key: "plan", Header: "Plan", Sortable: true},
	{Key: "type", Header: "Tipo", Sortable: true},
	{Key: "slots", Header: "Cupos", Hidden: true},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "paymentStatus", Header: "Pago", Sortable: true, Render: view.StatusCell("paymentStatus")},
	{Key: "expiryDate", Header: "Vence", Sortable: true, Render: view.DateCell("expiryDate")},
	{Key: "amount", Header: "Monto", Sortable: true, Render: view.MoneyCell("amount", "currency")},
	{Key: "inventoryId", Header: "Inventario", Hidden: true},
}

// Handler serves the subscriptions pages.
type Handler struct {
	logger   *slog.Logger
	catalog  *fixtures.Catalog
	renderer *view.Renderer
	now      func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, catalog *fixtures.Catalog, renderer *view.Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, catalog: catalog, renderer: renderer, now: time.Now}
}

// MountRoutes registers the subscription routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
	r.Post(Path+"/{id}/payments", h.handleRecordPayment)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	search := strings.TrimSpace(q.Get("q"))

	matching := h.catalog.FilterSubscriptions(fixtures.SubscriptionFilter{Search: search})
	subs := h.catalog.FilterSubscriptions(fixtures.SubscriptionFilter{Status: status, Search: search})
	filters := view.FilterQuery("status", status, "q", search)

	token := h.renderer.Token(r)
	returnTo := r.URL.RequestURI()
	table := grid.Table{
		Path:    Path,
		Query:   filters,
		Columns: Columns,
		Rows:    view.Rows(subs),
		State:   grid.ParseState(q),
		Expand: func(row grid.Row) g.Node {
			sub, _ := row.(fixtures.Subscription)
			return detail(sub, token, returnTo)
		},
		RowClass:     rowClass,
		EmptyMessage: "No hay suscripciones que coincidan",
	}
	data := view.ListData{
		Heading:     "Suscripciones",
		Subtitle:    "Licencias activas, por vencer y suspendidas.",
		Chips:       grid.ChipBar(Path, filters, "status", view.Chips(statusChips, fixtures.SubscriptionCounts(matching), len(matching), status)),
		Path:        Path,
		Keep:        view.FilterQuery("status", status),
		Search:      search,
		Placeholder: "Buscar por ID, cliente o producto",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Suscripciones", data)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	back := shared.SafeRedirect(r.PostFormValue("next"), Path)
	sess := shared.SessionFromContext(r.Context())

	amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(r.PostFormValue("amount")), ",", "."), 64)
	if err != nil {
		amount = 0
	}
	payment, err := h.catalog.RecordPayment(fixtures.PaymentRequest{
		SubscriptionID: id,
		Amount:         amount,
		Method:         r.PostFormValue("method"),
		Reference:      r.PostFormValue("reference"),
	}, h.now())
	if errors.Is(err, fixtures.ErrSubscriptionNotFound) {
		h.renderer.Error(w, r, http.StatusNotFound, "La suscripción "+id+" no existe.")
		return
	}
	if err != nil {
		h.logger.Info("payment rejected", slog.String("subscription", id), slog.Any("error", err))
		flash(sess, shared.FlashError, paymentError(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	store := auth.StoreFromContext(r.Context())
	details := fmt.Sprintf("Pago %s de %s registrado", payment.ID, view.Money(payment.Amount, payment.Currency))
	after := map[string]any{
		"paymentId": payment.ID,
		"amount":    payment.Amount,
		"currency":  payment.Currency,
		"method":    payment.Method,
		"reference": payment.Reference,
	}
	if err := store.Record(r.Context(), audit.ActionPaymentRecorded, "subscription", payment.SubscriptionID, details, nil, after); err != nil {
		h.logger.Error("record payment audit", slog.Any("error", err))
	}
	flash(sess, shared.FlashSuccess, fmt.Sprintf("Pago registrado para %s (%s)", payment.SubscriptionID, view.Money(payment.Amount, payment.Currency)))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func paymentError(err error) string {
	switch {
	case errors.Is(err, fixtures.ErrPaymentNotAllowed):
		return "Esta suscripción está al día y no admite pagos."
	case errors.Is(err, fixtures.ErrInvalidPayment):
		return "Revisa el monto y el método de pago."
	default:
		return "No se pudo registrar el pago."
	}
}

func flash(sess *shared.Session, kind, message string) {
	if sess == nil {
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
}

func rowClass(row grid.Row) string {
	sub, ok := row.(fixtures.Subscription)
	if !ok {
		return ""
	}
	switch sub.Status {
	case fixtures.StatusOverdue, fixtures.StatusSuspended:
		return "row-danger"
	case fixtures.StatusExpiring:
		return "row-warning"
	}
	return ""
}

// inventoryLink opens the subscription's stock item on the matching tab.
func inventoryLink(sub fixtures.Subscription) string {
	q := url.Values{"q": {sub.InventoryID}, "open": {sub.InventoryID}}
	if sub.Type != fixtures.TypeShared {
		q.Set("type", "individual")
	}
	return "/inventory?" + q.Encode()
}

func detail(sub fixtures.Subscription, token, returnTo string) g.Node {
	slots := grid.Missing
	if sub.Slots != nil {
		slots = fmt.Sprintf("%d de %d", sub.Slots.Used, sub.Slots.Total)
	}
	info := html.Dl(html.Class("detail-list"),
		html.Dt(g.Text("Cliente")), html.Dd(g.Text(sub.CustomerName+" ("+sub.CustomerID+")")),
		html.Dt(g.Text("Inicio")), html.Dd(g.Text(sub.StartDate.Format("02/01/2006"))),
		html.Dt(g.Text("Vencimiento")), html.Dd(g.Text(sub.ExpiryDate.Format("02/01/2006"))),
		html.Dt(g.Text("Cupos")), html.Dd(g.Text(slots)),
		html.Dt(g.Text("Inventario")), html.Dd(html.A(html.Href(inventoryLink(sub)), g.Text(sub.InventoryID))),
	)
	if sub.Status == fixtures.StatusActive && sub.PaymentStatus == fixtures.PaymentPaid {
		return html.Div(html.Class("detail"), info, html.P(html.Class("muted"), g.Text("Al día, sin pagos pendientes.")))
	}

	methods := make([]g.Node, 0, len(fixtures.PaymentMethods))
	for _, m := range fixtures.PaymentMethods {
		methods = append(methods, html.Option(html.Value(m.Value), g.Text(m.Label)))
	}
	form := html.Form(html.Class("form-inline"), html.Method("post"), html.Action(Path+"/"+sub.ID+"/payments"),
		html.Input(html.Type("hidden"), html.Name(shared.CSRFFormField), html.Value(token)),
		html.Input(html.Type("hidden"), html.Name("next"), html.Value(returnTo)),
		html.Label(g.Text("Monto "+sub.Currency+" "),
			html.Input(html.Type("number"), html.Name("amount"), html.Step("0.01"), html.Min("0.01"), html.Value(strconv.FormatFloat(sub.Amount, 'f', 2, 64)), html.Required()),
		),
		html.Label(g.Text("Método "), html.Select(html.Name("method"), g.Group(methods))),
		html.Label(g.Text("Referencia "), html.Input(html.Type("text"), html.Name("reference"), html.MaxLength("64"))),
		html.Button(html.Type("submit"), html.Class("btn btn-primary btn-sm"), g.Text("Registrar pago")),
	)
	return html.Div(html.Class("detail"), info, form)
}
