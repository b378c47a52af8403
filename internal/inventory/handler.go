// Package inventory serves the stock of shared accounts and individual
// licenses, and rotates the credentials of shared accounts.
package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
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

// Path is where the stock list lives.
const Path = "/inventory"

// Stock tabs selected by the "type" query parameter.
const (
	TabShared     = "shared"
	TabIndividual = "individual"
)

var individualChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todos"},
	{Value: fixtures.InventoryAvailable, Label: "Disponibles", Tone: "success"},
	{Value: fixtures.InventoryAssigned, Label: "Asignados"},
	{Value: fixtures.InventoryBlocked, Label: "Bloqueados", Tone: "danger"},
	{Value: fixtures.InventoryCleaning, Label: "En limpieza", Tone: "warning"},
}

// SharedColumns are the grid columns of the shared accounts tab.
var SharedColumns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true, Width: "110px"},
	{Key: "product", Header: "Producto", Sortable: true},
	{Key: "provider", Header: "Proveedor", Sortable: true},
	{Key: "slots", Header: "Cupos"},
	{Key: "freeSlots", Header: "Libres", Sortable: true},
	{Key: "expiringSlots", Header: "Por vencer", Sortable: true},
	{Key: "overdueSlots", Header: "Vencidos", Sortable: true},
	{Key: "expiryDate", Header: "Vence", Sortable: true, Render: view.DateCell("expiryDate")},
	{Key: "username", Header: "Usuario", Hidden: true},
}

// IndividualColumns are the grid columns of the individual licenses tab.
var IndividualColumns = []grid.Column{
	{Key: "id", Header: "ID", Sortable: true, Width: "110px"},
	{Key: "product", Header: "Producto", Sortable: true},
	{Key: "type", Header: "Tipo", Sortable: true},
	{Key: "provider", Header: "Proveedor", Sortable: true},
	{Key: "username", Header: "Usuario"},
	{Key: "status", Header: "Estado", Sortable: true, Render: view.StatusCell("status")},
	{Key: "expiryDate", Header: "Vence", Sortable: true, Render: view.DateCell("expiryDate")},
	{Key: "createdAt", Header: "Alta", Hidden: true, Render: view.DateCell("createdAt")},
}

// Handler serves the inventory pages.
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

// MountRoutes registers the inventory routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
	r.Post(Path+"/{id}/rotate", h.handleRotate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab := TabShared
	if q.Get("type") == TabIndividual {
		tab = TabIndividual
	}
	status := strings.TrimSpace(q.Get("status"))
	search := strings.TrimSpace(q.Get("q"))
	isShared := tab == TabShared
	if isShared {
		status = ""
	}

	sharedItems := h.catalog.FilterInventory(fixtures.InventoryFilter{Shared: true, Search: search})
	individualItems := h.catalog.FilterInventory(fixtures.InventoryFilter{Search: search})
	items := sharedItems
	columns := SharedColumns
	if !isShared {
		items = h.catalog.FilterInventory(fixtures.InventoryFilter{Status: status, Search: search})
		columns = IndividualColumns
	}

	filters := view.FilterQuery("type", tabParam(tab), "status", status, "q", search)
	token := h.renderer.Token(r)
	returnTo := r.URL.RequestURI()
	table := grid.Table{
		Path:    Path,
		Query:   filters,
		Columns: columns,
		Rows:    view.Rows(items),
		State:   grid.ParseState(q),
		Expand: func(row grid.Row) g.Node {
			item, _ := row.(fixtures.InventoryItem)
			return h.detail(item, token, returnTo)
		},
		RowClass:     rowClass,
		EmptyMessage: "No hay inventario que coincida",
	}

	tabs := grid.ChipBar(Path, view.FilterQuery("q", search), "type", []grid.Chip{
		{Value: TabShared, Label: "Compartidas", Count: len(sharedItems), Active: isShared},
		{Value: TabIndividual, Label: "Individuales", Count: len(individualItems), Active: !isShared},
	})
	chips := tabs
	if !isShared {
		statusBar := grid.ChipBar(Path, filters, "status",
			view.Chips(individualChips, fixtures.InventoryCounts(individualItems), len(individualItems), status))
		chips = g.Group([]g.Node{tabs, statusBar})
	}

	data := view.ListData{
		Heading:     "Inventario",
		Subtitle:    "Licencias individuales y cuentas compartidas.",
		Chips:       chips,
		Path:        Path,
		Keep:        view.FilterQuery("type", tabParam(tab), "status", status),
		Search:      search,
		Placeholder: "Buscar por ID, producto o usuario",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Inventario", data)
}

func (h *Handler) handleRotate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	back := shared.SafeRedirect(r.PostFormValue("next"), Path)
	sess := shared.SessionFromContext(r.Context())

	rot, err := h.catalog.RotateCredentials(fixtures.RotationRequest{
		InventoryID: id,
		SlotIDs:     r.PostForm["slot"],
	}, h.now())
	if errors.Is(err, fixtures.ErrInventoryNotFound) {
		h.renderer.Error(w, r, http.StatusNotFound, "El inventario "+id+" no existe.")
		return
	}
	if err != nil {
		h.logger.Info("rotation rejected", slog.String("inventory", id), slog.Any("error", err))
		flash(sess, shared.FlashError, rotationError(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	notified := make([]string, len(rot.Notified))
	for i, s := range rot.Notified {
		notified[i] = s.SubscriptionID
	}
	store := auth.StoreFromContext(r.Context())
	details := fmt.Sprintf("Credenciales de %s (%s) rotadas para %d usuarios", rot.InventoryID, rot.Product, len(rot.Notified))
	after := map[string]any{
		"rotationId":    rot.ID,
		"username":      rot.Username,
		"subscriptions": notified,
		"kept":          rot.Kept,
	}
	if err := store.Record(r.Context(), audit.ActionCredentialsRotated, "inventory", rot.InventoryID, details, nil, after); err != nil {
		h.logger.Error("record rotation audit", slog.Any("error", err))
	}
	flash(sess, shared.FlashSuccess, fmt.Sprintf("Credenciales rotadas y notificación enviada a %d usuarios", len(rot.Notified)))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func rotationError(err error) string {
	switch {
	case errors.Is(err, fixtures.ErrRotationNotShared):
		return "Solo las cuentas compartidas rotan credenciales."
	case errors.Is(err, fixtures.ErrInvalidRotation):
		return "Selecciona al menos un usuario asignado."
	default:
		return "No se pudieron rotar las credenciales."
	}
}

func flash(sess *shared.Session, kind, message string) {
	if sess == nil {
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
}

func tabParam(tab string) string {
	if tab == TabShared {
		return ""
	}
	return tab
}

func rowClass(row grid.Row) string {
	item, ok := row.(fixtures.InventoryItem)
	if !ok {
		return ""
	}
	if item.Status == fixtures.InventoryBlocked {
		return "row-danger"
	}
	counts := item.SlotCounts()
	switch {
	case counts[fixtures.StatusOverdue] > 0:
		return "row-danger"
	case counts[fixtures.StatusExpiring] > 0:
		return "row-warning"
	}
	return ""
}

func (h *Handler) detail(item fixtures.InventoryItem, token, returnTo string) g.Node {
	info := html.Dl(html.Class("detail-list"),
		html.Dt(g.Text("Usuario")), html.Dd(html.Code(g.Text(item.Username))),
		html.Dt(g.Text("Proveedor")), html.Dd(g.Text(item.Provider)),
		html.Dt(g.Text("Alta")), html.Dd(g.Text(item.CreatedAt.Format("02/01/2006"))),
		html.Dt(g.Text("Vencimiento")), html.Dd(g.Text(item.ExpiryDate.Format("02/01/2006"))),
	)
	nodes := []g.Node{html.Class("detail"), info}
	if item.Shared() {
		nodes = append(nodes, rotationForm(item, token, returnTo))
	}
	nodes = append(nodes, history(h.catalog.AccessHistory(item.ID)))
	return html.Div(nodes...)
}

// rotationForm lists the slots of a shared account. Occupied slots carry a
// checkbox, preselected per fixtures.DefaultRotation.
func rotationForm(item fixtures.InventoryItem, token, returnTo string) g.Node {
	preselected := fixtures.DefaultRotation(item)
	rows := make([]g.Node, 0, len(item.Slots))
	for _, s := range item.Slots {
		check := g.Text(grid.Missing)
		if s.Occupied() {
			check = html.Input(html.Type("checkbox"), html.Name("slot"), html.Value(s.ID),
				g.Attr("aria-label", "Rotar slot "+strconv.Itoa(s.Number)),
				g.If(slices.Contains(preselected, s.ID), html.Checked()))
		}
		rows = append(rows, html.Tr(
			html.Td(check),
			html.Td(g.Text("#"+strconv.Itoa(s.Number))),
			html.Td(html.Span(html.Class("status status-"+s.Status), g.Text(fixtures.StatusLabel(s.Status)))),
			html.Td(g.Text(orMissing(s.CustomerName))),
			html.Td(g.Text(orMissing(s.SubscriptionID))),
			html.Td(g.Text(dateOrMissing(s.ExpiryDate))),
		))
	}
	return html.Form(html.Class("slot-form"), html.Method("post"), html.Action(Path+"/"+item.ID+"/rotate"),
		html.Input(html.Type("hidden"), html.Name(shared.CSRFFormField), html.Value(token)),
		html.Input(html.Type("hidden"), html.Name("next"), html.Value(returnTo)),
		html.H4(g.Text("Slots")),
		html.Table(html.Class("slot-table"),
			html.THead(html.Tr(
				html.Th(g.Text("Rotar")), html.Th(g.Text("Slot")), html.Th(g.Text("Estado")),
				html.Th(g.Text("Cliente")), html.Th(g.Text("Suscripción")), html.Th(g.Text("Vence")),
			)),
			html.TBody(rows...),
		),
		html.P(html.Class("muted"), g.Text("Los usuarios seleccionados reciben las nuevas credenciales. Los vencidos quedan fuera por defecto.")),
		html.Button(html.Type("submit"), html.Class("btn btn-primary btn-sm"), g.Text("Rotar credenciales")),
	)
}

func history(events []fixtures.AccessEvent) g.Node {
	if len(events) == 0 {
		return html.P(html.Class("muted"), g.Text("Sin historial de accesos."))
	}
	items := make([]g.Node, len(events))
	for i, e := range events {
		line := e.Timestamp.Format("02/01/2006 15:04") + " · " + e.SubscriptionID + " · " + e.Change
		if e.Reason != "" {
			line += " (" + e.Reason + ")"
		}
		items[i] = html.Li(html.Class("event-"+e.Event), g.Text(line), html.Small(g.Text(" "+e.Executor)))
	}
	return html.Div(html.Class("access-history"), html.H4(g.Text("Historial de accesos")), html.Ul(items...))
}

func orMissing(s string) string {
	if s == "" {
		return grid.Missing
	}
	return s
}

func dateOrMissing(t *time.Time) string {
	if t == nil {
		return grid.Missing
	}
	return t.Format("02/01/2006")
}
