package alerts

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/view"
)

// Path is where the alert list lives.
const Path = "/alerts"

// Read filter values of the "read" query parameter.
const (
	FilterUnread = "unread"
	FilterRead   = "read"
)

var typeChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todas"},
	{Value: fixtures.AlertSubscriptionExpiring, Label: "Por vencer", Tone: "warning"},
	{Value: fixtures.AlertInvoiceOverdue, Label: "Facturas vencidas", Tone: "danger"},
	{Value: fixtures.AlertPaymentPending, Label: "Pagos por confirmar", Tone: "info"},
	{Value: fixtures.AlertInventoryLow, Label: "Inventario bajo", Tone: "warning"},
}

var readChips = []view.ChipOption{
	{Value: view.FilterAll, Label: "Todas"},
	{Value: FilterUnread, Label: "Sin leer"},
	{Value: FilterRead, Label: "Leídas"},
}

var severityLabels = map[string]string{
	fixtures.SeverityInfo:    "Info",
	fixtures.SeverityWarning: "Atención",
	fixtures.SeverityDanger:  "Urgente",
}

// Handler serves the alerts page.
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

// MountRoutes registers the alert routes. Callers apply the guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(Path, h.handleList)
	r.Post(Path+"/read", h.handleRead)
	r.Post(Path+"/dismiss", h.handleDismiss)
}

// visible returns the catalog alerts minus the dismissed ones.
func (h *Handler) visible(st State) []fixtures.Alert {
	var out []fixtures.Alert
	for _, a := range h.catalog.Alerts() {
		if !st.IsDismissed(a.ID) {
			out = append(out, a)
		}
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := strings.TrimSpace(q.Get("type"))
	read := strings.TrimSpace(q.Get("read"))
	search := strings.TrimSpace(q.Get("q"))
	if read != FilterRead && read != FilterUnread {
		read = ""
	}

	var st State
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		st = Load(sess)
	}
	open := h.visible(st)
	byType := fixtures.FilterAlerts(open, fixtures.AlertFilter{Read: read, IsRead: st.IsRead, Search: search})
	byRead := fixtures.FilterAlerts(open, fixtures.AlertFilter{Type: kind, Search: search})
	list := fixtures.FilterAlerts(open, fixtures.AlertFilter{Type: kind, Read: read, IsRead: st.IsRead, Search: search})

	readCounts := make(map[string]int)
	for _, a := range byRead {
		if st.IsRead(a.ID) {
			readCounts[FilterRead]++
		} else {
			readCounts[FilterUnread]++
		}
	}

	filters := view.FilterQuery("type", kind, "read", read, "q", search)
	token := h.renderer.Token(r)
	returnTo := r.URL.RequestURI()
	table := grid.Table{
		Path:    Path,
		Query:   filters,
		Columns: columns(st, token, returnTo),
		Rows:    view.Rows(list),
		State:   grid.ParseState(q),
		Expand: func(row grid.Row) g.Node {
			a, _ := row.(fixtures.Alert)
			return detail(a)
		},
		RowClass: func(row grid.Row) string {
			if st.IsRead(row.RowKey()) {
				return "row-read"
			}
			return ""
		},
		EmptyMessage:     "No hay alertas pendientes",
		HideColumnToggle: true,
	}

	var toolbar g.Node
	if unread := readCounts[FilterUnread]; unread > 0 {
		toolbar = html.Form(html.Method("post"), html.Action(Path+"/read"), html.Class("form-inline"),
			csrfField(token),
			html.Input(html.Type("hidden"), html.Name("next"), html.Value(returnTo)),
			html.Input(html.Type("hidden"), html.Name("all"), html.Value("on")),
			html.Button(html.Type("submit"), html.Class("btn btn-sm"), g.Text("Marcar todas como leídas ("+strconv.Itoa(unread)+")")),
		)
	}

	data := view.ListData{
		Heading:  "Alertas",
		Subtitle: strconv.Itoa(len(open)) + " alertas abiertas, " + strconv.Itoa(len(open)-countRead(open, st)) + " sin leer.",
		Chips: g.Group([]g.Node{
			grid.ChipBar(Path, filters, "type", view.Chips(typeChips, fixtures.AlertCounts(byType), len(byType), kind)),
			grid.ChipBar(Path, filters, "read", view.Chips(readChips, readCounts, len(byRead), read)),
			toolbar,
		}),
		Path:        Path,
		Keep:        view.FilterQuery("type", kind, "read", read),
		Search:      search,
		Placeholder: "Buscar en alertas",
		Grid:        table.Node(),
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/list.html", "Alertas", data)
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(st *State, ids []string) string {
		n := st.MarkRead(ids...)
		if n == 1 {
			return "Alerta marcada como leída"
		}
		return strconv.Itoa(n) + " alertas marcadas como leídas"
	})
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(st *State, ids []string) string {
		n := st.Dismiss(ids...)
		if n == 1 {
			return "Alerta descartada"
		}
		return strconv.Itoa(n) + " alertas descartadas"
	})
}

// update resolves the posted ids against the open alerts, applies fn and
// persists the pruned state.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, fn func(*State, []string) string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	back := shared.SafeRedirect(r.PostFormValue("next"), Path)
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.renderer.Error(w, r, http.StatusServiceUnavailable, "La sesión no está disponible.")
		return
	}

	st := Load(sess)
	open := h.visible(st)
	current := make([]string, 0, len(open))
	for _, a := range h.catalog.Alerts() {
		current = append(current, a.ID)
	}
	var ids []string
	if r.PostFormValue("all") == "on" {
		for _, a := range open {
			ids = append(ids, a.ID)
		}
	} else {
		for _, id := range r.PostForm["id"] {
			for _, a := range open {
				if a.ID == id {
					ids = append(ids, id)
				}
			}
		}
	}
	if len(ids) == 0 {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: "La alerta ya no está disponible"})
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	message := fn(&st, ids)
	st.Prune(current)
	if err := Save(sess, st); err != nil {
		h.logger.Error("save alerts", slog.Any("error", err))
		h.renderer.Error(w, r, http.StatusInternalServerError, "No se pudo guardar el estado de las alertas.")
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: message})
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func columns(st State, token, returnTo string) []grid.Column {
	return []grid.Column{
		{Key: "severity", Header: "Prioridad", Sortable: true, Width: "100px", Render: severityCell},
		{Key: "date", Header: "Fecha", Sortable: true, Render: view.DateCell("date")},
		{Key: "message", Header: "Alerta", Sortable: true},
		{Key: "detail", Header: "Detalle"},
		{Key: "actions", Header: "", Render: func(row grid.Row) g.Node {
			id := row.RowKey()
			var markRead g.Node
			if !st.IsRead(id) {
				markRead = actionForm(Path+"/read", id, token, returnTo, "Marcar leída")
			}
			return html.Div(html.Class("row-actions"),
				markRead,
				actionForm(Path+"/dismiss", id, token, returnTo, "Descartar"),
			)
		}},
	}
}

func actionForm(action, id, token, returnTo, label string) g.Node {
	return html.Form(html.Method("post"), html.Action(action), html.Class("inline"),
		csrfField(token),
		html.Input(html.Type("hidden"), html.Name("id"), html.Value(id)),
		html.Input(html.Type("hidden"), html.Name("next"), html.Value(returnTo)),
		html.Button(html.Type("submit"), html.Class("btn btn-sm btn-ghost"), g.Text(label)),
	)
}

func csrfField(token string) g.Node {
	return html.Input(html.Type("hidden"), html.Name(shared.CSRFFormField), html.Value(token))
}

func severityCell(row grid.Row) g.Node {
	v, _ := row.Field("severity")
	severity, _ := v.(string)
	label, ok := severityLabels[severity]
	if !ok {
		return g.Text(grid.Missing)
	}
	return html.Span(html.Class("status severity-"+severity), g.Text(label))
}

func detail(a fixtures.Alert) g.Node {
	return html.Div(html.Class("detail"),
		html.P(g.Text(a.Detail)),
		html.A(html.Class("btn btn-sm"), html.Href(a.Href), g.Text("Ver "+a.EntityID)),
	)
}

func countRead(list []fixtures.Alert, st State) int {
	n := 0
	for _, a := range list {
		if st.IsRead(a.ID) {
			n++
		}
	}
	return n
}
