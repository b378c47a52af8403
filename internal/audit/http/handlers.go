// Package audithttp serves the audit log page and its CSV export.
package audithttp

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/grid"
	"github.com/artstock/console/internal/view"
)

// Path is the audit log page.
const Path = "/audit"

// Columns are the audit grid columns.
var Columns = []grid.Column{
	{Key: "timestamp", Header: "Fecha", Sortable: true, Width: "150px"},
	{Key: "actorEmail", Header: "Usuario", Sortable: true},
	{Key: "actorRole", Header: "Rol", Sortable: true},
	{Key: "action", Header: "Acción", Sortable: true, Render: func(row grid.Row) g.Node {
		v, _ := row.Field("action")
		action, _ := v.(string)
		return html.Span(html.Class("chip chip-"+action), g.Text(audit.ActionLabel(action)))
	}},
	{Key: "entityType", Header: "Entidad", Sortable: true},
	{Key: "entityId", Header: "ID", Sortable: true},
	{Key: "details", Header: "Detalle"},
	{Key: "id", Header: "Registro", Hidden: true},
}

// Handler serves the audit log of the current browser profile.
type Handler struct {
	logger   *slog.Logger
	renderer *view.Renderer
	now      func() time.Time
}

// NewHandler constructs an audit handler.
func NewHandler(logger *slog.Logger, renderer *view.Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, renderer: renderer, now: time.Now}
}

type pageData struct {
	List     view.ListData
	Capacity int
}

// row adapts an entry to the grid.
type row struct{ audit.Entry }

func (r row) RowKey() string { return r.ID }

func (r row) Field(key string) (any, bool) {
	switch key {
	case "id":
		return r.ID, true
	case "timestamp":
		return r.Timestamp, true
	case "actorEmail":
		return r.ActorEmail, true
	case "actorRole":
		return r.ActorRole, r.ActorRole != ""
	case "action":
		return r.Action, true
	case "entityType":
		return r.EntityType, true
	case "entityId":
		return r.EntityID, r.EntityID != ""
	case "details":
		return r.Details, r.Details != ""
	}
	return nil, false
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	entries, filter, err := h.load(r)
	if err != nil {
		h.logger.Error("load audit log", slog.Any("error", err))
		h.renderer.Error(w, r, http.StatusInternalServerError, "No se pudo leer la auditoría.")
		return
	}
	shown := audit.Apply(entries, filter)
	filters := view.FilterQuery("action", filter.Action, "q", filter.Search)

	rows := make([]grid.Row, len(shown))
	for i, e := range shown {
		rows[i] = row{e}
	}
	table := grid.Table{
		Path:         Path,
		Query:        filters,
		Columns:      Columns,
		Rows:         rows,
		State:        grid.ParseState(r.URL.Query()),
		Expand:       detail,
		EmptyMessage: "No hay eventos registrados",
	}

	searched := audit.Apply(entries, audit.Filter{Search: filter.Search})
	chips := make([]grid.Chip, 0)
	for _, c := range audit.Chips(searched, filter.Action) {
		chips = append(chips, grid.Chip{Value: c.Value, Label: c.Label, Count: c.Count, Active: c.Active})
	}
	export := Path + "/export.csv"
	if encoded := filters.Encode(); encoded != "" {
		export += "?" + encoded
	}

	data := pageData{
		List: view.ListData{
			Heading:     "Auditoría",
			Subtitle:    "Acciones registradas en este navegador, de la más reciente a la más antigua.",
			Chips:       grid.ChipBar(Path, filters, "action", chips),
			Path:        Path,
			Keep:        view.FilterQuery("action", filter.Action),
			Search:      filter.Search,
			Placeholder: "Buscar por usuario, detalle o ID",
			Actions:     []view.Link{{Href: export, Label: "Exportar CSV"}},
			Grid:        table.Node(),
		},
		Capacity: audit.MaxEntries,
	}
	h.renderer.Page(w, r, http.StatusOK, "pages/audit.html", "Auditoría", data)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	entries, filter, err := h.load(r)
	if err != nil {
		h.logger.Error("load audit log", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	payload, err := audit.WriteCSV(audit.Apply(entries, filter))
	if err != nil {
		h.logger.Error("export audit csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	filename := fmt.Sprintf("audit-%s.csv", h.now().Format("20060102-1504"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	_, _ = w.Write(payload)
}

func (h *Handler) load(r *http.Request) ([]audit.Entry, audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		Action: strings.TrimSpace(q.Get("action")),
		Search: strings.TrimSpace(q.Get("q")),
	}
	sink := auth.StoreFromContext(r.Context()).Sink()
	if sink == nil {
		return nil, filter, nil
	}
	entries, err := sink.Query(r.Context())
	return entries, filter, err
}

func detail(gr grid.Row) g.Node {
	e, ok := gr.(row)
	if !ok {
		return nil
	}
	if len(e.Before) == 0 && len(e.After) == 0 {
		return html.P(html.Class("muted"), g.Text("Sin cambios de datos registrados."))
	}
	return html.Div(html.Class("audit-diff"),
		changes("Antes", e.Before),
		changes("Después", e.After),
	)
}

func changes(title string, values map[string]any) g.Node {
	if len(values) == 0 {
		return nil
	}
	items := make([]g.Node, 0, len(values)*2)
	for _, key := range sortedKeys(values) {
		items = append(items, html.Dt(g.Text(key)), html.Dd(g.Text(grid.Format(values[key]))))
	}
	return html.Div(html.H4(g.Text(title)), html.Dl(html.Class("detail-list"), g.Group(items)))
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
