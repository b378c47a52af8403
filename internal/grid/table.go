package grid

import (
	"io"
	"net/url"
	"slices"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	. "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// DefaultEmptyMessage is shown when there are no rows.
const DefaultEmptyMessage = "No hay datos para mostrar"

const skeletonRows = 5

// Table renders one grid. Path and Query describe the page the grid lives
// on; page-level parameters in Query are preserved by every grid link.
type Table struct {
	Path    string
	Query   url.Values
	Columns []Column
	Rows    []Row
	State   State
	// Loading renders placeholder rows instead of data.
	Loading bool
	// Expand renders the detail row of an expanded row. Nil disables
	// expansion.
	Expand   func(Row) Node
	RowClass func(Row) string
	// EmptyMessage defaults to DefaultEmptyMessage.
	EmptyMessage     string
	HideColumnToggle bool
	// Printer formats the summary numbers. Defaults to Spanish.
	Printer *message.Printer
}

// Render writes the grid as HTML.
func (t Table) Render(w io.Writer) error {
	return t.Node().Render(w)
}

// Node builds the grid markup.
func (t Table) Node() Node {
	sorted := SortRows(t.Rows, t.State.Sort)
	page := Paginate(len(sorted), t.State.Page, t.State.Size)
	st := t.State
	st.Page = page.Number
	st.Size = page.Size

	visible := st.Visible(t.Columns)
	span := len(visible)
	if t.Expand != nil {
		span++
	}

	var body []Node
	switch {
	case t.Loading:
		body = t.skeleton(visible)
	case page.Total == 0:
		msg := t.EmptyMessage
		if msg == "" {
			msg = DefaultEmptyMessage
		}
		body = []Node{html.Tr(html.Td(html.Class("grid-empty"), Attr("colspan", strconv.Itoa(span)), Text(msg)))}
	default:
		for _, row := range Slice(sorted, page) {
			body = append(body, t.row(st, visible, span, row)...)
		}
	}

	return html.Div(html.Class("grid"),
		If(!t.HideColumnToggle, t.columnToggle(st)),
		html.Div(html.Class("grid-scroll"),
			html.Table(html.Class("grid-table"),
				html.THead(html.Tr(t.header(st, visible)...)),
				html.TBody(Group(body)),
			),
		),
		If(!t.Loading, t.footer(st, page)),
	)
}

func (t Table) link(st State) string {
	return Href(t.Path, t.Query, st)
}

func (t Table) header(st State, visible []Column) []Node {
	cells := make([]Node, 0, len(visible)+1)
	if t.Expand != nil {
		cells = append(cells, html.Th(html.Class("grid-toggle")))
	}
	for _, col := range visible {
		th := []Node{Attr("scope", "col")}
		if col.Width != "" {
			th = append(th, html.StyleAttr("width: "+col.Width))
		}
		if !col.Sortable {
			cells = append(cells, html.Th(append(th, Text(col.Header))...))
			continue
		}
		dir := st.Sort.DirectionOf(col.Key)
		th = append(th,
			Attr("aria-sort", ariaSort(dir)),
			html.A(html.Class("grid-sort"), html.Href(t.link(st.WithSort(col.Key))),
				Text(col.Header),
				html.Span(html.Class("grid-sort-icon "+sortIcon(dir)), Attr("aria-hidden", "true")),
			),
		)
		cells = append(cells, html.Th(th...))
	}
	return cells
}

func (t Table) row(st State, visible []Column, span int, row Row) []Node {
	key := row.RowKey()
	expanded := t.Expand != nil && st.IsExpanded(key)

	class := "grid-row"
	if expanded {
		class += " expanded"
	}
	if t.RowClass != nil {
		if extra := t.RowClass(row); extra != "" {
			class += " " + extra
		}
	}

	cells := make([]Node, 0, len(visible)+1)
	if t.Expand != nil {
		label, icon := "Expandir", "chevron-right"
		if expanded {
			label, icon = "Contraer", "chevron-down"
		}
		cells = append(cells, html.Td(html.Class("grid-toggle"),
			html.A(html.Href(t.link(st.ToggleExpanded(key))), html.Title(label), Attr("aria-expanded", strconv.FormatBool(expanded)),
				html.I(Attr("data-lucide", icon), Attr("aria-hidden", "true")),
			),
		))
	}
	for _, col := range visible {
		cells = append(cells, html.Td(cell(col, row)))
	}

	out := []Node{html.Tr(append([]Node{html.Class(class), Attr("data-key", key)}, cells...)...)}
	if expanded {
		out = append(out, html.Tr(html.Class("grid-detail"),
			html.Td(Attr("colspan", strconv.Itoa(span)), t.Expand(row)),
		))
	}
	return out
}

func cell(col Column, row Row) Node {
	if col.Render != nil {
		return col.Render(row)
	}
	v, ok := lookup(row, col.Key)
	if !ok {
		return Text(Missing)
	}
	return Text(Format(v))
}

func (t Table) skeleton(visible []Column) []Node {
	rows := make([]Node, skeletonRows)
	for i := range rows {
		cells := make([]Node, 0, len(visible)+1)
		if t.Expand != nil {
			cells = append(cells, html.Td(html.Span(html.Class("skeleton skeleton-icon"))))
		}
		for range visible {
			cells = append(cells, html.Td(html.Span(html.Class("skeleton"))))
		}
		rows[i] = html.Tr(append([]Node{html.Class("grid-skeleton")}, cells...)...)
	}
	return rows
}

func (t Table) columnToggle(st State) Node {
	q := query(t.Query, st)
	q.Del(ParamCols)

	boxes := make([]Node, 0, len(t.Columns))
	visible := st.Visible(t.Columns)
	for _, col := range t.Columns {
		shown := slices.ContainsFunc(visible, func(c Column) bool { return c.Key == col.Key })
		boxes = append(boxes, html.Label(html.Class("grid-column-option"),
			html.Input(html.Type("checkbox"), html.Name(ParamCols), html.Value(col.Key), If(shown, html.Checked())),
			Text(col.Header),
		))
	}
	return html.Details(html.Class("grid-columns"),
		html.Summary(html.I(Attr("data-lucide", "columns"), Attr("aria-hidden", "true")), Text("Columnas")),
		html.Form(html.Method("get"), html.Action(t.Path),
			hiddenInputs(q),
			html.Input(html.Type("hidden"), html.Name(ParamCols), html.Value("")),
			Group(boxes),
			html.Button(html.Type("submit"), html.Class("btn btn-sm"), Text("Aplicar")),
		),
	)
}

func (t Table) footer(st State, page Page) Node {
	p := t.Printer
	if p == nil {
		p = message.NewPrinter(language.Spanish)
	}

	q := query(t.Query, st)
	q.Del(ParamSize)
	q.Del(ParamPage)
	options := make([]Node, 0, len(PageSizes))
	for _, size := range PageSizes {
		options = append(options, html.Option(html.Value(strconv.Itoa(size)), If(size == page.Size, html.Selected()), Text(strconv.Itoa(size))))
	}

	return html.Div(html.Class("grid-footer"),
		html.Div(html.Class("grid-summary"),
			html.P(Text(p.Sprintf("Mostrando %d - %d de %d", page.First(), page.Last(), page.Total))),
			html.Form(html.Method("get"), html.Action(t.Path), html.Class("grid-size"),
				hiddenInputs(q),
				html.Select(html.Name(ParamSize), Attr("aria-label", "Filas por página"), Group(options)),
				html.Button(html.Type("submit"), html.Class("btn btn-sm"), Text("Aplicar")),
			),
		),
		html.Nav(html.Class("grid-pages"), Attr("aria-label", "Paginación"),
			t.pageLink(st, 1, "«", "Primera página", page.HasPrev()),
			t.pageLink(st, page.Number-1, "‹", "Página anterior", page.HasPrev()),
			Group(t.window(st, page)),
			t.pageLink(st, page.Number+1, "›", "Página siguiente", page.HasNext()),
			t.pageLink(st, page.TotalPages, "»", "Última página", page.HasNext()),
		),
	)
}

func (t Table) window(st State, page Page) []Node {
	nums := page.Window()
	out := make([]Node, 0, len(nums))
	for _, n := range nums {
		if n == page.Number {
			out = append(out, html.Span(html.Class("grid-page current"), Attr("aria-current", "page"), Text(strconv.Itoa(n))))
			continue
		}
		out = append(out, html.A(html.Class("grid-page"), html.Href(t.link(st.WithPage(n))), Text(strconv.Itoa(n))))
	}
	return out
}

func (t Table) pageLink(st State, n int, symbol, label string, enabled bool) Node {
	if !enabled {
		return html.Span(html.Class("grid-page disabled"), Attr("aria-disabled", "true"), html.Title(label), Text(symbol))
	}
	return html.A(html.Class("grid-page"), html.Href(t.link(st.WithPage(n))), html.Title(label), Text(symbol))
}

func hiddenInputs(q url.Values) Node {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var out []Node
	for _, k := range keys {
		for _, v := range q[k] {
			out = append(out, html.Input(html.Type("hidden"), html.Name(k), html.Value(v)))
		}
	}
	return Group(out)
}

func ariaSort(dir Direction) string {
	switch dir {
	case Asc:
		return "ascending"
	case Desc:
		return "descending"
	}
	return "none"
}

func sortIcon(dir Direction) string {
	switch dir {
	case Asc:
		return "sort-asc"
	case Desc:
		return "sort-desc"
	}
	return "sort-none"
}
