package grid

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	. "maragu.dev/gomponents"
)

func render(t *testing.T, tbl Table) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, tbl.Render(&b))
	return b.String()
}

func invoiceRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = MapRow{Key: fmt.Sprintf("INV-%03d", i+1), Values: map[string]any{"id": fmt.Sprintf("INV-%03d", i+1), "amount": (i + 1) * 100}}
	}
	return rows
}

var invoiceColumns = []Column{
	{Key: "id", Header: "Factura", Sortable: true},
	{Key: "amount", Header: "Monto", Sortable: true},
	{Key: "customer", Header: "Cliente"},
	{Key: "notes", Header: "Notas", Hidden: true},
}

func TestTableMissingFieldRendersDash(t *testing.T) {
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(1), State: State{Page: 1}})
	assert.Contains(t, out, "<td>INV-001</td>")
	assert.Contains(t, out, "<td>-</td>")
	assert.NotContains(t, out, "Notas</th>")
}

func TestTableEmpty(t *testing.T) {
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, State: State{Page: 3}})
	assert.Contains(t, out, `colspan="3"`)
	assert.Contains(t, out, DefaultEmptyMessage)
	assert.Contains(t, out, "Mostrando 0 - 0 de 0")

	out = render(t, Table{Path: "/billing", Columns: invoiceColumns, EmptyMessage: "Sin facturas"})
	assert.Contains(t, out, "Sin facturas")
}

func TestTableLoadingSkeleton(t *testing.T) {
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(40), Loading: true})
	assert.Equal(t, 5, strings.Count(out, `class="grid-skeleton"`))
	assert.Equal(t, 15, strings.Count(out, `class="skeleton"`))
	assert.NotContains(t, out, "INV-001")
	assert.NotContains(t, out, "Mostrando")
}

func TestTableClampsPageAndSummarizes(t *testing.T) {
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(30), State: State{Page: 7, Size: 25}})
	assert.Contains(t, out, "Mostrando 26 - 30 de 30")
	assert.Contains(t, out, "INV-030")
	assert.NotContains(t, out, "INV-025<")
}

func TestTableSummaryGroupsThousands(t *testing.T) {
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(12000), State: State{Page: 480, Size: 25}})
	assert.Contains(t, out, "Mostrando 11.976 - 12.000 de 12.000")
}

func TestTableSortLinks(t *testing.T) {
	q := url.Values{"status": {"paid"}}
	out := render(t, Table{Path: "/billing", Query: q, Columns: invoiceColumns, Rows: invoiceRows(3), State: State{Sort: Sort{Key: "amount", Dir: Asc}}})
	assert.Contains(t, out, `aria-sort="ascending"`)
	assert.Contains(t, out, `href="/billing?dir=desc&amp;sort=amount&amp;status=paid"`)
	assert.Contains(t, out, `href="/billing?dir=asc&amp;sort=id&amp;status=paid"`)

	out = render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(3), State: State{Sort: Sort{Key: "amount", Dir: Desc}}})
	assert.Contains(t, out, `<th scope="col" aria-sort="descending"><a class="grid-sort" href="/billing">`)
	assert.Less(t, strings.Index(out, "INV-003"), strings.Index(out, "INV-001"))
}

func TestTableExpansion(t *testing.T) {
	tbl := Table{
		Path:    "/subscriptions",
		Columns: invoiceColumns,
		Rows:    invoiceRows(2),
		State:   State{Expanded: []string{"INV-002"}},
		Expand: func(r Row) Node {
			return Text("detalle " + r.RowKey())
		},
	}
	out := render(t, tbl)
	assert.Contains(t, out, "detalle INV-002")
	assert.NotContains(t, out, "detalle INV-001")
	assert.Contains(t, out, `href="/subscriptions?open=INV-002%2CINV-001"`)
	assert.Contains(t, out, `<a href="/subscriptions" title="Contraer"`)
	assert.Contains(t, out, `colspan="4"`)
}

func TestTableColumnToggleForm(t *testing.T) {
	st := ParseState(url.Values{"cols": {"id,notes"}, "page": {"1"}})
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(1), State: st})
	assert.Contains(t, out, `<input type="hidden" name="cols" value="">`)
	assert.Contains(t, out, `<input type="checkbox" name="cols" value="notes" checked>`)
	assert.Contains(t, out, `<input type="checkbox" name="cols" value="amount">`)
	assert.Contains(t, out, "Notas</th>")
	assert.NotContains(t, out, "Monto</a>")

	out = render(t, Table{Path: "/billing", Columns: invoiceColumns, HideColumnToggle: true})
	assert.NotContains(t, out, "Columnas")
}

func TestTablePageControls(t *testing.T) {
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: invoiceRows(100), State: State{Page: 1, Size: 50}})
	assert.Contains(t, out, `<span class="grid-page current" aria-current="page">1</span>`)
	assert.Contains(t, out, `href="/billing?page=2&amp;size=50"`)
	assert.Contains(t, out, `<option value="50" selected>50</option>`)
	assert.Contains(t, out, `<span class="grid-page disabled" aria-disabled="true" title="Página anterior">`)
}

func TestChipBarResetsPage(t *testing.T) {
	var b strings.Builder
	q := url.Values{"page": {"3"}, "q": {"net"}}
	node := ChipBar("/subscriptions", q, "status", []Chip{
		{Value: "all", Label: "Todas", Count: 55, Active: true},
		{Value: "overdue", Label: "Vencidas", Count: 4, Tone: "danger"},
	})
	require.NoError(t, node.Render(&b))
	out := b.String()
	assert.Contains(t, out, `<a class="chip active" href="/subscriptions?q=net&amp;status=all" aria-current="true">Todas<span class="chip-count">55</span></a>`)
	assert.Contains(t, out, `<a class="chip chip-danger" href="/subscriptions?q=net&amp;status=overdue">`)
}

func TestTablePointerCellsShowValue(t *testing.T) {
	paid := 1500
	rows := []Row{MapRow{Key: "INV-001", Values: map[string]any{"id": "INV-001", "amount": &paid}}}
	out := render(t, Table{Path: "/billing", Columns: invoiceColumns, Rows: rows, State: State{Page: 1}})
	assert.Contains(t, out, "<td>1500</td>")
	assert.NotContains(t, out, "0xc")
}
