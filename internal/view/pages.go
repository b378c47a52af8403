package view

import (
	"net/url"
	"time"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/artstock/console/internal/fixtures"
	"github.com/artstock/console/internal/grid"
)

// Link is a toolbar action.
type Link struct {
	Href  string
	Label string
}

// KPI is one headline number.
type KPI struct {
	Title string
	Value string
	Hint  string
	// Tone is one of success, warning, danger or empty.
	Tone string
}

// ListData feeds partials/list: a heading, filter chips, a search box and a
// grid.
type ListData struct {
	Heading     string
	Subtitle    string
	Chips       g.Node
	Path        string
	Keep        url.Values
	Search      string
	Placeholder string
	Actions     []Link
	Grid        g.Node
}

// StatusCell renders a status field as a coloured pill.
func StatusCell(key string) func(grid.Row) g.Node {
	return func(row grid.Row) g.Node {
		v, ok := row.Field(key)
		status, _ := v.(string)
		if !ok || status == "" {
			return g.Text(grid.Missing)
		}
		return html.Span(html.Class("status status-"+status), g.Text(fixtures.StatusLabel(status)))
	}
}

// MoneyCell renders an amount using the row's currency field.
func MoneyCell(amountKey, currencyKey string) func(grid.Row) g.Node {
	return func(row grid.Row) g.Node {
		v, ok := row.Field(amountKey)
		amount, isNum := v.(float64)
		if !ok || !isNum {
			return g.Text(grid.Missing)
		}
		currency := ""
		if c, ok := row.Field(currencyKey); ok {
			currency, _ = c.(string)
		}
		return g.Text(Money(amount, currency))
	}
}

// DateCell renders a date field as dd/mm/yyyy.
func DateCell(key string) func(grid.Row) g.Node {
	return func(row grid.Row) g.Node {
		v, ok := row.Field(key)
		t, isTime := v.(time.Time)
		if !ok || !isTime || t.IsZero() {
			return g.Text(grid.Missing)
		}
		return g.El("time", g.Attr("datetime", t.Format(time.DateOnly)), g.Text(t.Format("02/01/2006")))
	}
}
