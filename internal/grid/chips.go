package grid

import (
	"net/url"
	"strconv"

	. "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Chip is one quick filter with its match count.
type Chip struct {
	Value  string
	Label  string
	Count  int
	Active bool
	// Tone selects the colour accent (success, warning, danger, info).
	Tone string
}

// ChipBar renders chips as links that set param and reset the page.
func ChipBar(path string, query url.Values, param string, chips []Chip) Node {
	links := make([]Node, 0, len(chips))
	for _, c := range chips {
		q := url.Values{}
		for k, v := range query {
			if k == ParamPage {
				continue
			}
			q[k] = v
		}
		q.Set(param, c.Value)
		class := "chip"
		if c.Tone != "" {
			class += " chip-" + c.Tone
		}
		if c.Active {
			class += " active"
		}
		links = append(links, html.A(html.Class(class), html.Href(path+"?"+q.Encode()),
			If(c.Active, Attr("aria-current", "true")),
			Text(c.Label),
			html.Span(html.Class("chip-count"), Text(strconv.Itoa(c.Count))),
		))
	}
	return html.Nav(html.Class("chips"), Attr("aria-label", "Filtros"), Group(links))
}
