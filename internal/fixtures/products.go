package fixtures

import (
	"fmt"
	"math"
	"strings"
)

// Product summarises one sellable product across subscriptions and stock.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Type         string  `json:"type"`
	Provider     string  `json:"provider"`
	TotalQty     int     `json:"totalQty"`
	Available    int     `json:"available"`
	Sold         int     `json:"sold"`
	Expiring     int     `json:"expiring"`
	DefaultPrice float64 `json:"defaultPrice"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
}

// Products derives the product list. A product sold through any shared
// account is 1:N; quantities count slots for those and licenses otherwise.
// The default price is the mean USD amount of its subscriptions.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(products))
	index := make(map[string]int, len(products))
	for i, name := range products {
		index[name] = i
		out[i] = Product{
			ID:       fmt.Sprintf("PROD-%03d", i+1),
			Name:     name,
			SKU:      strings.ToUpper(strings.ReplaceAll(name, " ", "-")),
			Type:     TypeIndividual,
			Provider: providers[name],
			Currency: "USD",
			Status:   "inactive",
		}
	}
	for _, it := range c.inventory {
		if it.Shared() {
			out[index[it.Product]].Type = TypeShared
		}
	}
	for _, it := range c.inventory {
		p := &out[index[it.Product]]
		switch {
		case p.Type == TypeShared && it.Shared():
			p.TotalQty += len(it.Slots)
			p.Available += it.SlotCounts()[InventoryAvailable]
		case p.Type == TypeIndividual:
			p.TotalQty++
			if it.Status == InventoryAvailable {
				p.Available++
			}
		}
	}
	sums := make([]float64, len(out))
	priced := make([]int, len(out))
	for _, s := range c.subscriptions {
		i := index[s.Product]
		out[i].Sold++
		if s.Status == StatusExpiring {
			out[i].Expiring++
		}
		if s.Status == StatusActive || s.Status == StatusExpiring {
			out[i].Status = "active"
		}
		if s.Currency == "USD" {
			sums[i] += s.Amount
			priced[i]++
		}
	}
	for i := range out {
		if priced[i] > 0 {
			out[i].DefaultPrice = math.Round(sums[i]/float64(priced[i])*100) / 100
		}
	}
	return out
}

// ProductFilter narrows the product list.
type ProductFilter struct {
	Type   string
	Status string
	Search string
}

// FilterProducts returns the products matching f. Search matches name and
// SKU.
func FilterProducts(items []Product, f ProductFilter) []Product {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Product
	for _, p := range items {
		if f.Type != "" && f.Type != "all" && p.Type != f.Type {
			continue
		}
		if f.Status != "" && f.Status != "all" && p.Status != f.Status {
			continue
		}
		if needle != "" && !containsFold(p.Name, needle) && !containsFold(p.SKU, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ProductCounts counts products per license type.
func ProductCounts(items []Product) map[string]int {
	out := make(map[string]int)
	for _, p := range items {
		out[p.Type]++
	}
	return out
}
