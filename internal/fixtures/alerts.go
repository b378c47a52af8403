package fixtures

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Alert types.
const (
	AlertSubscriptionExpiring = "subscription_expiring"
	AlertInvoiceOverdue       = "invoice_overdue"
	AlertPaymentPending       = "payment_pending"
	AlertInventoryLow         = "inventory_low"
)

// Alert severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// lowSlots is the free-slot count at or under which a shared account alerts.
const lowSlots = 1

// Alert is a task derived from the catalog. Its ID is stable for a given
// seed, so read state can be kept across restarts.
type Alert struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	Detail   string    `json:"detail"`
	EntityID string    `json:"entityId"`
	Href     string    `json:"href"`
	Date     time.Time `json:"date"`
}

// Alerts lists the open tasks, newest first: expiring subscriptions,
// overdue invoices, payments awaiting confirmation and shared accounts
// running out of slots.
func (c *Catalog) Alerts() []Alert {
	var out []Alert
	add := func(a Alert) {
		a.ID = "ALT-" + a.EntityID
		out = append(out, a)
	}
	for _, s := range c.subscriptions {
		if s.Status != StatusExpiring {
			continue
		}
		days := int(s.ExpiryDate.Sub(c.today).Hours() / 24)
		severity := SeverityWarning
		if days <= 3 {
			severity = SeverityDanger
		}
		add(Alert{
			Type: AlertSubscriptionExpiring, Severity: severity,
			Message:  "Suscripción por vencer",
			Detail:   fmt.Sprintf("%s - %s vence en %d días", s.Product, s.CustomerName, days),
			EntityID: s.ID, Href: "/subscriptions?open=" + s.ID, Date: c.today,
		})
	}
	for _, inv := range c.invoices {
		if inv.Status != PaymentOverdue {
			continue
		}
		add(Alert{
			Type: AlertInvoiceOverdue, Severity: SeverityDanger,
			Message:  "Factura vencida",
			Detail:   fmt.Sprintf("%s - %s - %.2f %s", inv.ID, inv.CustomerName, inv.Amount, inv.Currency),
			EntityID: inv.ID, Href: "/billing?status=overdue&q=" + inv.ID, Date: inv.DueDate,
		})
	}
	for _, p := range c.payments {
		if p.Status != PaymentPending {
			continue
		}
		add(Alert{
			Type: AlertPaymentPending, Severity: SeverityInfo,
			Message:  "Pago por confirmar",
			Detail:   fmt.Sprintf("%s - %s - %.2f %s", p.Reference, p.CustomerName, p.Amount, p.Currency),
			EntityID: p.ID, Href: "/payments?status=pending&q=" + p.ID, Date: p.RecordedAt,
		})
	}
	for _, it := range c.inventory {
		if !it.Shared() {
			continue
		}
		free := it.SlotCounts()[InventoryAvailable]
		if free > lowSlots {
			continue
		}
		severity := SeverityWarning
		if free == 0 {
			severity = SeverityDanger
		}
		add(Alert{
			Type: AlertInventoryLow, Severity: severity,
			Message:  "Inventario bajo",
			Detail:   fmt.Sprintf("%s - %d slots disponibles", it.Product, free),
			EntityID: it.ID, Href: "/inventory?open=" + it.ID, Date: c.today,
		})
	}
	slices.SortStableFunc(out, func(a, b Alert) int {
		if d := b.Date.Compare(a.Date); d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// AlertFilter narrows the alert list.
type AlertFilter struct {
	Type string
	// Read is "read", "unread" or empty for both. It needs IsRead.
	Read   string
	IsRead func(id string) bool
	// Search matches message, detail and entity id.
	Search string
}

// FilterAlerts returns the alerts matching f.
func FilterAlerts(alerts []Alert, f AlertFilter) []Alert {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Alert
	for _, a := range alerts {
		if needle != "" && !containsFold(a.Message, needle) && !containsFold(a.Detail, needle) && !containsFold(a.EntityID, needle) {
			continue
		}
		if f.Type != "" && f.Type != "all" && a.Type != f.Type {
			continue
		}
		if f.IsRead != nil {
			switch strings.TrimSpace(f.Read) {
			case "read":
				if !f.IsRead(a.ID) {
					continue
				}
			case "unread":
				if f.IsRead(a.ID) {
					continue
				}
			}
		}
		out = append(out, a)
	}
	return out
}

// AlertCounts counts alerts per type.
func AlertCounts(alerts []Alert) map[string]int {
	out := make(map[string]int)
	for _, a := range alerts {
		out[a.Type]++
	}
	return out
}
