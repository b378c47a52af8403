package fixtures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/artstock/console/internal/navigation"
	"github.com/artstock/console/internal/shared"
)

var (
	// ErrSubscriptionNotFound is returned for unknown subscription ids.
	ErrSubscriptionNotFound = errors.New("fixtures: subscription not found")
	// ErrInvalidPayment is returned when a payment request fails validation.
	ErrInvalidPayment = errors.New("fixtures: invalid payment")
	// ErrPaymentNotAllowed is returned for subscriptions that cannot be paid.
	ErrPaymentNotAllowed = errors.New("fixtures: subscription does not accept payments")
)

// Catalog is an immutable set of generated records. It is safe for
// concurrent use.
type Catalog struct {
	customers     []Customer
	subscriptions []Subscription
	invoices      []Invoice
	inventory     []InventoryItem
	history       []AccessEvent
	payments      []Payment
	today         time.Time

	customerByID map[string]int
	subByID      map[string]int
}

func newCatalog(customers []Customer, subs []Subscription, invoices []Invoice, today time.Time) *Catalog {
	c := &Catalog{
		customers:     customers,
		subscriptions: subs,
		invoices:      invoices,
		today:         today,
		customerByID:  make(map[string]int, len(customers)),
		subByID:       make(map[string]int, len(subs)),
	}
	for i, cu := range customers {
		c.customerByID[cu.ID] = i
	}
	for i, s := range subs {
		c.subByID[s.ID] = i
	}
	return c
}

// Today is the reference date the catalog was generated for.
func (c *Catalog) Today() time.Time { return c.today }

// Customers returns every customer.
func (c *Catalog) Customers() []Customer { return clone(c.customers) }

// Subscriptions returns every subscription.
func (c *Catalog) Subscriptions() []Subscription { return clone(c.subscriptions) }

// Invoices returns every invoice.
func (c *Catalog) Invoices() []Invoice { return clone(c.invoices) }

// Customer looks up a customer by id.
func (c *Catalog) Customer(id string) (Customer, bool) {
	i, ok := c.customerByID[id]
	if !ok {
		return Customer{}, false
	}
	return c.customers[i], true
}

// CustomerByEmail looks up a customer by email, ignoring case.
func (c *Catalog) CustomerByEmail(email string) (Customer, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, cu := range c.customers {
		if strings.ToLower(cu.Email) == email {
			return cu, true
		}
	}
	return Customer{}, false
}

// Subscription looks up a subscription by id.
func (c *Catalog) Subscription(id string) (Subscription, bool) {
	i, ok := c.subByID[id]
	if !ok {
		return Subscription{}, false
	}
	return c.subscriptions[i], true
}

// SubscriptionFilter narrows the subscription list.
type SubscriptionFilter struct {
	Status     string
	Search     string
	CustomerID string
}

// FilterSubscriptions returns the subscriptions matching f in catalog order.
// Search matches id, customer name and product, ignoring case.
func (c *Catalog) FilterSubscriptions(f SubscriptionFilter) []Subscription {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Subscription
	for _, s := range c.subscriptions {
		if f.Status != "" && f.Status != "all" && s.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && s.CustomerID != f.CustomerID {
			continue
		}
		if needle != "" && !containsFold(s.ID, needle) && !containsFold(s.CustomerName, needle) && !containsFold(s.Product, needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// CustomerFilter narrows the customer list.
type CustomerFilter struct {
	Type   string
	Search string
}

// FilterCustomers returns the customers matching f. Search matches id, name
// and email.
func (c *Catalog) FilterCustomers(f CustomerFilter) []Customer {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Customer
	for _, cu := range c.customers {
		if f.Type != "" && f.Type != "all" && cu.Type != f.Type {
			continue
		}
		if needle != "" && !containsFold(cu.ID, needle) && !containsFold(cu.Name, needle) && !containsFold(cu.Email, needle) {
			continue
		}
		out = append(out, cu)
	}
	return out
}

// InvoiceFilter narrows the invoice list.
type InvoiceFilter struct {
	Status     string
	Search     string
	CustomerID string
	// Outstanding keeps only invoices that are not fully paid.
	Outstanding bool
}

// FilterInvoices returns the invoices matching f. Search matches id,
// customer name and product.
func (c *Catalog) FilterInvoices(f InvoiceFilter) []Invoice {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Invoice
	for _, inv := range c.invoices {
		if f.Outstanding && inv.Status == PaymentPaid {
			continue
		}
		if f.Status != "" && f.Status != "all" && inv.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		if needle != "" && !containsFold(inv.ID, needle) && !containsFold(inv.CustomerName, needle) && !containsFold(inv.Product, needle) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// SubscriptionCounts counts subscriptions per status.
func SubscriptionCounts(subs []Subscription) map[string]int {
	out := make(map[string]int)
	for _, s := range subs {
		out[s.Status]++
	}
	return out
}

// CustomerCounts counts customers per type.
func CustomerCounts(customers []Customer) map[string]int {
	out := make(map[string]int)
	for _, cu := range customers {
		out[cu.Type]++
	}
	return out
}

// InvoiceCounts counts invoices per status.
func InvoiceCounts(invoices []Invoice) map[string]int {
	out := make(map[string]int)
	for _, inv := range invoices {
		out[inv.Status]++
	}
	return out
}

// KPIs are the dashboard headline numbers.
type KPIs struct {
	ActiveSubscriptions    int                `json:"activeSubscriptions"`
	ExpiringSubscriptions  int                `json:"expiringSubscriptions"`
	OverdueSubscriptions   int                `json:"overdueSubscriptions"`
	SuspendedSubscriptions int                `json:"suspendedSubscriptions"`
	PendingInvoices        int                `json:"pendingInvoices"`
	OverdueInvoices        int                `json:"overdueInvoices"`
	ActiveCustomers        int                `json:"activeCustomers"`
	FormerCustomers        int                `json:"formerCustomers"`
	ToCollect              map[string]float64 `json:"toCollect"`
	Collected              map[string]float64 `json:"collected"`
}

// KPIs computes the dashboard numbers.
func (c *Catalog) KPIs() KPIs {
	k := KPIs{ToCollect: map[string]float64{}, Collected: map[string]float64{}}
	for _, s := range c.subscriptions {
		switch s.Status {
		case StatusActive:
			k.ActiveSubscriptions++
		case StatusExpiring:
			k.ExpiringSubscriptions++
		case StatusOverdue:
			k.OverdueSubscriptions++
		case StatusSuspended:
			k.SuspendedSubscriptions++
		}
	}
	for _, inv := range c.invoices {
		switch inv.Status {
		case PaymentPending:
			k.PendingInvoices++
		case PaymentOverdue:
			k.OverdueInvoices++
		}
		paid := 0.0
		switch {
		case inv.Status == PaymentPaid:
			paid = inv.Amount
		case inv.PaidAmount != nil:
			paid = *inv.PaidAmount
		}
		k.Collected[inv.Currency] += paid
		k.ToCollect[inv.Currency] += inv.Amount - paid
	}
	for _, cu := range c.customers {
		if cu.Status == "active" {
			k.ActiveCustomers++
		} else {
			k.FormerCustomers++
		}
	}
	return k
}

// Badge keys understood by the navigation tree.
const (
	BadgeAlerts        = "alerts"
	BadgeSubscriptions = "subscriptions"
	BadgeBilling       = "billing"
)

// CountBadges implements navigation.Counter.
func (c *Catalog) CountBadges(ctx context.Context) (navigation.Counts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := c.KPIs()
	return navigation.Counts{
		BadgeAlerts:        k.OverdueSubscriptions + k.SuspendedSubscriptions,
		BadgeSubscriptions: k.ExpiringSubscriptions,
		BadgeBilling:       k.OverdueInvoices,
	}, nil
}

// PaymentRequest is a payment entered by an operator.
type PaymentRequest struct {
	SubscriptionID string  `validate:"required"`
	Amount         float64 `validate:"gt=0,lte=100000"`
	Method         string  `validate:"required,oneof=transfer card cash yape plin"`
	Reference      string  `validate:"max=64"`
}

// Payment is money received against a subscription.
type Payment struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscriptionId"`
	CustomerID     string    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	InvoiceID      string    `json:"invoiceId,omitempty"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	Reference      string    `json:"reference,omitempty"`
	RecordedAt     time.Time `json:"recordedAt"`
}

var paymentValidator = validator.New()

// RecordPayment validates req and returns the receipt. The catalog itself is
// not modified.
func (c *Catalog) RecordPayment(req PaymentRequest, at time.Time) (Payment, error) {
	req.SubscriptionID = strings.TrimSpace(req.SubscriptionID)
	req.Method = strings.TrimSpace(strings.ToLower(req.Method))
	if err := paymentValidator.Struct(req); err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrInvalidPayment, err)
	}
	sub, ok := c.Subscription(req.SubscriptionID)
	if !ok {
		return Payment{}, ErrSubscriptionNotFound
	}
	if sub.PaymentStatus == PaymentPaid && sub.Status == StatusActive {
		return Payment{}, ErrPaymentNotAllowed
	}
	return Payment{
		ID:             shared.NewID("PAY", at),
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		CustomerName:   sub.CustomerName,
		Amount:         req.Amount,
		Currency:       sub.Currency,
		Method:         req.Method,
		Status:         PaymentConfirmed,
		Reference:      strings.TrimSpace(req.Reference),
		RecordedAt:     at.UTC(),
	}, nil
}

// PaymentMethods lists the accepted payment methods with display labels.
var PaymentMethods = []struct{ Value, Label string }{
	{"transfer", "Transferencia"},
	{"card", "Tarjeta"},
	{"cash", "Efectivo"},
	{"yape", "Yape"},
	{"plin", "Plin"},
}

func clone[T any](in []T) []T {
	return append([]T(nil), in...)
}
