// Package fixtures generates the customers, subscriptions, invoices, stock
// and payments the console displays. Generation is deterministic for a given
// seed and reference date.
package fixtures

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed customers.yaml
var customersYAML []byte

// Customer is a buyer of subscriptions.
type Customer struct {
	ID                  string    `yaml:"id" json:"id"`
	Name                string    `yaml:"name" json:"name"`
	Email               string    `yaml:"email" json:"email"`
	Phone               string    `yaml:"phone" json:"phone"`
	Country             string    `yaml:"country" json:"country"`
	Type                string    `yaml:"type" json:"type"`
	Status              string    `yaml:"status" json:"status"`
	TotalPaid           float64   `yaml:"total_paid" json:"totalPaid"`
	PaymentBehavior     string    `yaml:"payment_behavior" json:"paymentBehavior"`
	CreatedAt           time.Time `yaml:"created_at" json:"createdAt"`
	Portal              bool      `yaml:"portal,omitempty" json:"-"`
	ActiveSubscriptions int       `yaml:"-" json:"activeSubscriptions"`
}

// Slots tracks seat usage of a shared (1:N) license.
type Slots struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}

// Subscription is a customer's license to a product.
type Subscription struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	Product       string    `json:"product"`
	Plan          string    `json:"plan"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	StartDate     time.Time `json:"startDate"`
	ExpiryDate    time.Time `json:"expiryDate"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	InventoryID   string    `json:"inventoryId"`
	Slots         *Slots    `json:"slots,omitempty"`
}

// Invoice is a billing document for one subscription period.
type Invoice struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	SubscriptionID string    `json:"subscriptionId"`
	Product        string    `json:"product"`
	Period         string    `json:"period"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	DueDate        time.Time `json:"dueDate"`
	Status         string    `json:"status"`
	PaidAmount     *float64  `json:"paidAmount,omitempty"`
}

// Subscription statuses.
const (
	StatusActive    = "active"
	StatusExpiring  = "expiring"
	StatusOverdue   = "overdue"
	StatusSuspended = "suspended"
)

// Payment statuses, shared by subscriptions and invoices.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentOverdue = "overdue"
	PaymentPartial = "partial"
)

const (
	subscriptionCount = 55
	invoiceCount      = 40
	portalReserved    = 3
)

var (
	products = []string{
		"Adobe Creative Cloud", "ChatGPT Plus", "Microsoft 365", "Canva Pro", "Netflix Premium",
		"Spotify Family", "Figma", "Grammarly", "Zoom Pro", "CapCut Pro", "Freepik Premium",
		"Envato Elements", "Notion Pro", "Slack Business", "Trello Premium", "Miro Team",
		"Adobe Photoshop", "Premiere Pro", "After Effects", "Illustrator",
	}
	plans             = []string{"Mensual", "Trimestral", "Anual"}
	licenseTypes      = []string{"1:1", "1:N", "teams", "profile", "key"}
	statusWeights     = []string{StatusActive, StatusActive, StatusActive, StatusExpiring, StatusOverdue, StatusSuspended}
	paymentWeights    = []string{PaymentPaid, PaymentPaid, PaymentPaid, PaymentPending, PaymentOverdue, PaymentPartial}
	invoiceStatusPool = []string{PaymentPaid, PaymentPaid, PaymentPending, PaymentOverdue, PaymentPartial}
)

// LoadCustomers decodes the embedded customer list.
func LoadCustomers() ([]Customer, error) {
	var customers []Customer
	if err := yaml.Unmarshal(customersYAML, &customers); err != nil {
		return nil, fmt.Errorf("fixtures: decode customers: %w", err)
	}
	return customers, nil
}

// Generate builds a Catalog from the embedded customers. Dates are relative
// to now, truncated to the day.
func Generate(seed uint64, now time.Time) (*Catalog, error) {
	customers, err := LoadCustomers()
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var portal []int
	for i, c := range customers {
		if c.Portal {
			portal = append(portal, i)
		}
	}

	subs := make([]Subscription, 0, subscriptionCount)
	for i := 1; i <= subscriptionCount; i++ {
		idx := rng.IntN(len(customers))
		if len(portal) > 0 && i <= portalReserved {
			idx = portal[(i-1)%len(portal)]
		}
		subs = append(subs, newSubscription(rng, i, customers[idx], today))
	}

	invoices := make([]Invoice, 0, invoiceCount)
	for i := 1; i <= invoiceCount; i++ {
		invoices = append(invoices, newInvoice(rng, i, subs[rng.IntN(len(subs))], today))
	}

	inventory, history := newInventory(rng, subs, today)
	payments := newPayments(rng, invoices, today)

	active := make(map[string]int)
	for _, s := range subs {
		if s.Status == StatusActive || s.Status == StatusExpiring {
			active[s.CustomerID]++
		}
	}
	for i := range customers {
		customers[i].ActiveSubscriptions = active[customers[i].ID]
	}

	c := newCatalog(customers, subs, invoices, today)
	c.inventory = inventory
	c.history = history
	c.payments = payments
	return c, nil
}

func newSubscription(rng *rand.Rand, n int, customer Customer, today time.Time) Subscription {
	status := pick(rng, statusWeights)
	payment := pick(rng, paymentWeights)
	if status == StatusOverdue || status == StatusSuspended {
		payment = PaymentOverdue
	}

	var expiryDays int
	switch status {
	case StatusExpiring:
		expiryDays = rng.IntN(7) + 1
	case StatusOverdue:
		expiryDays = -rng.IntN(10) - 1
	default:
		expiryDays = rng.IntN(180) + 30
	}

	sub := Subscription{
		ID:            fmt.Sprintf("SUB-%03d", n),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Product:       pick(rng, products),
		Plan:          pick(rng, plans),
		Type:          pick(rng, licenseTypes),
		Status:        status,
		PaymentStatus: payment,
		StartDate:     time.Date(today.Year()-1, time.Month(rng.IntN(12)+1), rng.IntN(28)+1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:    today.AddDate(0, 0, expiryDays),
		Amount:        float64(rng.IntN(500) + 10),
		Currency:      "USD",
		InventoryID:   fmt.Sprintf("INV-%03d", n),
	}
	if rng.Float64() <= 0.3 {
		sub.Currency = "PEN"
	}
	if sub.Type == "1:N" {
		total := rng.IntN(10) + 3
		sub.Slots = &Slots{Used: rng.IntN(total) + 1, Total: total}
	}
	return sub
}

func newInvoice(rng *rand.Rand, n int, sub Subscription, today time.Time) Invoice {
	status := pick(rng, invoiceStatusPool)
	var dueDays int
	switch status {
	case PaymentOverdue:
		dueDays = -rng.IntN(15) - 1
	case PaymentPaid:
		dueDays = -rng.IntN(60)
	default:
		dueDays = rng.IntN(30)
	}
	inv := Invoice{
		ID:             fmt.Sprintf("INV-%d-%03d", today.Year(), n),
		CustomerID:     sub.CustomerID,
		CustomerName:   sub.CustomerName,
		SubscriptionID: sub.ID,
		Product:        sub.Product,
		Period:         periodLabel(today),
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		DueDate:        today.AddDate(0, 0, dueDays),
		Status:         status,
	}
	if status == PaymentPartial {
		paid := float64(int(inv.Amount * 0.6))
		inv.PaidAmount = &paid
	}
	return inv
}

var monthAbbrev = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

func periodLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthAbbrev[t.Month()-1], t.Year())
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
