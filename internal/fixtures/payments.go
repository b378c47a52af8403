package fixtures

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

// PaymentConfirmed marks a payment the bank or wallet has settled. Payments
// awaiting confirmation use PaymentPending.
const PaymentConfirmed = "confirmed"

var referencePrefix = map[string]string{
	"transfer": "BCP",
	"card":     "TXN",
	"yape":     "YAPE",
	"plin":     "PLIN",
}

// newPayments derives the payment ledger from the invoices: settled and
// partial invoices carry a confirmed payment, and about a third of pending
// invoices have a transfer awaiting confirmation.
func newPayments(rng *rand.Rand, invoices []Invoice, today time.Time) []Payment {
	var out []Payment
	for _, inv := range invoices {
		p := Payment{
			SubscriptionID: inv.SubscriptionID,
			CustomerID:     inv.CustomerID,
			CustomerName:   inv.CustomerName,
			InvoiceID:      inv.ID,
			Currency:       inv.Currency,
			Status:         PaymentConfirmed,
		}
		switch inv.Status {
		case PaymentPaid:
			p.Amount = inv.Amount
			p.Method = PaymentMethods[rng.IntN(len(PaymentMethods))].Value
		case PaymentPartial:
			if inv.PaidAmount == nil {
				continue
			}
			p.Amount = *inv.PaidAmount
			p.Method = PaymentMethods[rng.IntN(len(PaymentMethods))].Value
		case PaymentPending:
			if rng.IntN(3) != 0 {
				continue
			}
			p.Amount = inv.Amount
			p.Method = "transfer"
			p.Status = PaymentPending
		default:
			continue
		}
		at := inv.DueDate.AddDate(0, 0, -rng.IntN(5))
		if at.After(today) {
			at = today
		}
		p.RecordedAt = at.Add(time.Duration(rng.IntN(10)+8) * time.Hour)
		if prefix, ok := referencePrefix[p.Method]; ok {
			p.Reference = fmt.Sprintf("%s-%06d", prefix, rng.IntN(1_000_000))
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b Payment) int {
		return b.RecordedAt.Compare(a.RecordedAt)
	})
	for i := range out {
		out[i].ID = fmt.Sprintf("PAY-%03d", len(out)-i)
	}
	return out
}

// Payments returns the payment ledger, newest first.
func (c *Catalog) Payments() []Payment { return clone(c.payments) }

// PaymentFilter narrows the payment ledger.
type PaymentFilter struct {
	Method string
	Status string
	Search string
}

// FilterPayments returns the payments matching f. Search matches id,
// customer name, reference and invoice id.
func (c *Catalog) FilterPayments(f PaymentFilter) []Payment {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Payment
	for _, p := range c.payments {
		if f.Method != "" && f.Method != "all" && p.Method != f.Method {
			continue
		}
		if f.Status != "" && f.Status != "all" && p.Status != f.Status {
			continue
		}
		if needle != "" && !containsFold(p.ID, needle) && !containsFold(p.CustomerName, needle) &&
			!containsFold(p.Reference, needle) && !containsFold(p.InvoiceID, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PaymentCounts counts payments per method.
func PaymentCounts(payments []Payment) map[string]int {
	out := make(map[string]int)
	for _, p := range payments {
		out[p.Method]++
	}
	return out
}

// PaymentTotals summarises a ledger.
type PaymentTotals struct {
	Confirmed map[string]float64
	Pending   int
}

// TotalPayments sums confirmed amounts per currency and counts pending ones.
func TotalPayments(payments []Payment) PaymentTotals {
	t := PaymentTotals{Confirmed: map[string]float64{}}
	for _, p := range payments {
		if p.Status == PaymentPending {
			t.Pending++
			continue
		}
		t.Confirmed[p.Currency] += p.Amount
	}
	return t
}

// MethodLabel is the display name of a payment method.
func MethodLabel(method string) string {
	for _, m := range PaymentMethods {
		if m.Value == method {
			return m.Label
		}
	}
	return method
}
