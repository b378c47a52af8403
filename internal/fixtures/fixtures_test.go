package fixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func catalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Generate(42, refDate)
	require.NoError(t, err)
	return c
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := catalog(t)
	b := catalog(t)
	assert.Equal(t, a.Subscriptions(), b.Subscriptions())
	assert.Equal(t, a.Invoices(), b.Invoices())

	other, err := Generate(7, refDate)
	require.NoError(t, err)
	assert.NotEqual(t, a.Subscriptions(), other.Subscriptions())
}

func TestGenerateShapes(t *testing.T) {
	c := catalog(t)
	subs := c.Subscriptions()
	require.Len(t, subs, subscriptionCount)
	assert.Len(t, c.Invoices(), invoiceCount)
	assert.Equal(t, "SUB-001", subs[0].ID)

	for _, s := range subs {
		switch s.Status {
		case StatusOverdue:
			assert.True(t, s.ExpiryDate.Before(c.Today()), s.ID)
			assert.Equal(t, PaymentOverdue, s.PaymentStatus, s.ID)
		case StatusSuspended:
			assert.Equal(t, PaymentOverdue, s.PaymentStatus, s.ID)
		case StatusExpiring:
			days := s.ExpiryDate.Sub(c.Today()).Hours() / 24
			assert.True(t, days >= 1 && days <= 7, s.ID)
		}
		if s.Type == "1:N" {
			require.NotNil(t, s.Slots, s.ID)
			assert.LessOrEqual(t, s.Slots.Used, s.Slots.Total)
		}
	}
	for _, inv := range c.Invoices() {
		if inv.Status == PaymentPartial {
			require.NotNil(t, inv.PaidAmount)
			assert.Less(t, *inv.PaidAmount, inv.Amount)
		}
		assert.Equal(t, "Ene 2025", inv.Period)
	}
}

func TestPortalCustomerHasSubscriptions(t *testing.T) {
	c := catalog(t)
	cu, ok := c.CustomerByEmail("USER@artstock.demo")
	require.True(t, ok)
	subs := c.FilterSubscriptions(SubscriptionFilter{CustomerID: cu.ID})
	assert.GreaterOrEqual(t, len(subs), portalReserved)
}

func TestFilterSubscriptions(t *testing.T) {
	c := catalog(t)
	counts := SubscriptionCounts(c.Subscriptions())
	assert.Len(t, c.FilterSubscriptions(SubscriptionFilter{Status: StatusActive}), counts[StatusActive])
	assert.Len(t, c.FilterSubscriptions(SubscriptionFilter{Status: "all"}), subscriptionCount)

	got := c.FilterSubscriptions(SubscriptionFilter{Search: "sub-010"})
	require.Len(t, got, 1)
	assert.Equal(t, "SUB-010", got[0].ID)
}

func TestFilterCustomers(t *testing.T) {
	c := catalog(t)
	resellers := c.FilterCustomers(CustomerFilter{Type: "reseller"})
	assert.Equal(t, CustomerCounts(c.Customers())["reseller"], len(resellers))
	got := c.FilterCustomers(CustomerFilter{Search: "TECHSOFT"})
	require.Len(t, got, 1)
	assert.Equal(t, "CLI-002", got[0].ID)
}

func TestFilterInvoicesOutstanding(t *testing.T) {
	c := catalog(t)
	for _, inv := range c.FilterInvoices(InvoiceFilter{Outstanding: true}) {
		assert.NotEqual(t, PaymentPaid, inv.Status)
	}
}

func TestCountBadges(t *testing.T) {
	c := catalog(t)
	counts, err := c.CountBadges(context.Background())
	require.NoError(t, err)
	k := c.KPIs()
	assert.Equal(t, k.ExpiringSubscriptions, counts[BadgeSubscriptions])
	assert.Equal(t, k.OverdueInvoices, counts[BadgeBilling])
	assert.Equal(t, k.OverdueSubscriptions+k.SuspendedSubscriptions, counts[BadgeAlerts])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.CountBadges(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordPayment(t *testing.T) {
	c := catalog(t)
	var target Subscription
	for _, s := range c.Subscriptions() {
		if s.PaymentStatus != PaymentPaid {
			target = s
			break
		}
	}
	require.NotEmpty(t, target.ID)

	p, err := c.RecordPayment(PaymentRequest{SubscriptionID: target.ID, Amount: 25, Method: "Yape"}, refDate)
	require.NoError(t, err)
	assert.Equal(t, target.Currency, p.Currency)
	assert.Equal(t, "yape", p.Method)
	assert.Regexp(t, `^PAY-[0-9A-Z]+$`, p.ID)

	_, err = c.RecordPayment(PaymentRequest{SubscriptionID: target.ID, Amount: 0, Method: "cash"}, refDate)
	assert.True(t, errors.Is(err, ErrInvalidPayment))

	_, err = c.RecordPayment(PaymentRequest{SubscriptionID: "SUB-999", Amount: 10, Method: "cash"}, refDate)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	_, err = c.RecordPayment(PaymentRequest{SubscriptionID: target.ID, Amount: 10, Method: "bitcoin"}, refDate)
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestRowFields(t *testing.T) {
	s := Subscription{ID: "SUB-1"}
	_, ok := s.Field("slots")
	assert.False(t, ok)
	s.Slots = &Slots{Used: 2, Total: 5}
	v, ok := s.Field("slots")
	assert.True(t, ok)
	assert.Equal(t, "2/5", v)

	_, ok = Invoice{}.Field("paidAmount")
	assert.False(t, ok)
	_, ok = Customer{}.Field("unknown")
	assert.False(t, ok)
}
