package fixtures

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/artstock/console/internal/shared"
)

var (
	// ErrInventoryNotFound is returned for unknown inventory ids.
	ErrInventoryNotFound = errors.New("fixtures: inventory not found")
	// ErrInvalidRotation is returned when a rotation selects no usable slot.
	ErrInvalidRotation = errors.New("fixtures: invalid credential rotation")
	// ErrRotationNotShared is returned when rotating an individual license.
	ErrRotationNotShared = errors.New("fixtures: only shared accounts rotate credentials")
)

// License types.
const (
	TypeIndividual = "1:1"
	TypeShared     = "1:N"
)

// Inventory statuses.
const (
	InventoryAvailable = "available"
	InventoryAssigned  = "assigned"
	InventoryBlocked   = "blocked"
	InventoryCleaning  = "cleaning"
)

// Access history events.
const (
	EventAssignment   = "assignment"
	EventUpdate       = "update"
	EventSuspension   = "suspension"
	EventReactivation = "reactivation"
)

// InventorySlot is one seat of a shared account.
type InventorySlot struct {
	ID             string     `json:"id"`
	Number         int        `json:"slotNumber"`
	Status         string     `json:"status"`
	CustomerID     string     `json:"customerId,omitempty"`
	CustomerName   string     `json:"customerName,omitempty"`
	SubscriptionID string     `json:"subscriptionId,omitempty"`
	ExpiryDate     *time.Time `json:"expiryDate,omitempty"`
	AssignedAt     *time.Time `json:"assignedAt,omitempty"`
}

// Occupied reports whether a customer holds the slot.
func (s InventorySlot) Occupied() bool { return s.Status != InventoryAvailable }

// InventoryItem is a provider account or license held in stock. Passwords are
// never kept.
type InventoryItem struct {
	ID         string          `json:"id"`
	Product    string          `json:"product"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	Username   string          `json:"username"`
	Provider   string          `json:"provider"`
	Slots      []InventorySlot `json:"slots,omitempty"`
	ExpiryDate time.Time       `json:"expiryDate"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Shared reports whether the item is split into slots.
func (i InventoryItem) Shared() bool { return i.Type == TypeShared }

// SlotCounts counts the item's slots per status.
func (i InventoryItem) SlotCounts() map[string]int {
	out := make(map[string]int)
	for _, s := range i.Slots {
		out[s.Status]++
	}
	return out
}

// AccessEvent is one change to the access a subscription holds.
type AccessEvent struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscriptionId"`
	Event          string    `json:"event"`
	InventoryID    string    `json:"inventoryId"`
	Change         string    `json:"change"`
	Reason         string    `json:"reason,omitempty"`
	Executor       string    `json:"executor"`
	Timestamp      time.Time `json:"timestamp"`
}

var providers = map[string]string{
	"Adobe Creative Cloud": "Adobe Inc.",
	"Adobe Photoshop":      "Adobe Inc.",
	"Premiere Pro":         "Adobe Inc.",
	"After Effects":        "Adobe Inc.",
	"Illustrator":          "Adobe Inc.",
	"ChatGPT Plus":         "OpenAI",
	"Microsoft 365":        "Microsoft",
	"Canva Pro":            "Canva Pty Ltd",
	"Netflix Premium":      "Netflix Inc.",
	"Spotify Family":       "Spotify AB",
	"Figma":                "Figma Inc.",
	"Grammarly":            "Grammarly Inc.",
	"Zoom Pro":             "Zoom Video",
	"CapCut Pro":           "ByteDance",
	"Freepik Premium":      "Freepik Company",
	"Envato Elements":      "Envato Pty Ltd",
	"Notion Pro":           "Notion Labs",
	"Slack Business":       "Salesforce",
	"Trello Premium":       "Atlassian",
	"Miro Team":            "Miro",
}

const (
	stockAvailable = 6
	stockCleaning  = 2
	opsExecutor    = "admin@artstock.demo"
	systemExecutor = "sistema"
)

// newInventory assigns every subscription to a stock item. Shared (1:N)
// subscriptions of one product fill accounts slot by slot; their InventoryID
// and Slots are rewritten to match.
func newInventory(rng *rand.Rand, subs []Subscription, today time.Time) ([]InventoryItem, []AccessEvent) {
	var accounts, individual []InventoryItem
	var capacity []int
	open := make(map[string]int)
	for i := range subs {
		sub := &subs[i]
		if sub.Type != TypeShared {
			individual = append(individual, individualItem(rng, *sub))
			continue
		}
		idx, ok := open[sub.Product]
		if !ok || len(accounts[idx].Slots) == capacity[idx] {
			accounts = append(accounts, sharedAccount(rng, len(accounts)+1, sub.Product, today))
			capacity = append(capacity, rng.IntN(6)+5)
			idx = len(accounts) - 1
			open[sub.Product] = idx
		}
		acc := &accounts[idx]
		acc.Slots = append(acc.Slots, occupiedSlot(acc.ID, len(acc.Slots)+1, *sub))
		acc.Status = InventoryAssigned
		sub.InventoryID = acc.ID
	}
	usage := make(map[string]Slots, len(accounts))
	for i := range accounts {
		acc := &accounts[i]
		used := len(acc.Slots)
		for n := used + 1; n <= capacity[i]; n++ {
			acc.Slots = append(acc.Slots, InventorySlot{ID: slotID(acc.ID, n), Number: n, Status: InventoryAvailable})
		}
		usage[acc.ID] = Slots{Used: used, Total: capacity[i]}
	}
	for i := range subs {
		if u, ok := usage[subs[i].InventoryID]; ok && subs[i].Type == TypeShared {
			subs[i].Slots = &u
		}
	}

	for n := 1; n <= stockAvailable+stockCleaning; n++ {
		product := pick(rng, products)
		status := InventoryAvailable
		if n > stockAvailable {
			status = InventoryCleaning
		}
		individual = append(individual, InventoryItem{
			ID:         fmt.Sprintf("INV-STK%02d", n),
			Product:    product,
			Type:       TypeIndividual,
			Status:     status,
			Username:   fmt.Sprintf("stock%02d.%s@artstock.demo", n, slug(product)),
			Provider:   providers[product],
			ExpiryDate: today.AddDate(0, 0, rng.IntN(300)+60),
			CreatedAt:  today.AddDate(0, 0, -rng.IntN(90)-1),
		})
	}

	items := append(accounts, individual...)
	return items, accessHistory(rng, subs, today)
}

func sharedAccount(rng *rand.Rand, n int, product string, today time.Time) InventoryItem {
	return InventoryItem{
		ID:         fmt.Sprintf("INV-SH%03d", n),
		Product:    product,
		Type:       TypeShared,
		Status:     InventoryAvailable,
		Username:   fmt.Sprintf("artstock.%s%02d@gmail.com", slug(product), n),
		Provider:   providers[product],
		ExpiryDate: today.AddDate(0, 0, rng.IntN(300)+30),
		CreatedAt:  today.AddDate(0, 0, -rng.IntN(400)-30),
	}
}

func occupiedSlot(accountID string, n int, sub Subscription) InventorySlot {
	status := InventoryAssigned
	switch sub.Status {
	case StatusExpiring:
		status = StatusExpiring
	case StatusOverdue, StatusSuspended:
		status = StatusOverdue
	}
	expiry, assigned := sub.ExpiryDate, sub.StartDate
	return InventorySlot{
		ID:             slotID(accountID, n),
		Number:         n,
		Status:         status,
		CustomerID:     sub.CustomerID,
		CustomerName:   sub.CustomerName,
		SubscriptionID: sub.ID,
		ExpiryDate:     &expiry,
		AssignedAt:     &assigned,
	}
}

func individualItem(rng *rand.Rand, sub Subscription) InventoryItem {
	status := InventoryAssigned
	if sub.Status == StatusSuspended {
		status = InventoryBlocked
	}
	return InventoryItem{
		ID:         sub.InventoryID,
		Product:    sub.Product,
		Type:       sub.Type,
		Status:     status,
		Username:   fmt.Sprintf("license.%s@artstock.demo", strings.ToLower(sub.InventoryID)),
		Provider:   providers[sub.Product],
		ExpiryDate: sub.ExpiryDate.AddDate(0, rng.IntN(3), 0),
		CreatedAt:  sub.StartDate,
	}
}

func accessHistory(rng *rand.Rand, subs []Subscription, today time.Time) []AccessEvent {
	var events []AccessEvent
	add := func(e AccessEvent) {
		e.ID = fmt.Sprintf("AH-%03d", len(events)+1)
		events = append(events, e)
	}
	for _, s := range subs {
		add(AccessEvent{
			SubscriptionID: s.ID, Event: EventAssignment, InventoryID: s.InventoryID,
			Change: "Acceso inicial asignado", Executor: opsExecutor,
			Timestamp: s.StartDate.Add(time.Duration(rng.IntN(10)+8) * time.Hour),
		})
		if rng.IntN(5) == 0 {
			add(AccessEvent{
				SubscriptionID: s.ID, Event: EventUpdate, InventoryID: s.InventoryID,
				Change: "Credenciales actualizadas", Reason: "Política de seguridad", Executor: opsExecutor,
				Timestamp: s.StartDate.AddDate(0, 0, rng.IntN(60)+1),
			})
		}
		switch s.Status {
		case StatusSuspended:
			add(AccessEvent{
				SubscriptionID: s.ID, Event: EventSuspension, InventoryID: s.InventoryID,
				Change: "Acceso deshabilitado", Reason: "Mora > 3 días", Executor: systemExecutor,
				Timestamp: today.AddDate(0, 0, -rng.IntN(5)-1),
			})
		case StatusActive:
			if s.PaymentStatus == PaymentPaid && rng.IntN(8) == 0 {
				add(AccessEvent{
					SubscriptionID: s.ID, Event: EventReactivation, InventoryID: s.InventoryID,
					Change: "Acceso reactivado", Reason: "Pago recibido", Executor: opsExecutor,
					Timestamp: today.AddDate(0, 0, -rng.IntN(20)-1),
				})
			}
		}
	}
	slices.SortStableFunc(events, func(a, b AccessEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return events
}

func slotID(accountID string, n int) string {
	return fmt.Sprintf("%s-S%d", accountID, n)
}

func slug(product string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(product) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Inventory returns every stock item, shared accounts first.
func (c *Catalog) Inventory() []InventoryItem { return clone(c.inventory) }

// InventoryItem looks up a stock item by id.
func (c *Catalog) InventoryItem(id string) (InventoryItem, bool) {
	for _, it := range c.inventory {
		if it.ID == id {
			return it, true
		}
	}
	return InventoryItem{}, false
}

// InventoryFilter narrows the inventory list.
type InventoryFilter struct {
	// Shared selects 1:N accounts; otherwise every other license type.
	Shared bool
	Status string
	Search string
}

// FilterInventory returns the items matching f. Search matches id, product
// and username.
func (c *Catalog) FilterInventory(f InventoryFilter) []InventoryItem {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []InventoryItem
	for _, it := range c.inventory {
		if it.Shared() != f.Shared {
			continue
		}
		if f.Status != "" && f.Status != "all" && it.Status != f.Status {
			continue
		}
		if needle != "" && !containsFold(it.ID, needle) && !containsFold(it.Product, needle) && !containsFold(it.Username, needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// InventoryCounts counts items per status.
func InventoryCounts(items []InventoryItem) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		out[it.Status]++
	}
	return out
}

// AccessHistory returns the events touching inventoryID, newest first.
func (c *Catalog) AccessHistory(inventoryID string) []AccessEvent {
	var out []AccessEvent
	for _, e := range c.history {
		if e.InventoryID == inventoryID {
			out = append(out, e)
		}
	}
	return out
}

// RotationRequest selects the slots of a shared account whose holders
// receive new credentials.
type RotationRequest struct {
	InventoryID string   `validate:"required"`
	SlotIDs     []string `validate:"required,min=1,dive,required"`
}

// Rotation is the receipt of a credential rotation.
type Rotation struct {
	ID          string          `json:"id"`
	InventoryID string          `json:"inventoryId"`
	Product     string          `json:"product"`
	Username    string          `json:"username"`
	Notified    []InventorySlot `json:"notified"`
	// Kept counts occupied slots left on the old credentials.
	Kept      int       `json:"kept"`
	RotatedAt time.Time `json:"rotatedAt"`
}

var rotationValidator = validator.New()

// DefaultRotation lists the slots preselected for rotation: every assigned or
// expiring seat. Overdue holders are left out.
func DefaultRotation(item InventoryItem) []string {
	var out []string
	for _, s := range item.Slots {
		if s.Status == InventoryAssigned || s.Status == StatusExpiring {
			out = append(out, s.ID)
		}
	}
	return out
}

// RotateCredentials validates req and returns the receipt. Only occupied
// slots of a shared account can be selected. The catalog itself is not
// modified.
func (c *Catalog) RotateCredentials(req RotationRequest, at time.Time) (Rotation, error) {
	req.InventoryID = strings.TrimSpace(req.InventoryID)
	if err := rotationValidator.Struct(req); err != nil {
		return Rotation{}, fmt.Errorf("%w: %v", ErrInvalidRotation, err)
	}
	item, ok := c.InventoryItem(req.InventoryID)
	if !ok {
		return Rotation{}, ErrInventoryNotFound
	}
	if !item.Shared() {
		return Rotation{}, ErrRotationNotShared
	}

	selected := make(map[string]bool, len(req.SlotIDs))
	for _, id := range req.SlotIDs {
		selected[strings.TrimSpace(id)] = true
	}
	rot := Rotation{
		ID:          shared.NewID("ROT", at),
		InventoryID: item.ID,
		Product:     item.Product,
		Username:    fmt.Sprintf("artstock.%s.%s@gmail.com", slug(item.Product), at.UTC().Format("20060102")),
		RotatedAt:   at.UTC(),
	}
	for _, s := range item.Slots {
		switch {
		case !s.Occupied():
			if selected[s.ID] {
				return Rotation{}, fmt.Errorf("%w: slot %s is free", ErrInvalidRotation, s.ID)
			}
		case selected[s.ID]:
			rot.Notified = append(rot.Notified, s)
		default:
			rot.Kept++
		}
		delete(selected, s.ID)
	}
	if len(selected) > 0 {
		unknown := make([]string, 0, len(selected))
		for id := range selected {
			unknown = append(unknown, id)
		}
		slices.SortFunc(unknown, cmp.Compare[string])
		return Rotation{}, fmt.Errorf("%w: unknown slots %s", ErrInvalidRotation, strings.Join(unknown, ", "))
	}
	return rot, nil
}
