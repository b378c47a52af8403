package fixtures

import "fmt"

// RowKey implements grid.Row.
func (s Subscription) RowKey() string { return s.ID }

// Field implements grid.Row.
func (s Subscription) Field(key string) (any, bool) {
	switch key {
	case "id":
		return s.ID, true
	case "customerId":
		return s.CustomerID, true
	case "customerName":
		return s.CustomerName, true
	case "product":
		return s.Product, true
	case "plan":
		return s.Plan, true
	case "type":
		return s.Type, true
	case "status":
		return s.Status, true
	case "paymentStatus":
		return s.PaymentStatus, true
	case "startDate":
		return s.StartDate, true
	case "expiryDate":
		return s.ExpiryDate, true
	case "amount":
		return s.Amount, true
	case "currency":
		return s.Currency, true
	case "inventoryId":
		return s.InventoryID, true
	case "slots":
		if s.Slots == nil {
			return nil, false
		}
		return fmt.Sprintf("%d/%d", s.Slots.Used, s.Slots.Total), true
	}
	return nil, false
}

// RowKey implements grid.Row.
func (c Customer) RowKey() string { return c.ID }

// Field implements grid.Row.
func (c Customer) Field(key string) (any, bool) {
	switch key {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "email":
		return c.Email, true
	case "phone":
		return c.Phone, true
	case "country":
		return c.Country, true
	case "type":
		return c.Type, true
	case "status":
		return c.Status, true
	case "totalPaid":
		return c.TotalPaid, true
	case "activeSubscriptions":
		return c.ActiveSubscriptions, true
	case "paymentBehavior":
		return c.PaymentBehavior, true
	case "createdAt":
		return c.CreatedAt, true
	}
	return nil, false
}

// RowKey implements grid.Row.
func (i Invoice) RowKey() string { return i.ID }

// Field implements grid.Row.
func (i Invoice) Field(key string) (any, bool) {
	switch key {
	case "id":
		return i.ID, true
	case "customerId":
		return i.CustomerID, true
	case "customerName":
		return i.CustomerName, true
	case "subscriptionId":
		return i.SubscriptionID, true
	case "product":
		return i.Product, true
	case "period":
		return i.Period, true
	case "amount":
		return i.Amount, true
	case "currency":
		return i.Currency, true
	case "dueDate":
		return i.DueDate, true
	case "status":
		return i.Status, true
	case "paidAmount":
		if i.PaidAmount == nil {
			return nil, false
		}
		return *i.PaidAmount, true
	}
	return nil, false
}

// RowKey implements grid.Row.
func (i InventoryItem) RowKey() string { return i.ID }

// Field implements grid.Row.
func (i InventoryItem) Field(key string) (any, bool) {
	switch key {
	case "id":
		return i.ID, true
	case "product":
		return i.Product, true
	case "type":
		return i.Type, true
	case "status":
		return i.Status, true
	case "username":
		return i.Username, true
	case "provider":
		return i.Provider, true
	case "expiryDate":
		return i.ExpiryDate, true
	case "createdAt":
		return i.CreatedAt, true
	}
	if !i.Shared() {
		return nil, false
	}
	counts := i.SlotCounts()
	switch key {
	case "slots":
		return fmt.Sprintf("%d/%d", len(i.Slots)-counts[InventoryAvailable], len(i.Slots)), true
	case "freeSlots":
		return counts[InventoryAvailable], true
	case "expiringSlots":
		return counts[StatusExpiring], true
	case "overdueSlots":
		return counts[StatusOverdue], true
	}
	return nil, false
}

// RowKey implements grid.Row.
func (p Payment) RowKey() string { return p.ID }

// Field implements grid.Row.
func (p Payment) Field(key string) (any, bool) {
	switch key {
	case "id":
		return p.ID, true
	case "customerId":
		return p.CustomerID, true
	case "customerName":
		return p.CustomerName, true
	case "subscriptionId":
		return p.SubscriptionID, true
	case "invoiceId":
		if p.InvoiceID == "" {
			return nil, false
		}
		return p.InvoiceID, true
	case "amount":
		return p.Amount, true
	case "currency":
		return p.Currency, true
	case "method":
		return MethodLabel(p.Method), true
	case "status":
		return p.Status, true
	case "reference":
		if p.Reference == "" {
			return nil, false
		}
		return p.Reference, true
	case "recordedAt":
		return p.RecordedAt, true
	}
	return nil, false
}

// RowKey implements grid.Row.
func (a Alert) RowKey() string { return a.ID }

// Field implements grid.Row.
func (a Alert) Field(key string) (any, bool) {
	switch key {
	case "id":
		return a.ID, true
	case "type":
		return a.Type, true
	case "severity":
		return a.Severity, true
	case "message":
		return a.Message, true
	case "detail":
		return a.Detail, true
	case "entityId":
		return a.EntityID, true
	case "date":
		return a.Date, true
	}
	return nil, false
}

// RowKey implements grid.Row.
func (p Product) RowKey() string { return p.ID }

// Field implements grid.Row.
func (p Product) Field(key string) (any, bool) {
	switch key {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "sku":
		return p.SKU, true
	case "type":
		return p.Type, true
	case "provider":
		return p.Provider, true
	case "totalQty":
		return p.TotalQty, true
	case "available":
		return p.Available, true
	case "sold":
		return p.Sold, true
	case "expiring":
		return p.Expiring, true
	case "defaultPrice":
		if p.DefaultPrice == 0 {
			return nil, false
		}
		return p.DefaultPrice, true
	case "currency":
		return p.Currency, true
	case "status":
		return p.Status, true
	}
	return nil, false
}

// StatusLabel is the Spanish display name of a record status.
func StatusLabel(status string) string {
	switch status {
	case StatusActive:
		return "Activa"
	case StatusExpiring:
		return "Por vencer"
	case StatusOverdue:
		return "Vencida"
	case StatusSuspended:
		return "Suspendida"
	case PaymentPaid:
		return "Pagada"
	case PaymentPending:
		return "Pendiente"
	case PaymentPartial:
		return "Parcial"
	case PaymentConfirmed:
		return "Confirmado"
	case InventoryAvailable:
		return "Disponible"
	case InventoryAssigned:
		return "Asignado"
	case InventoryBlocked:
		return "Bloqueado"
	case InventoryCleaning:
		return "En limpieza"
	case "inactive":
		return "Inactivo"
	case "contact":
		return "Contacto"
	case "company":
		return "Empresa"
	case "reseller":
		return "Reseller"
	}
	return status
}
