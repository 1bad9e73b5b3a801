// Package aggregate reshapes cleansed flat sales lines into orders and order
// items. Surrogate ids for customers and products are resolved through the
// maps produced by the load phase; this package never invents persisted ids.
package aggregate

import (
	"fleximart/internal/cleanse"
	"fleximart/internal/storage"
)

// Order is one grouped order, pre-persistence. LocalID is assigned 1..N in
// first-encounter group order and is rewritten to the store-assigned id by
// the loader.
type Order struct {
	LocalID             int
	CustomerPersistedID int64
	OrderDate           string
	TotalAmount         float64
	Status              string
}

// OrderItem is one sales line attached to its order via OrderLocalID.
type OrderItem struct {
	OrderLocalID       int
	ProductPersistedID int64
	Quantity           int
	UnitPrice          float64
	Subtotal           float64
}

// Report counts aggregation decisions for one run.
type Report struct {
	Input           int
	DroppedCustomer int // customer natural id not in the persisted map
	DroppedProduct  int // product natural id not in the persisted map
	Orders          int
	Items           int
}

// Log emits the report as key=value lines through logf.
func (r Report) Log(logf func(format string, v ...any)) {
	logf("stage=aggregate input=%d dropped_customer=%d dropped_product=%d orders=%d items=%d",
		r.Input, r.DroppedCustomer, r.DroppedProduct, r.Orders, r.Items)
}

type groupKey struct {
	customerID int64
	date       string
}

type group struct {
	orderIdx int
	// status values in line order, for the frequency vote
	statuses []string
}

// BuildOrders groups lines by (persisted customer id, transaction date).
// Lines whose customer or product id cannot be resolved are dropped and
// counted, never silently absorbed. Orders are returned in first-encounter
// group order with LocalID 1..N; items keep the input line order.
func BuildOrders(lines []cleanse.SalesLine, customers, products storage.IDMap) ([]Order, []OrderItem, Report) {
	rep := Report{Input: len(lines)}

	orders := make([]Order, 0, len(lines))
	items := make([]OrderItem, 0, len(lines))
	groups := make(map[groupKey]*group)

	for _, line := range lines {
		customerID, ok := customers.Lookup(line.CustomerNaturalID)
		if !ok {
			rep.DroppedCustomer++
			continue
		}
		productID, ok := products.Lookup(line.ProductNaturalID)
		if !ok {
			rep.DroppedProduct++
			continue
		}

		subtotal := float64(line.Quantity) * line.UnitPrice

		key := groupKey{customerID: customerID, date: line.TransactionDate}
		g, seen := groups[key]
		if !seen {
			orders = append(orders, Order{
				LocalID:             len(orders) + 1,
				CustomerPersistedID: customerID,
				OrderDate:           line.TransactionDate,
			})
			g = &group{orderIdx: len(orders) - 1}
			groups[key] = g
		}
		orders[g.orderIdx].TotalAmount += subtotal
		g.statuses = append(g.statuses, line.Status)

		items = append(items, OrderItem{
			OrderLocalID:       orders[g.orderIdx].LocalID,
			ProductPersistedID: productID,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			Subtotal:           subtotal,
		})
	}

	for _, g := range groups {
		orders[g.orderIdx].Status = modeStatus(g.statuses)
	}

	rep.Orders = len(orders)
	rep.Items = len(items)
	return orders, items, rep
}

// modeStatus picks the most frequent value; ties go to the value encountered
// first, so the result is stable across runs with identical input order.
func modeStatus(statuses []string) string {
	counts := make(map[string]int, len(statuses))
	best, bestCount := "", 0
	for _, s := range statuses {
		counts[s]++
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}
