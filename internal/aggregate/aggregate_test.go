package aggregate

import (
	"testing"

	"fleximart/internal/cleanse"
	"fleximart/internal/storage"
)

func idMap(pairs map[string]int64) storage.IDMap {
	return storage.NewIDMap(pairs)
}

func line(cust, prod, date, status string, qty int, price float64) cleanse.SalesLine {
	return cleanse.SalesLine{
		CustomerNaturalID: cust,
		ProductNaturalID:  prod,
		Quantity:          qty,
		UnitPrice:         price,
		TransactionDate:   date,
		Status:            status,
	}
}

func TestBuildOrders_SingleLineGroup(t *testing.T) {
	customers := idMap(map[string]int64{"C1": 11})
	products := idMap(map[string]int64{"P1": 21})

	orders, items, rep := BuildOrders(
		[]cleanse.SalesLine{line("C1", "P1", "2023-05-01", "Completed", 3, 10.00)},
		customers, products)

	if len(orders) != 1 || len(items) != 1 {
		t.Fatalf("got %d orders, %d items; want 1 and 1", len(orders), len(items))
	}
	o := orders[0]
	if o.LocalID != 1 || o.CustomerPersistedID != 11 || o.OrderDate != "2023-05-01" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if o.TotalAmount != 30.00 {
		t.Fatalf("total = %v, want 30.00", o.TotalAmount)
	}
	if o.Status != "Completed" {
		t.Fatalf("status = %q", o.Status)
	}
	it := items[0]
	if it.OrderLocalID != 1 || it.ProductPersistedID != 21 || it.Subtotal != 30.00 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if rep.Orders != 1 || rep.Items != 1 || rep.DroppedCustomer != 0 || rep.DroppedProduct != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestBuildOrders_GroupsByCustomerAndDate(t *testing.T) {
	customers := idMap(map[string]int64{"C1": 1, "C2": 2})
	products := idMap(map[string]int64{"P1": 10, "P2": 20})

	lines := []cleanse.SalesLine{
		line("C1", "P1", "2023-05-01", "Completed", 1, 5.00),
		line("C2", "P1", "2023-05-01", "Pending", 1, 7.00),
		line("C1", "P2", "2023-05-01", "Completed", 2, 3.00), // joins the first group
		line("C1", "P1", "2023-05-02", "Pending", 1, 1.00),   // same customer, new date
	}
	orders, items, _ := BuildOrders(lines, customers, products)

	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(orders))
	}
	// First-encounter order defines local ids.
	if orders[0].LocalID != 1 || orders[0].CustomerPersistedID != 1 || orders[0].TotalAmount != 11.00 {
		t.Fatalf("order 1: %+v", orders[0])
	}
	if orders[1].LocalID != 2 || orders[1].CustomerPersistedID != 2 {
		t.Fatalf("order 2: %+v", orders[1])
	}
	if orders[2].LocalID != 3 || orders[2].OrderDate != "2023-05-02" {
		t.Fatalf("order 3: %+v", orders[2])
	}
	// Items keep line order and point at the right order.
	wantOrderIDs := []int{1, 2, 1, 3}
	for i, it := range items {
		if it.OrderLocalID != wantOrderIDs[i] {
			t.Fatalf("item %d order local id = %d, want %d", i, it.OrderLocalID, wantOrderIDs[i])
		}
	}
}

func TestBuildOrders_TotalEqualsItemSubtotals(t *testing.T) {
	customers := idMap(map[string]int64{"C1": 1, "C2": 2})
	products := idMap(map[string]int64{"P1": 10, "P2": 20})

	lines := []cleanse.SalesLine{
		line("C1", "P1", "2023-01-01", "Completed", 2, 9.99),
		line("C1", "P2", "2023-01-01", "Completed", 1, 0.02),
		line("C2", "P2", "2023-01-05", "Pending", 7, 3.50),
		line("C1", "P1", "2023-02-01", "Cancelled", 4, 12.25),
	}
	orders, items, _ := BuildOrders(lines, customers, products)

	sums := make(map[int]float64)
	for _, it := range items {
		sums[it.OrderLocalID] += it.Subtotal
	}
	for _, o := range orders {
		if got := sums[o.LocalID]; got != o.TotalAmount {
			t.Fatalf("order %d: item subtotals sum to %v, order total is %v", o.LocalID, got, o.TotalAmount)
		}
	}
}

func TestBuildOrders_StatusMode(t *testing.T) {
	customers := idMap(map[string]int64{"C1": 1})
	products := idMap(map[string]int64{"P1": 10})

	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"majority_wins", []string{"Pending", "Completed", "Completed"}, "Completed"},
		{"tie_first_encountered", []string{"Pending", "Completed"}, "Pending"},
		{"single", []string{"Cancelled"}, "Cancelled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var lines []cleanse.SalesLine
			for _, s := range tc.statuses {
				lines = append(lines, line("C1", "P1", "2023-05-01", s, 1, 1.00))
			}
			orders, _, _ := BuildOrders(lines, customers, products)
			if len(orders) != 1 {
				t.Fatalf("got %d orders, want 1", len(orders))
			}
			if orders[0].Status != tc.want {
				t.Fatalf("status = %q, want %q", orders[0].Status, tc.want)
			}
		})
	}
}

func TestBuildOrders_DropsUnresolvedIDs(t *testing.T) {
	customers := idMap(map[string]int64{"C1": 1})
	products := idMap(map[string]int64{"P1": 10})

	lines := []cleanse.SalesLine{
		line("C1", "P1", "2023-05-01", "Completed", 1, 5.00),
		line("C9", "P1", "2023-05-01", "Completed", 1, 5.00), // unknown customer
		line("C1", "P9", "2023-05-01", "Completed", 1, 5.00), // unknown product
	}
	orders, items, rep := BuildOrders(lines, customers, products)

	if len(orders) != 1 || len(items) != 1 {
		t.Fatalf("got %d orders, %d items; want 1 and 1", len(orders), len(items))
	}
	if rep.DroppedCustomer != 1 || rep.DroppedProduct != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if orders[0].TotalAmount != 5.00 {
		t.Fatalf("dropped lines leaked into total: %v", orders[0].TotalAmount)
	}
}
