package verify

import (
	"context"
	"testing"

	"fleximart/internal/cleanse"
	"fleximart/internal/storage"
)

type fakeCounter struct {
	counts map[string]int64
}

func (f fakeCounter) Close() {}

func (f fakeCounter) EnsureTables(context.Context, []storage.TableSpec) error { return nil }

func (f fakeCounter) DeleteAll(context.Context, string) (int64, error) { return 0, nil }

func (f fakeCounter) InsertReturningIDs(context.Context, string, []string, [][]any, string) ([]int64, error) {
	return nil, nil
}
func (f fakeCounter) InsertRows(context.Context, string, []string, [][]any) (int64, error) {
	return 0, nil
}
func (f fakeCounter) CountRows(_ context.Context, table string) (int64, error) {
	return f.counts[table], nil
}

func TestExpectedCounts_GroupsByCustomerAndDate(t *testing.T) {
	sales := []cleanse.SalesLine{
		{CustomerNaturalID: "C1", TransactionDate: "2023-05-01"},
		{CustomerNaturalID: "C1", TransactionDate: "2023-05-01"}, // same group
		{CustomerNaturalID: "C1", TransactionDate: "2023-05-02"},
		{CustomerNaturalID: "C2", TransactionDate: "2023-05-01"},
	}
	got := ExpectedCounts(
		make([]cleanse.Customer, 3),
		make([]cleanse.Product, 5),
		sales)

	if got.Customers != 3 || got.Products != 5 {
		t.Fatalf("entity counts: %+v", got)
	}
	if got.Orders != 3 {
		t.Fatalf("orders = %d, want 3", got.Orders)
	}
	if got.OrderItems != 4 {
		t.Fatalf("order items = %d, want 4", got.OrderItems)
	}
}

func TestExpectedCounts_DroppedSalesExcluded(t *testing.T) {
	// A sales row dropped at cleanse time (e.g. missing customer id) never
	// reaches this function, so only the surviving line counts.
	sales := []cleanse.SalesLine{
		{CustomerNaturalID: "C1", TransactionDate: "2023-05-01"},
	}
	got := ExpectedCounts(nil, nil, sales)
	if got.Orders != 1 || got.OrderItems != 1 {
		t.Fatalf("counts = %+v, want one order and one item", got)
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	client := fakeCounter{counts: map[string]int64{
		"customers":   3,
		"products":    5,
		"orders":      2, // one order lost to a failed FK lookup
		"order_items": 4,
	}}
	expected := Counts{Customers: 3, Products: 5, Orders: 3, OrderItems: 4}

	rep, err := Run(context.Background(), client, expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.OK() {
		t.Fatal("expected a mismatch")
	}
	if len(rep.Mismatches) != 1 {
		t.Fatalf("mismatches = %+v", rep.Mismatches)
	}
	m := rep.Mismatches[0]
	if m.Table != "orders" || m.Expected != 3 || m.Persisted != 2 {
		t.Fatalf("mismatch = %+v", m)
	}
}

func TestRun_AllMatch(t *testing.T) {
	client := fakeCounter{counts: map[string]int64{
		"customers": 1, "products": 1, "orders": 1, "order_items": 1,
	}}
	expected := Counts{Customers: 1, Products: 1, Orders: 1, OrderItems: 1}

	rep, err := Run(context.Background(), client, expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.OK() {
		t.Fatalf("unexpected mismatches: %+v", rep.Mismatches)
	}
	if rep.Persisted != expected {
		t.Fatalf("persisted = %+v, want %+v", rep.Persisted, expected)
	}
}
