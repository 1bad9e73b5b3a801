// Package verify reconciles persisted row counts against counts derived
// purely from the in-memory cleansed data. A mismatch is a warning for the
// operator (it usually signals silent FK mapping loss), never an error.
package verify

import (
	"context"

	"fleximart/internal/cleanse"
	"fleximart/internal/loader"
	"fleximart/internal/storage"
)

// Counts holds the expected or persisted row count per target table.
type Counts struct {
	Customers  int64
	Products   int64
	Orders     int64
	OrderItems int64
}

// Mismatch is one table whose persisted count differs from the expected one.
type Mismatch struct {
	Table     string
	Expected  int64
	Persisted int64
}

// MatchReport is the outcome of one verification pass.
type MatchReport struct {
	Expected   Counts
	Persisted  Counts
	Mismatches []Mismatch
}

// OK reports whether every table matched.
func (r MatchReport) OK() bool { return len(r.Mismatches) == 0 }

// Log emits the report as key=value lines through logf.
func (r MatchReport) Log(logf func(format string, v ...any)) {
	logf("stage=verify customers=%d/%d products=%d/%d orders=%d/%d order_items=%d/%d ok=%v",
		r.Persisted.Customers, r.Expected.Customers,
		r.Persisted.Products, r.Expected.Products,
		r.Persisted.Orders, r.Expected.Orders,
		r.Persisted.OrderItems, r.Expected.OrderItems,
		r.OK())
	for _, m := range r.Mismatches {
		logf("stage=verify warn=count_mismatch table=%s expected=%d persisted=%d", m.Table, m.Expected, m.Persisted)
	}
}

// ExpectedCounts derives target counts from the cleansed collections.
// Expected orders count distinct (customer natural id, transaction date)
// groups over the cleansed sales lines; expected order items count the lines
// themselves. Lines dropped during cleansing are already absent here, so they
// never inflate the expectation.
func ExpectedCounts(customers []cleanse.Customer, products []cleanse.Product, sales []cleanse.SalesLine) Counts {
	type orderKey struct {
		customer string
		date     string
	}
	groups := make(map[orderKey]struct{}, len(sales))
	for _, s := range sales {
		groups[orderKey{customer: s.CustomerNaturalID, date: s.TransactionDate}] = struct{}{}
	}
	return Counts{
		Customers:  int64(len(customers)),
		Products:   int64(len(products)),
		Orders:     int64(len(groups)),
		OrderItems: int64(len(sales)),
	}
}

// Run counts the persisted rows and compares them against expected.
func Run(ctx context.Context, client storage.Client, expected Counts) (MatchReport, error) {
	rep := MatchReport{Expected: expected}

	tables := []struct {
		name      string
		expected  int64
		persisted *int64
	}{
		{loader.TableCustomers, expected.Customers, &rep.Persisted.Customers},
		{loader.TableProducts, expected.Products, &rep.Persisted.Products},
		{loader.TableOrders, expected.Orders, &rep.Persisted.Orders},
		{loader.TableOrderItems, expected.OrderItems, &rep.Persisted.OrderItems},
	}
	for _, tb := range tables {
		n, err := client.CountRows(ctx, tb.name)
		if err != nil {
			return rep, err
		}
		*tb.persisted = n
		if n != tb.expected {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Table: tb.name, Expected: tb.expected, Persisted: n})
		}
	}
	return rep, nil
}
