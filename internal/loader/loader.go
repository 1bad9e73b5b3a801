// Package loader persists cleansed entities into the relational store in
// foreign-key order and captures the store-assigned surrogate ids. Each load
// step is a single transaction inside the storage client: it either fully
// succeeds or is rolled back and reported as a LoadError.
package loader

import (
	"context"
	"fmt"

	"fleximart/internal/aggregate"
	"fleximart/internal/cleanse"
	"fleximart/internal/storage"
)

// Logger is the minimal logging seam; *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// LoadError marks the failure of one load step. The step name tells the
// operator which table the rollback applied to.
type LoadError struct {
	Step string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load step %s failed: %v", e.Step, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader owns the store session for the duration of the load phase.
type Loader struct {
	client storage.Client
	log    Logger
}

func New(client storage.Client, log Logger) *Loader {
	return &Loader{client: client, log: log}
}

// EnsureSchema creates the target tables if they do not exist yet.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	if err := l.client.EnsureTables(ctx, RetailTables()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Purge deletes existing rows child-before-parent so reruns are idempotent at
// the table level. Purging in any other order risks FK failures.
func (l *Loader) Purge(ctx context.Context) error {
	for _, table := range []string{TableOrderItems, TableOrders, TableCustomers, TableProducts} {
		n, err := l.client.DeleteAll(ctx, table)
		if err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
		l.log.Printf("stage=purge table=%s deleted=%d", table, n)
	}
	return nil
}

// LoadCustomers inserts every cleansed customer and maps natural ids to the
// store-assigned ids. On any error the step is rolled back and the returned
// map is empty.
func (l *Loader) LoadCustomers(ctx context.Context, customers []cleanse.Customer) (storage.IDMap, error) {
	columns := []string{"first_name", "last_name", "email", "phone", "city", "registration_date"}
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{
			c.FirstName, c.LastName, c.Email,
			nullable(c.Phone), nullable(c.City), nullable(c.RegistrationDate),
		})
	}

	ids, err := l.client.InsertReturningIDs(ctx, TableCustomers, columns, rows, "customer_id")
	if err != nil {
		return storage.IDMap{}, &LoadError{Step: TableCustomers, Err: err}
	}

	m := make(map[string]int64, len(customers))
	for i, c := range customers {
		m[c.NaturalID] = ids[i]
	}
	l.log.Printf("stage=load table=%s inserted=%d", TableCustomers, len(ids))
	return storage.NewIDMap(m), nil
}

// LoadProducts inserts every cleansed product; same contract as LoadCustomers.
func (l *Loader) LoadProducts(ctx context.Context, products []cleanse.Product) (storage.IDMap, error) {
	columns := []string{"product_name", "category", "price", "stock_quantity"}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{p.Name, nullable(p.Category), p.Price, p.StockQuantity})
	}

	ids, err := l.client.InsertReturningIDs(ctx, TableProducts, columns, rows, "product_id")
	if err != nil {
		return storage.IDMap{}, &LoadError{Step: TableProducts, Err: err}
	}

	m := make(map[string]int64, len(products))
	for i, p := range products {
		m[p.NaturalID] = ids[i]
	}
	l.log.Printf("stage=load table=%s inserted=%d", TableProducts, len(ids))
	return storage.NewIDMap(m), nil
}

// LoadOrders inserts aggregated orders and maps each pre-persistence local id
// to the store-assigned order id. Must run after LoadCustomers.
func (l *Loader) LoadOrders(ctx context.Context, orders []aggregate.Order) (storage.OrderIDMap, error) {
	columns := []string{"customer_id", "order_date", "total_amount", "status"}
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{o.CustomerPersistedID, o.OrderDate, o.TotalAmount, o.Status})
	}

	ids, err := l.client.InsertReturningIDs(ctx, TableOrders, columns, rows, "order_id")
	if err != nil {
		return storage.OrderIDMap{}, &LoadError{Step: TableOrders, Err: err}
	}

	m := make(map[int]int64, len(orders))
	for i, o := range orders {
		m[o.LocalID] = ids[i]
	}
	l.log.Printf("stage=load table=%s inserted=%d", TableOrders, len(ids))
	return storage.NewOrderIDMap(m), nil
}

// LoadOrderItems rewrites each item's local order id to the persisted one and
// bulk-inserts the resolved items. An unresolved local id is a per-record
// skip, not a step failure; items are independent once orders exist. Must run
// after LoadOrders and LoadProducts.
func (l *Loader) LoadOrderItems(ctx context.Context, items []aggregate.OrderItem, orderIDs storage.OrderIDMap) (inserted int64, skipped int, err error) {
	columns := []string{"order_id", "product_id", "quantity", "unit_price", "subtotal"}
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		orderID, ok := orderIDs.Lookup(it.OrderLocalID)
		if !ok {
			skipped++
			l.log.Printf("stage=load table=%s skip=unresolved_order local_id=%d", TableOrderItems, it.OrderLocalID)
			continue
		}
		rows = append(rows, []any{orderID, it.ProductPersistedID, it.Quantity, it.UnitPrice, it.Subtotal})
	}

	inserted, err = l.client.InsertRows(ctx, TableOrderItems, columns, rows)
	if err != nil {
		return 0, skipped, &LoadError{Step: TableOrderItems, Err: err}
	}
	l.log.Printf("stage=load table=%s inserted=%d skipped=%d", TableOrderItems, inserted, skipped)
	return inserted, skipped, nil
}

// nullable maps the empty-string null sentinel used by the cleansed entities
// to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
