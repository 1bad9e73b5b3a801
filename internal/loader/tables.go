package loader

import "fleximart/internal/storage"

// Table names, in parent-before-child order for creation/loading. Purging
// walks the same list backwards.
const (
	TableCustomers  = "customers"
	TableProducts   = "products"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// RetailTables describes the target relational schema. The specs are
// backend-neutral; each storage backend translates types like "serial" into
// its own dialect.
func RetailTables() []storage.TableSpec {
	return []storage.TableSpec{
		{
			Name:       TableCustomers,
			PrimaryKey: &storage.PrimaryKeySpec{Name: "customer_id", Type: "serial"},
			Columns: []storage.ColumnSpec{
				{Name: "first_name", Type: "VARCHAR(50)"},
				{Name: "last_name", Type: "VARCHAR(50)"},
				{Name: "email", Type: "VARCHAR(100)"},
				{Name: "phone", Type: "VARCHAR(20)", Nullable: true},
				{Name: "city", Type: "VARCHAR(50)", Nullable: true},
				{Name: "registration_date", Type: "DATE", Nullable: true},
			},
			Constraints: []storage.ConstraintSpec{
				{Kind: "unique", Columns: []string{"email"}},
			},
		},
		{
			Name:       TableProducts,
			PrimaryKey: &storage.PrimaryKeySpec{Name: "product_id", Type: "serial"},
			Columns: []storage.ColumnSpec{
				{Name: "product_name", Type: "VARCHAR(100)"},
				{Name: "category", Type: "VARCHAR(50)", Nullable: true},
				{Name: "price", Type: "DECIMAL(10,2)"},
				{Name: "stock_quantity", Type: "INT"},
			},
		},
		{
			Name:       TableOrders,
			PrimaryKey: &storage.PrimaryKeySpec{Name: "order_id", Type: "serial"},
			Columns: []storage.ColumnSpec{
				{Name: "customer_id", Type: "INT", References: "customers(customer_id)"},
				{Name: "order_date", Type: "DATE"},
				{Name: "total_amount", Type: "DECIMAL(10,2)"},
				{Name: "status", Type: "VARCHAR(20)", Nullable: true, Default: "'Pending'"},
			},
		},
		{
			Name:       TableOrderItems,
			PrimaryKey: &storage.PrimaryKeySpec{Name: "order_item_id", Type: "serial"},
			Columns: []storage.ColumnSpec{
				{Name: "order_id", Type: "INT", References: "orders(order_id)"},
				{Name: "product_id", Type: "INT", References: "products(product_id)"},
				{Name: "quantity", Type: "INT"},
				{Name: "unit_price", Type: "DECIMAL(10,2)"},
				{Name: "subtotal", Type: "DECIMAL(10,2)"},
			},
		},
	}
}
