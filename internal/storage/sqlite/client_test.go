package sqlite

import (
	"strings"
	"testing"

	"fleximart/internal/storage"
)

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("products", []string{"product_name", "price"}, 2)
	want := `INSERT INTO "products" ("product_name", "price") VALUES (?,?), (?,?)`
	if got != want {
		t.Fatalf("buildInsertSQL:\n got %q\nwant %q", got, want)
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	ddl, err := buildCreateTableSQL(storage.TableSpec{
		Name:       "orders",
		PrimaryKey: &storage.PrimaryKeySpec{Name: "order_id", Type: "serial"},
		Columns: []storage.ColumnSpec{
			{Name: "customer_id", Type: "INT", References: "customers(customer_id)"},
			{Name: "status", Type: "VARCHAR(20)", Nullable: true, Default: "'Pending'"},
		},
	})
	if err != nil {
		t.Fatalf("buildCreateTableSQL error: %v", err)
	}

	for _, want := range []string{
		`"order_id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"customer_id" INT NOT NULL REFERENCES customers(customer_id)`,
		`"status" VARCHAR(20) DEFAULT 'Pending'`,
	} {
		if !strings.Contains(ddl, want) {
			t.Fatalf("ddl missing %q:\n%s", want, ddl)
		}
	}
}
