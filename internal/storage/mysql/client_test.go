package mysql

import (
	"strings"
	"testing"

	"fleximart/internal/storage"
)

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("customers", []string{"first_name", "email"}, 2)
	want := "INSERT INTO `customers` (`first_name`, `email`) VALUES (?,?), (?,?)"
	if got != want {
		t.Fatalf("buildInsertSQL:\n got %q\nwant %q", got, want)
	}
}

func TestBuildCreateTableSQL_ForeignKeysAreTableLevel(t *testing.T) {
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

	// InnoDB ignores column-level REFERENCES; the clause must be table-level.
	if !strings.Contains(ddl, "FOREIGN KEY (`customer_id`) REFERENCES `customers`(`customer_id`)") {
		t.Fatalf("missing table-level FK clause:\n%s", ddl)
	}
	if !strings.Contains(ddl, "`order_id` INT PRIMARY KEY AUTO_INCREMENT") {
		t.Fatalf("serial pk not translated:\n%s", ddl)
	}
	if !strings.Contains(ddl, "DEFAULT 'Pending'") {
		t.Fatalf("missing default clause:\n%s", ddl)
	}
}

func TestBuildCreateTableSQL_UniqueConstraint(t *testing.T) {
	ddl, err := buildCreateTableSQL(storage.TableSpec{
		Name:        "customers",
		PrimaryKey:  &storage.PrimaryKeySpec{Name: "customer_id", Type: "serial"},
		Columns:     []storage.ColumnSpec{{Name: "email", Type: "VARCHAR(100)"}},
		Constraints: []storage.ConstraintSpec{{Kind: "unique", Columns: []string{"email"}}},
	})
	if err != nil {
		t.Fatalf("buildCreateTableSQL error: %v", err)
	}
	if !strings.Contains(ddl, "UNIQUE (`email`)") {
		t.Fatalf("missing unique constraint:\n%s", ddl)
	}
}

func TestSplitReference(t *testing.T) {
	tbl, col, err := splitReference("customers(customer_id)")
	if err != nil || tbl != "customers" || col != "customer_id" {
		t.Fatalf("splitReference = %q, %q, %v", tbl, col, err)
	}
	if _, _, err := splitReference("customers"); err == nil {
		t.Fatal("expected error for malformed reference")
	}
}
