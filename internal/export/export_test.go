package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"fleximart/internal/cleanse"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	customers := []cleanse.Customer{{
		SurrogateID: 1, NaturalID: "C1", FirstName: "Amit", LastName: "Shah",
		Email: "amit.shah@unknown.com", Phone: "+91-9876543210",
		City: "Mumbai", RegistrationDate: "2023-01-15",
	}}
	products := []cleanse.Product{{
		SurrogateID: 1, NaturalID: "P1", Name: "Laptop", Category: "Electronics",
		Price: 150, StockQuantity: 0,
	}}
	sales := []cleanse.SalesLine{{
		SurrogateID: 1, NaturalID: "T1", CustomerNaturalID: "C1", ProductNaturalID: "P1",
		Quantity: 3, UnitPrice: 10, TransactionDate: "2023-05-01", Status: "Completed",
	}}

	paths, err := WriteAll(dir, customers, products, sales)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}

	recs := readAll(t, filepath.Join(dir, CustomersFile))
	if len(recs) != 2 {
		t.Fatalf("customers rows = %d, want header + 1", len(recs))
	}
	if recs[0][0] != "surrogate_id" {
		t.Fatalf("surrogate id not first: %v", recs[0])
	}
	want := []string{"1", "C1", "Amit", "Shah", "amit.shah@unknown.com", "+91-9876543210", "Mumbai", "2023-01-15"}
	for i, v := range want {
		if recs[1][i] != v {
			t.Fatalf("customers row: got %v, want %v", recs[1], want)
		}
	}

	recs = readAll(t, filepath.Join(dir, ProductsFile))
	if recs[1][4] != "150.00" || recs[1][5] != "0" {
		t.Fatalf("products row: %v", recs[1])
	}

	recs = readAll(t, filepath.Join(dir, SalesFile))
	if recs[1][5] != "10.00" || recs[1][7] != "Completed" {
		t.Fatalf("sales row: %v", recs[1])
	}
}

func TestWriteCustomers_NullsStayEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers_cleaned.csv")
	customers := []cleanse.Customer{{SurrogateID: 1, NaturalID: "C1", Email: "x@unknown.com"}}

	if err := WriteCustomers(path, customers); err != nil {
		t.Fatalf("WriteCustomers: %v", err)
	}
	recs := readAll(t, path)
	if recs[1][5] != "" || recs[1][7] != "" {
		t.Fatalf("null fields not empty: %v", recs[1])
	}
}
