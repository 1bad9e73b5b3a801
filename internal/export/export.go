// Package export writes the cleansed collections to CSV files so a run's
// transform output survives independently of the load phase.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fleximart/internal/cleanse"
)

// File names written into the output directory.
const (
	CustomersFile = "customers_cleaned.csv"
	ProductsFile  = "products_cleaned.csv"
	SalesFile     = "sales_cleaned.csv"
)

// WriteAll writes the three cleansed datasets into dir, creating it if
// needed. Returns the paths written.
func WriteAll(dir string, customers []cleanse.Customer, products []cleanse.Product, sales []cleanse.SalesLine) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, 3)
	writes := []struct {
		name  string
		write func(path string) error
	}{
		{CustomersFile, func(p string) error { return WriteCustomers(p, customers) }},
		{ProductsFile, func(p string) error { return WriteProducts(p, products) }},
		{SalesFile, func(p string) error { return WriteSales(p, sales) }},
	}
	for _, w := range writes {
		path := filepath.Join(dir, w.name)
		if err := w.write(path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCustomers writes cleansed customers, surrogate id first.
func WriteCustomers(path string, customers []cleanse.Customer) error {
	header := []string{"surrogate_id", "customer_id", "first_name", "last_name", "email", "phone", "city", "registration_date"}
	return writeCSV(path, header, len(customers), func(i int) []string {
		c := customers[i]
		return []string{
			strconv.Itoa(c.SurrogateID), c.NaturalID, c.FirstName, c.LastName,
			c.Email, c.Phone, c.City, c.RegistrationDate,
		}
	})
}

// WriteProducts writes cleansed products, surrogate id first.
func WriteProducts(path string, products []cleanse.Product) error {
	header := []string{"surrogate_id", "product_id", "product_name", "category", "price", "stock_quantity"}
	return writeCSV(path, header, len(products), func(i int) []string {
		p := products[i]
		return []string{
			strconv.Itoa(p.SurrogateID), p.NaturalID, p.Name, p.Category,
			strconv.FormatFloat(p.Price, 'f', 2, 64), strconv.Itoa(p.StockQuantity),
		}
	})
}

// WriteSales writes cleansed sales lines, surrogate id first.
func WriteSales(path string, sales []cleanse.SalesLine) error {
	header := []string{"surrogate_id", "transaction_id", "customer_id", "product_id", "quantity", "unit_price", "transaction_date", "status"}
	return writeCSV(path, header, len(sales), func(i int) []string {
		s := sales[i]
		return []string{
			strconv.Itoa(s.SurrogateID), s.NaturalID, s.CustomerNaturalID, s.ProductNaturalID,
			strconv.Itoa(s.Quantity), strconv.FormatFloat(s.UnitPrice, 'f', 2, 64),
			s.TransactionDate, s.Status,
		}
	})
}

func writeCSV(path string, header []string, n int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
