// Package cleanse implements the per-dataset cleaning pipelines: deduplication,
// missing-value policy, field normalization, and surrogate-key assignment.
//
// Each pipeline is a pure function from a raw row collection to a cleansed
// entity collection plus a Report. Nothing is silently discarded: every fill
// and drop decision increments a counter.
package cleanse

import (
	"sort"
	"strconv"
	"strings"

	"fleximart/internal/normalize"
	"fleximart/internal/record"
)

// Column orders for the three raw datasets. Parser rows handed to the
// cleansers must be aligned to these.
var (
	CustomerColumns = []string{"customer_id", "first_name", "last_name", "email", "phone", "city", "registration_date"}
	ProductColumns  = []string{"product_id", "product_name", "category", "price", "stock_quantity"}
	SalesColumns    = []string{"transaction_id", "customer_id", "product_id", "quantity", "unit_price", "transaction_date", "status"}
)

// Customer is a cleansed customer entity. Empty Phone or RegistrationDate
// means the source value was missing or unusable; Email is always non-empty
// after cleansing (synthesized when missing).
type Customer struct {
	SurrogateID      int
	NaturalID        string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	City             string
	RegistrationDate string
}

// Product is a cleansed product entity. Price and StockQuantity are always
// set after cleansing; empty Category means the source value was missing.
type Product struct {
	SurrogateID   int
	NaturalID     string
	Name          string
	Category      string
	Price         float64
	StockQuantity int
}

// SalesLine is a cleansed sales transaction. CustomerNaturalID,
// ProductNaturalID, and TransactionDate are always present; records violating
// that are dropped during cleansing.
type SalesLine struct {
	SurrogateID       int
	NaturalID         string
	CustomerNaturalID string
	ProductNaturalID  string
	Quantity          int
	UnitPrice         float64
	TransactionDate   string
	Status            string
}

// Report counts every decision a cleansing pipeline made. Fields irrelevant
// to a given dataset stay zero.
type Report struct {
	Input  int
	Output int

	DuplicatesRemoved int
	DroppedMissingID  int

	EmailsFilled int

	PricesFilled int
	StockFilled  int

	DroppedMissingCustomer int
	DroppedMissingProduct  int
	DroppedInvalidDate     int

	BadNumerics int
}

// Log writes a one-line key=value summary for the dataset.
func (r Report) Log(logf func(format string, v ...any), dataset string) {
	logf("stage=cleanse dataset=%s input=%d output=%d dupes=%d dropped_missing_id=%d emails_filled=%d prices_filled=%d stock_filled=%d dropped_missing_customer=%d dropped_missing_product=%d dropped_invalid_date=%d bad_numerics=%d",
		dataset, r.Input, r.Output, r.DuplicatesRemoved, r.DroppedMissingID,
		r.EmailsFilled, r.PricesFilled, r.StockFilled,
		r.DroppedMissingCustomer, r.DroppedMissingProduct, r.DroppedInvalidDate, r.BadNumerics)
}

// Customers cleanses the raw customer rows: dedupe by natural id (first
// occurrence wins), synthesize missing emails, normalize phone and
// registration date, and assign surrogate ids 1..N in post-dedup order.
func Customers(rows []*record.Row) ([]Customer, Report) {
	var rep Report
	rep.Input = len(rows)

	seen := make(map[string]struct{}, len(rows))
	out := make([]Customer, 0, len(rows))

	for _, r := range rows {
		id, ok := r.String(0)
		if !ok {
			rep.DroppedMissingID++
			continue
		}
		if _, dup := seen[id]; dup {
			rep.DuplicatesRemoved++
			continue
		}
		seen[id] = struct{}{}

		c := Customer{
			NaturalID: id,
			FirstName: stringAt(r, 1),
			LastName:  stringAt(r, 2),
			Email:     stringAt(r, 3),
			City:      stringAt(r, 5),
		}
		if c.Email == "" {
			c.Email = synthesizeEmail(c.FirstName, c.LastName)
			rep.EmailsFilled++
		}
		if phone, ok := r.String(4); ok {
			c.Phone = normalize.Phone(phone)
		}
		if d, ok := r.String(6); ok {
			c.RegistrationDate = normalize.Date(d)
		}

		c.SurrogateID = len(out) + 1
		out = append(out, c)
	}

	rep.Output = len(out)
	return out, rep
}

// Products cleanses the raw product rows: dedupe by natural id, normalize
// category, fill missing prices via the category-median -> global-median
// fallback chain, fill missing stock with 0, and assign surrogate ids.
func Products(rows []*record.Row) ([]Product, Report) {
	var rep Report
	rep.Input = len(rows)

	seen := make(map[string]struct{}, len(rows))
	out := make([]Product, 0, len(rows))
	missingPrice := make([]int, 0) // indexes into out needing a price fill

	for _, r := range rows {
		id, ok := r.String(0)
		if !ok {
			rep.DroppedMissingID++
			continue
		}
		if _, dup := seen[id]; dup {
			rep.DuplicatesRemoved++
			continue
		}
		seen[id] = struct{}{}

		p := Product{
			NaturalID: id,
			Name:      stringAt(r, 1),
		}
		if cat, ok := r.String(2); ok {
			p.Category = normalize.Category(cat)
		}

		priceOK := false
		if raw, ok := r.String(3); ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
				p.Price = v
				priceOK = true
			} else {
				rep.BadNumerics++
			}
		}
		if raw, ok := r.String(4); ok {
			if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
				p.StockQuantity = v
			} else {
				rep.BadNumerics++
				rep.StockFilled++
			}
		} else {
			rep.StockFilled++
		}

		p.SurrogateID = len(out) + 1
		if !priceOK {
			// Mark for fill once medians are computable over the full
			// post-dedup collection. Price stays negative as a sentinel so
			// median computation can tell "present" from "pending".
			p.Price = -1
			missingPrice = append(missingPrice, len(out))
		}
		out = append(out, p)
	}

	fillPrices(out, missingPrice, &rep)

	rep.Output = len(out)
	return out, rep
}

// Sales cleanses the raw sales rows: dedupe by transaction id, drop records
// missing a customer or product natural id, normalize the transaction date and
// drop records whose date fails to normalize, then assign surrogate ids over
// the survivors in survival order.
func Sales(rows []*record.Row) ([]SalesLine, Report) {
	var rep Report
	rep.Input = len(rows)

	seen := make(map[string]struct{}, len(rows))
	out := make([]SalesLine, 0, len(rows))

	for _, r := range rows {
		id, ok := r.String(0)
		if !ok {
			rep.DroppedMissingID++
			continue
		}
		if _, dup := seen[id]; dup {
			rep.DuplicatesRemoved++
			continue
		}
		seen[id] = struct{}{}

		custID, ok := r.String(1)
		if !ok {
			rep.DroppedMissingCustomer++
			continue
		}
		prodID, ok := r.String(2)
		if !ok {
			rep.DroppedMissingProduct++
			continue
		}

		rawDate, _ := r.String(5)
		date := normalize.Date(rawDate)
		if date == "" {
			rep.DroppedInvalidDate++
			continue
		}

		l := SalesLine{
			NaturalID:         id,
			CustomerNaturalID: custID,
			ProductNaturalID:  prodID,
			TransactionDate:   date,
			Status:            stringAt(r, 6),
		}
		if raw, ok := r.String(3); ok {
			if v, err := strconv.Atoi(raw); err == nil {
				l.Quantity = v
			} else {
				rep.BadNumerics++
			}
		}
		if raw, ok := r.String(4); ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				l.UnitPrice = v
			} else {
				rep.BadNumerics++
			}
		}

		l.SurrogateID = len(out) + 1
		out = append(out, l)
	}

	rep.Output = len(out)
	return out, rep
}

// fillPrices applies the ordered fallback chain to every product marked as
// missing a price: category median first, then global median, then zero.
// Strategies are evaluated lazily and the first one yielding a value wins.
func fillPrices(products []Product, missing []int, rep *Report) {
	if len(missing) == 0 {
		return
	}

	byCategory := make(map[string][]float64)
	var global []float64
	for _, p := range products {
		if p.Price < 0 {
			continue
		}
		global = append(global, p.Price)
		if p.Category != "" {
			byCategory[p.Category] = append(byCategory[p.Category], p.Price)
		}
	}

	for _, i := range missing {
		strategies := []func() (float64, bool){
			func() (float64, bool) { return median(byCategory[products[i].Category]) },
			func() (float64, bool) { return median(global) },
			func() (float64, bool) { return 0, true },
		}
		for _, s := range strategies {
			if v, ok := s(); ok {
				products[i].Price = v
				break
			}
		}
		rep.PricesFilled++
	}
}

// median returns the median of vs, averaging the two middle values for an
// even-length input. ok is false for an empty input.
func median(vs []float64) (float64, bool) {
	if len(vs) == 0 {
		return 0, false
	}
	cp := append([]float64(nil), vs...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid], true
	}
	return (cp[mid-1] + cp[mid]) / 2, true
}

func synthesizeEmail(first, last string) string {
	return strings.ToLower(first) + "." + strings.ToLower(last) + "@unknown.com"
}

func stringAt(r *record.Row, i int) string {
	s, _ := r.String(i)
	return s
}
