// Package pipeline orchestrates one ETL run: extract the three raw CSV
// datasets, cleanse them, write the cleansed side-output, then load the
// relational store in foreign-key order and verify the persisted counts.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"fleximart/internal/aggregate"
	"fleximart/internal/cleanse"
	"fleximart/internal/export"
	"fleximart/internal/loader"
	"fleximart/internal/metrics"
	csvparser "fleximart/internal/parser/csv"
	"fleximart/internal/record"
	"fleximart/internal/storage"
	"fleximart/internal/verify"
)

// Logger is the minimal logging interface used by the pipeline.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Pipeline executes runs for one Config. The NewClient seam exists so tests
// can substitute a fake store.
type Pipeline struct {
	Config Config
	Logger Logger

	NewClient func(ctx context.Context, cfg storage.Config) (storage.Client, error)
}

// New builds a Pipeline with the default storage factory.
func New(cfg Config, log Logger) *Pipeline {
	return &Pipeline{
		Config: cfg,
		Logger: log,
		NewClient: func(ctx context.Context, scfg storage.Config) (storage.Client, error) {
			return storage.New(ctx, scfg)
		},
	}
}

// Summary reports what one run did.
type Summary struct {
	RunID string

	Customers int
	Products  int
	Sales     int

	Orders     int
	OrderItems int

	ItemsSkipped int

	ExportedFiles []string

	// Verification is nil when the load phase did not run.
	Verification *verify.MatchReport
}

// Run executes the full pipeline. Cleansing failures are fatal (bad input
// paths, unreadable files); a load step failure stops the load phase but the
// cleansed side-output already written stays valid. Verification mismatches
// are warnings, not errors.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	logf := p.logf()
	sum := &Summary{RunID: runID}

	logf("stage=start run_id=%s job=%s", runID, p.Config.Job)

	customers, products, sales, err := p.cleanseAll(ctx, logf)
	if err != nil {
		return sum, err
	}
	sum.Customers = len(customers)
	sum.Products = len(products)
	sum.Sales = len(sales)

	if p.Config.SaveOutput {
		paths, err := export.WriteAll(p.Config.OutDir, customers, products, sales)
		if err != nil {
			return sum, fmt.Errorf("export: %w", err)
		}
		sum.ExportedFiles = paths
		logf("stage=export dir=%s files=%d", p.Config.OutDir, len(paths))
	}

	if !p.Config.LoadDB {
		logf("stage=done run_id=%s load=skipped", runID)
		return sum, nil
	}

	if err := p.load(ctx, logf, sum, customers, products, sales); err != nil {
		return sum, err
	}

	logf("stage=done run_id=%s", runID)
	return sum, nil
}

// cleanseAll extracts and cleanses the three raw datasets.
func (p *Pipeline) cleanseAll(ctx context.Context, logf func(string, ...any)) ([]cleanse.Customer, []cleanse.Product, []cleanse.SalesLine, error) {
	opt := csvparser.DefaultOptions()

	customerRows, err := p.extract(ctx, "customers", p.Config.Customers, cleanse.CustomerColumns, opt, logf)
	if err != nil {
		return nil, nil, nil, err
	}
	customers, rep := cleanse.Customers(customerRows)
	freeRows(customerRows)
	rep.Log(logf, "customers")
	metrics.IncCounter("etl_records_total", float64(len(customers)), metrics.Labels{"kind": "customers"})

	productRows, err := p.extract(ctx, "products", p.Config.Products, cleanse.ProductColumns, opt, logf)
	if err != nil {
		return nil, nil, nil, err
	}
	products, rep := cleanse.Products(productRows)
	freeRows(productRows)
	rep.Log(logf, "products")
	metrics.IncCounter("etl_records_total", float64(len(products)), metrics.Labels{"kind": "products"})

	salesRows, err := p.extract(ctx, "sales", p.Config.Sales, cleanse.SalesColumns, opt, logf)
	if err != nil {
		return nil, nil, nil, err
	}
	sales, rep := cleanse.Sales(salesRows)
	freeRows(salesRows)
	rep.Log(logf, "sales")
	metrics.IncCounter("etl_records_total", float64(len(sales)), metrics.Labels{"kind": "sales"})

	return customers, products, sales, nil
}

func (p *Pipeline) extract(ctx context.Context, dataset, path string, columns []string, opt csvparser.Options, logf func(string, ...any)) ([]*record.Row, error) {
	start := time.Now()
	rows, err := csvparser.CollectRows(ctx, path, columns, opt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observeStep("extract_"+dataset, status, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", dataset, err)
	}
	logf("stage=extract dataset=%s rows=%d", dataset, len(rows))
	return rows, nil
}

// load runs the FK-ordered load phase and verification.
func (p *Pipeline) load(ctx context.Context, logf func(string, ...any), sum *Summary, customers []cleanse.Customer, products []cleanse.Product, sales []cleanse.SalesLine) error {
	client, err := p.NewClient(ctx, storage.Config{
		Kind: p.Config.Storage.Kind,
		DSN:  os.ExpandEnv(p.Config.Storage.DSN),
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer client.Close()

	lg := p.Logger
	if lg == nil {
		lg = nopLogger{}
	}
	ld := loader.New(client, lg)

	if err := ld.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := ld.Purge(ctx); err != nil {
		return err
	}

	customerIDs, err := p.loadStep("customers", func() (storage.IDMap, error) {
		return ld.LoadCustomers(ctx, customers)
	})
	if err != nil {
		return err
	}
	productIDs, err := p.loadStep("products", func() (storage.IDMap, error) {
		return ld.LoadProducts(ctx, products)
	})
	if err != nil {
		return err
	}

	orders, items, aggRep := aggregate.BuildOrders(sales, customerIDs, productIDs)
	aggRep.Log(logf)
	sum.Orders = len(orders)
	sum.OrderItems = len(items)

	start := time.Now()
	orderIDs, err := ld.LoadOrders(ctx, orders)
	if err != nil {
		observeStep("load_orders", "error", time.Since(start))
		return err
	}
	observeStep("load_orders", "ok", time.Since(start))

	start = time.Now()
	inserted, skipped, err := ld.LoadOrderItems(ctx, items, orderIDs)
	if err != nil {
		observeStep("load_order_items", "error", time.Since(start))
		return err
	}
	observeStep("load_order_items", "ok", time.Since(start))
	sum.OrderItems = int(inserted)
	sum.ItemsSkipped = skipped

	expected := verify.ExpectedCounts(customers, products, sales)
	report, err := verify.Run(ctx, client, expected)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	report.Log(logf)
	sum.Verification = &report

	return nil
}

// loadStep wraps one id-mapping load step with timing metrics.
func (p *Pipeline) loadStep(name string, step func() (storage.IDMap, error)) (storage.IDMap, error) {
	start := time.Now()
	m, err := step()
	status := "ok"
	if err != nil {
		status = "error"
	}
	observeStep("load_"+name, status, time.Since(start))
	return m, err
}

func observeStep(step, status string, d time.Duration) {
	labels := metrics.Labels{"step": step, "status": status}
	metrics.IncCounter("etl_step_total", 1, labels)
	metrics.ObserveHistogram("etl_step_duration_seconds", d.Seconds(), labels)
}

func (p *Pipeline) logf() func(format string, v ...any) {
	if p.Logger == nil {
		return func(string, ...any) {}
	}
	return p.Logger.Printf
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

func freeRows(rows []*record.Row) {
	for _, r := range rows {
		r.Free()
	}
}
