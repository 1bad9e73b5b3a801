package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"fleximart/internal/metrics"
	"fleximart/internal/metrics/datadog"
	"fleximart/internal/metrics/prompush"
	"fleximart/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "fleximart/internal/storage/all"
)

// main is the entry point for the ETL binary. It resolves configuration from
// an optional JSON file plus flag overrides, optionally initializes a metrics
// backend, and executes one pipeline run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool

		customersPath string
		productsPath  string
		salesPath     string
		outDir        string
		noSave        bool
		loadDB        bool

		dbKind     string
		dsn        string
		dbHost     string
		dbUser     string
		dbPassword string
		dbName     string
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path (optional)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")

	flag.StringVar(&customersPath, "customers", "data/customers_raw.csv", "raw customers CSV path")
	flag.StringVar(&productsPath, "products", "data/products_raw.csv", "raw products CSV path")
	flag.StringVar(&salesPath, "sales", "data/sales_raw.csv", "raw sales CSV path")
	flag.StringVar(&outDir, "out", "output", "directory for cleansed CSV output")
	flag.BoolVar(&noSave, "no-save", false, "skip writing cleansed CSV output")
	flag.BoolVar(&loadDB, "load-db", false, "load the relational store after cleansing")

	flag.StringVar(&dbKind, "db-kind", "mysql", "storage backend kind (mysql, postgres, sqlite, mssql)")
	flag.StringVar(&dsn, "dsn", "", "storage DSN (overrides host/user/password/database)")
	flag.StringVar(&dbHost, "host", "localhost:3306", "database host:port (mysql DSN assembly)")
	flag.StringVar(&dbUser, "user", "root", "database user (mysql DSN assembly)")
	flag.StringVar(&dbPassword, "password", "", "database password (falls back to MYSQL_PASSWORD, then prompt)")
	flag.StringVar(&dbName, "database", "fleximart", "database name (mysql DSN assembly)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg := pipeline.Config{
		Job:        "fleximart_etl",
		Customers:  customersPath,
		Products:   productsPath,
		Sales:      salesPath,
		OutDir:     outDir,
		SaveOutput: !noSave,
		LoadDB:     loadDB,
		Storage:    pipeline.StorageConfig{Kind: dbKind, DSN: dsn},
	}
	if cfgPath != "" {
		fileCfg, err := pipeline.Load(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
		cfg = mergeFlagOverrides(fileCfg, cfg)
	}

	if cfg.LoadDB && cfg.Storage.DSN == "" && cfg.Storage.Kind == "mysql" {
		password, err := resolvePassword(dbPassword)
		if err != nil {
			fatalf("password: %v", err)
		}
		cfg.Storage.DSN = mysqlDSN(dbHost, dbUser, password, dbName)
	}

	issues := pipeline.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if pipeline.HasError(issues) {
		log.Printf("Configuration is invalid")
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid")
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(cfg.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, cfg.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		// The Datadog backend buffers metrics and submits periodically, plus
		// one final time at shutdown via Close().
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    cfg.Job,
			Tags:       extraTags,
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v job_name=%v tags=%v", backendName, cfg.Job, extraTags)
			metrics.SetBackend(b)

			// Close() stops the periodic flush loop, then performs a final Flush().
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	var logger pipeline.Logger
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	} else {
		logger = log.New(os.Stderr, "", 0)
	}

	p := pipeline.New(cfg, logger)
	sum, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("summary run_id=%s customers=%d products=%d sales=%d orders=%d order_items=%d skipped=%d",
		sum.RunID, sum.Customers, sum.Products, sum.Sales, sum.Orders, sum.OrderItems, sum.ItemsSkipped)
	if sum.Verification != nil && !sum.Verification.OK() {
		log.Printf("verification reported mismatches; inspect the counts above")
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// mergeFlagOverrides lays explicitly-set flags over a file config. Flags left
// at their defaults do not override file values.
func mergeFlagOverrides(fileCfg, flagCfg pipeline.Config) pipeline.Config {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	out := fileCfg
	if set["customers"] {
		out.Customers = flagCfg.Customers
	}
	if set["products"] {
		out.Products = flagCfg.Products
	}
	if set["sales"] {
		out.Sales = flagCfg.Sales
	}
	if set["out"] {
		out.OutDir = flagCfg.OutDir
	}
	if set["no-save"] {
		out.SaveOutput = flagCfg.SaveOutput
	}
	if set["load-db"] {
		out.LoadDB = flagCfg.LoadDB
	}
	if set["db-kind"] {
		out.Storage.Kind = flagCfg.Storage.Kind
	}
	if set["dsn"] {
		out.Storage.DSN = flagCfg.Storage.DSN
	}
	return out
}

// resolvePassword resolves the database password: flag value, then
// MYSQL_PASSWORD from the environment, then an interactive prompt.
func resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		return v, nil
	}

	fmt.Fprint(os.Stderr, "MySQL password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// mysqlDSN assembles a go-sql-driver DSN from its parts.
func mysqlDSN(host, user, password, database string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", user, password, host, database)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
