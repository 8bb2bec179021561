package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/ingest"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/stockpilot/backend-go/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

const (
	productsFile     = "products.csv"
	productSalesFile = "product_sales.csv"
	ordersFile       = "orders.csv"
)

type saleRow struct {
	productID string
	sale      domain.SaleRecord
}

func loaderConfig(c *cli.Context, name string) ingest.LoaderConfig {
	cfg := ingest.DefaultLoaderConfig(name)
	if n := c.Int("workers"); n > 0 {
		cfg.WorkerCount = n
	}
	return cfg
}

func seedProducts(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	src, err := newSeedSource(c)
	if err != nil {
		return err
	}
	repo := postgres.NewIngestRepository(postgres.Wrap(sqlx.NewDb(db, "pgx")))
	loc := config.Load().Analytics.Location()
	start := time.Now()

	path, err := src.fetch(c.Context, productsFile)
	if err != nil {
		return fmt.Errorf("products file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	products, err := ingest.ReadProducts(f, loc)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	res, err := ingest.Load(c.Context, loaderConfig(c, "products"), products, repo.UpsertProduct)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("count", res.Loaded).Int("retried", res.Retried).Dur("elapsed", time.Since(start)).Msg("products seeded")

	path, err = src.fetch(c.Context, productSalesFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Log.Warn().Str("file", productSalesFile).Msg("no sales history file, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("sales history file: %w", err)
	}
	f, err = os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	history, err := ingest.ReadSales(f, loc)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var rows []saleRow
	for productID, sales := range history {
		for _, sale := range sales {
			rows = append(rows, saleRow{productID: productID, sale: sale})
		}
	}
	res, err = ingest.Load(c.Context, loaderConfig(c, "product_sales"), rows, func(ctx context.Context, r *saleRow) error {
		return repo.UpsertSale(ctx, r.productID, r.sale)
	})
	if err != nil {
		return err
	}
	logger.Log.Info().Int("count", res.Loaded).Int("products", len(history)).Msg("sales history seeded")
	return nil
}

func seedOrders(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	src, err := newSeedSource(c)
	if err != nil {
		return err
	}
	repo := postgres.NewIngestRepository(postgres.Wrap(sqlx.NewDb(db, "pgx")))
	start := time.Now()

	path, err := src.fetch(c.Context, ordersFile)
	if err != nil {
		return fmt.Errorf("orders file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	orders, err := ingest.ReadOrders(f, config.Load().Analytics.Location())
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	res, err := ingest.Load(c.Context, loaderConfig(c, "orders"), orders, repo.UpsertOrder)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("count", res.Loaded).Int("retried", res.Retried).Dur("elapsed", time.Since(start)).Msg("orders seeded")
	return nil
}

func runMigrations(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(c.String("migrations-dir"), "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %s", c.String("migrations-dir"))
	}
	sort.Strings(files)

	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := db.ExecContext(c.Context, string(body)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", filepath.Base(file), err)
		}
		logger.Log.Info().Str("file", filepath.Base(file)).Msg("migration applied")
	}
	return nil
}
