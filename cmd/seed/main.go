package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/andresuchdata/stockpilot/backend-go/internal/cache"
	"github.com/andresuchdata/stockpilot/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Directory containing seed CSV files",
			Value:   "./data/seeds",
			EnvVars: []string{"SEED_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "s3-prefix",
			Usage:   "Read seed CSV files from this object storage prefix instead of data-dir",
			EnvVars: []string{"SEED_S3_PREFIX"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Concurrent database writers",
			Value:   4,
			EnvVars: []string{"SEED_WORKERS"},
		},
		&cli.StringFlag{
			Name:  "download-dir",
			Usage: "Local directory for files fetched from object storage",
			Value: "./data/tmp/seed",
		},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialised")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the inventory database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply SQL migrations in lexical order",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "migrations-dir",
						Usage: "Directory containing *.sql migrations",
						Value: "./migrations",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runMigrations,
			},
			{
				Name:   "products",
				Usage:  "Seed products (products.csv) and their sales history (product_sales.csv)",
				Flags:  sourceFlags(),
				Before: initDB,
				After:  closeDB,
				Action: withCacheRefresh(seedProducts, loadCacheConfig, cache.NewAnalyticsCache),
			},
			{
				Name:   "orders",
				Usage:  "Seed orders (orders.csv, one row per order line)",
				Flags:  sourceFlags(),
				Before: initDB,
				After:  closeDB,
				Action: withCacheRefresh(seedOrders, loadCacheConfig, cache.NewAnalyticsCache),
			},
			{
				Name:   "all",
				Usage:  "Seed products then orders",
				Flags:  sourceFlags(),
				Before: initDB,
				After:  closeDB,
				Action: withCacheRefresh(func(c *cli.Context) error {
					if err := seedProducts(c); err != nil {
						return err
					}
					return seedOrders(c)
				}, loadCacheConfig, cache.NewAnalyticsCache),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}
