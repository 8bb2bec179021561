// cmd/analytics/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/analytics"
	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/stockpilot/backend-go/internal/storage"
	"github.com/andresuchdata/stockpilot/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

type report struct {
	cfg    *config.Config
	db     *postgres.DB
	engine *analytics.Engine
}

func newReport(c *cli.Context) (*report, error) {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	engine := analytics.NewEngine(
		postgres.NewOrderRepository(db),
		postgres.NewProductRepository(db),
		analytics.ConfigFrom(cfg.Analytics),
	)
	return &report{cfg: cfg, db: db, engine: engine}, nil
}

// emit prints v as indented JSON and optionally uploads it.
func (r *report) emit(c *cli.Context, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if _, err := fmt.Fprintln(c.App.Writer, string(payload)); err != nil {
		return err
	}

	key := strings.TrimSpace(c.String("upload-key"))
	if key == "" {
		return nil
	}
	client, err := storage.NewS3Client(r.cfg.Storage)
	if err != nil {
		return err
	}
	if err := client.UploadObject(c.Context, key, payload); err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Int("bytes", len(payload)).Msg("report uploaded")
	return nil
}

func withReport(action func(c *cli.Context, r *report) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := newReport(c)
		if err != nil {
			return err
		}
		defer r.db.Close()
		return action(c, r)
	}
}

func parseDay(raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &t, nil
}

func main() {
	uploadFlag := &cli.StringFlag{
		Name:  "upload-key",
		Usage: "Also upload the JSON report to object storage under this key",
	}

	app := &cli.App{
		Name:  "analytics",
		Usage: "Print inventory analytics reports as JSON",
		Commands: []*cli.Command{
			{
				Name:  "sales",
				Usage: "Sales metrics, top products and customer segments",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "Start date (YYYY-MM-DD), default 30 days ago"},
					&cli.StringFlag{Name: "end", Usage: "End date (YYYY-MM-DD, inclusive), default now"},
					&cli.StringFlag{Name: "group-by", Usage: "day, week or month", Value: "day"},
					uploadFlag,
				},
				Action: withReport(func(c *cli.Context, r *report) error {
					loc := r.cfg.Analytics.Location()
					start, err := parseDay(c.String("start"), loc)
					if err != nil {
						return err
					}
					end, err := parseDay(c.String("end"), loc)
					if err != nil {
						return err
					}
					if end != nil {
						inclusive := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
						end = &inclusive
					}

					result, err := r.engine.SalesAnalytics(c.Context, domain.SalesQuery{
						StartDate: start,
						EndDate:   end,
						GroupBy:   analytics.NormalizeGroupBy(strings.ToLower(c.String("group-by"))),
					})
					if err != nil {
						return err
					}
					return r.emit(c, result)
				}),
			},
			{
				Name:  "inventory",
				Usage: "Inventory metrics and stock distribution",
				Flags: []cli.Flag{uploadFlag},
				Action: withReport(func(c *cli.Context, r *report) error {
					result, err := r.engine.InventoryAnalytics(c.Context)
					if err != nil {
						return err
					}
					return r.emit(c, result)
				}),
			},
			{
				Name:  "reorder",
				Usage: "Urgency-ranked reorder recommendations",
				Flags: []cli.Flag{uploadFlag},
				Action: withReport(func(c *cli.Context, r *report) error {
					recs, err := r.engine.ReorderRecommendations(c.Context)
					if err != nil {
						return err
					}
					return r.emit(c, recs)
				}),
			},
			{
				Name:  "plan",
				Usage: "Reorder plan of a single product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product-id", Required: true},
				},
				Action: withReport(func(c *cli.Context, r *report) error {
					product, err := postgres.NewProductRepository(r.db).ProductByID(c.Context, c.String("product-id"))
					if err != nil {
						return err
					}
					return r.emit(c, r.engine.Plan(product))
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analytics report failed")
	}
}
