package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/billydoc/backend/internal/app"
	documentapp "github.com/billydoc/backend/internal/application/document"
	"github.com/billydoc/backend/internal/infrastructure/migration"
	"github.com/billydoc/backend/internal/infrastructure/persistence"
	"github.com/billydoc/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// flags hold parsed values, so every command gets its own instances
func itemFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:     "item",
		Aliases:  []string{"i"},
		Usage:    `line item as "description|qty|price", repeatable`,
		Required: true,
	}
}

func taxRateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "tax-rate",
		Usage: "VAT rate as a fraction, e.g. 0.07 (default: document.default_tax_rate)",
	}
}

// parseItems splits "description|qty|price" arguments. Quantity and price
// stay textual; the line item validator parses them.
func parseItems(args []string) ([]documentapp.ItemInput, error) {
	items := make([]documentapp.ItemInput, 0, len(args))
	for i, arg := range args {
		parts := strings.Split(arg, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("item %d: want \"description|qty|price\", got %q", i+1, arg)
		}
		items = append(items, documentapp.ItemInput{
			Description: strings.TrimSpace(parts[0]),
			Qty:         json.Number(strings.TrimSpace(parts[1])),
			Price:       json.Number(strings.TrimSpace(parts[2])),
		})
	}
	return items, nil
}

func parseTaxRate(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q", s)
	}
	return &rate, nil
}

// validateRequest applies the same binding rules as the HTTP API
func validateRequest(req any) error {
	middleware.SetupValidator()
	err := binding.Validator.ValidateStruct(req)
	if err == nil {
		return nil
	}
	details := middleware.ValidationDetails(err)
	if len(details) == 0 {
		return fmt.Errorf("invalid request: %w", err)
	}
	fields := make([]string, len(details))
	for i, d := range details {
		fields[i] = d.Field + ": " + d.Message
	}
	return fmt.Errorf("invalid request (%s): %w", strings.Join(fields, "; "), err)
}

func totalsCommand() *cli.Command {
	return &cli.Command{
		Name:  "totals",
		Usage: "Compute line amounts, VAT and total without generating a document",
		Flags: []cli.Flag{itemFlag(), taxRateFlag()},
		Action: func(c *cli.Context) error {
			items, err := parseItems(c.StringSlice("item"))
			if err != nil {
				return err
			}
			rate, err := parseTaxRate(c.String("tax-rate"))
			if err != nil {
				return err
			}

			req := documentapp.CalculateRequest{Items: items, TaxRate: rate}
			if err := validateRequest(&req); err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			svc := documentapp.NewService(documentapp.Dependencies{}, documentapp.Settings{
				DefaultTaxRate: cfg.Document.DefaultTaxRate,
				MaxAmount:      cfg.Document.MaxAmount,
			}, nil)
			resp, err := svc.Calculate(c.Context, req)
			if err != nil {
				return err
			}
			return printTotals(c.App.Writer, resp)
		},
	}
}

func printTotals(w io.Writer, resp *documentapp.CalculateResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "No\tDescription\tQty\tPrice\tAmount\t")
	for _, it := range resp.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", it.No, it.Description, it.Qty, it.Price, it.Amount)
	}
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\t\n", resp.Subtotal)
	fmt.Fprintf(tw, "\t\t\tVAT %s\t%s\t\n", resp.TaxRate, resp.TaxAmount)
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\t\n", resp.Total)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%s)\n", resp.AmountInWords)
	return err
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate, store and record a document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "quotation, invoice or receipt", Required: true},
			&cli.StringFlag{Name: "customer-name", Required: true},
			&cli.StringFlag{Name: "customer-email", Required: true},
			&cli.StringFlag{Name: "customer-address", Required: true},
			&cli.StringFlag{Name: "customer-tax-id"},
			&cli.StringFlag{Name: "customer-phone"},
			itemFlag(),
			taxRateFlag(),
			&cli.StringFlag{Name: "lang", Value: "th", Usage: "th or en"},
			&cli.StringFlag{Name: "note"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "also copy the PDF to this file"},
		},
		Action: func(c *cli.Context) error {
			items, err := parseItems(c.StringSlice("item"))
			if err != nil {
				return err
			}
			rate, err := parseTaxRate(c.String("tax-rate"))
			if err != nil {
				return err
			}

			req := documentapp.GenerateRequest{
				DocumentType:    c.String("type"),
				CustomerName:    c.String("customer-name"),
				CustomerEmail:   c.String("customer-email"),
				CustomerAddress: c.String("customer-address"),
				CustomerTaxID:   c.String("customer-tax-id"),
				CustomerPhone:   c.String("customer-phone"),
				Items:           items,
				TaxRate:         rate,
				Language:        c.String("lang"),
				Note:            c.String("note"),
			}
			if err := validateRequest(&req); err != nil {
				return err
			}

			return withComponents(c, true, func(ctx context.Context, comp *app.Components) error {
				resp, err := comp.Service.Generate(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s %s total %s (VAT %s)\n",
					resp.DocumentNo, resp.ID, resp.Total, resp.TaxAmount)

				if out := c.String("out"); out != "" {
					return copyPDF(ctx, comp.Service, resp.ID, out)
				}
				return nil
			})
		},
	}
}

func copyPDF(ctx context.Context, svc *documentapp.Service, id, path string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	pdf, err := svc.GetPDF(ctx, docID)
	if err != nil {
		return err
	}
	defer pdf.Content.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, pdf.Content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func cleanupCommand() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete stored PDFs older than a given age",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "older-than", Usage: "minimum age, e.g. 720h", Required: true},
		},
		Action: func(c *cli.Context) error {
			return withComponents(c, false, func(ctx context.Context, comp *app.Components) error {
				n, err := comp.CleanupOlderThan(ctx, c.Duration("older-than"))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "removed %d file(s)\n", n)
				return nil
			})
		},
	}
}

// withComponents builds the document service from configuration for one command
func withComponents(c *cli.Context, migrate bool, fn func(ctx context.Context, comp *app.Components) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	comp, err := app.Build(c.Context, cfg, log, app.Options{Version: version, Migrate: migrate})
	if err != nil {
		return err
	}
	defer func() {
		if err := comp.Close(context.Background()); err != nil {
			log.Warn("Error closing components", zap.Error(err))
		}
	}()
	return fn(c.Context, comp)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migration.Migrator) error { return m.Up() })
				},
			},
			{
				Name:  "down",
				Usage: "Roll back all migrations",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migration.Migrator) error { return m.Down() })
				},
			},
			{
				Name:      "step",
				Usage:     "Apply n migrations (positive=up, negative=down)",
				ArgsUsage: "<n>",
				Action: func(c *cli.Context) error {
					n, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return fmt.Errorf("invalid step count %q", c.Args().First())
					}
					return withMigrator(c, func(m *migration.Migrator) error { return m.Steps(n) })
				},
			},
			{
				Name:      "goto",
				Usage:     "Migrate to a specific version",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					v, err := strconv.ParseUint(c.Args().First(), 10, 32)
					if err != nil {
						return fmt.Errorf("invalid version %q", c.Args().First())
					}
					return withMigrator(c, func(m *migration.Migrator) error { return m.GoTo(uint(v)) })
				},
			},
			{
				Name:      "force",
				Usage:     "Force set the migration version without running it",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					v, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return fmt.Errorf("invalid version %q", c.Args().First())
					}
					return withMigrator(c, func(m *migration.Migrator) error { return m.Force(v) })
				},
			},
			{
				Name:  "version",
				Usage: "Show the current migration version",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migration.Migrator) error {
						v, dirty, err := m.Version()
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "version %d (dirty: %t)\n", v, dirty)
						return nil
					})
				},
			},
			{
				Name:  "list",
				Usage: "List the migrations compiled into the binary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dialect", Value: "sqlite3", Usage: "sqlite3 or postgres"},
				},
				Action: func(c *cli.Context) error {
					names, err := migration.ListEmbedded(c.String("dialect"))
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Fprintln(c.App.Writer, name)
					}
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "Create a new up/down migration pair for every dialect",
				ArgsUsage: "<name> [description]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "internal/infrastructure/migration/sql"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return fmt.Errorf("migration name required")
					}
					files, err := migration.CreateMigration(c.String("dir"), c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					for _, f := range files {
						fmt.Fprintf(c.App.Writer, "%s %s\n  %s\n  %s\n", f.Driver, f.Version, f.UpPath, f.DownPath)
					}
					return nil
				},
			},
		},
	}
}

func withMigrator(c *cli.Context, fn func(m *migration.Migrator) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, db.Driver(), log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}
