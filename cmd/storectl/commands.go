// cmd/storectl/commands.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/premiumdrop/storefront/internal/pkg/auth"
	"github.com/premiumdrop/storefront/internal/pkg/money"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func newApp() *cli.App {
	return &cli.App{
		Name:  "storectl",
		Usage: "PremiumDrop storefront operator tool",
		Commands: []*cli.Command{
			{
				Name:  "catalog",
				Usage: "catalog maintenance",
				Subcommands: []*cli.Command{
					{
						Name:  "validate",
						Usage: "load and normalize a products.json and report problems",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "source", Value: "./products.json", Usage: "file path or http(s) URL", EnvVars: []string{"CATALOG_SOURCE"}},
						},
						Action: validateCatalog,
					},
				},
			},
			{
				Name:  "delivery",
				Usage: "delivery estimates",
				Subcommands: []*cli.Command{
					{
						Name:  "estimate",
						Usage: "print the estimated delivery date for a department",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "department", Required: true, Usage: "department key, e.g. antioquia"},
							&cli.StringFlag{Name: "date", Usage: "order date as YYYY-MM-DD (default today)"},
							&cli.StringFlag{Name: "timezone", Value: "America/Bogota", EnvVars: []string{"STORE_TIMEZONE"}},
							&cli.StringFlag{Name: "regions-file", EnvVars: []string{"REGIONS_FILE"}},
							&cli.StringFlag{Name: "holidays-file", EnvVars: []string{"HOLIDAYS_FILE"}},
						},
						Action: estimateDelivery,
					},
				},
			},
			{
				Name:  "password",
				Usage: "admin password helpers",
				Subcommands: []*cli.Command{
					{
						Name:      "hash",
						Usage:     "print a bcrypt hash for ADMIN_PASSWORD_HASH (reads stdin when no argument)",
						ArgsUsage: "[password]",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "cost", Value: 12, EnvVars: []string{"BCRYPT_COST"}},
						},
						Action: hashPassword,
					},
				},
			},
		},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func validateCatalog(c *cli.Context) error {
	source := product.NewSource(c.String("source"), &http.Client{Timeout: 30 * time.Second})

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()

	data, err := source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", source, err)
	}
	products, err := product.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	out := c.App.Writer
	seen := map[int64]bool{}
	categories := map[string]int{}
	problems := 0
	for _, p := range products {
		if seen[p.ID] {
			fmt.Fprintf(out, "duplicate id %d (%s)\n", p.ID, p.Name)
			problems++
		}
		seen[p.ID] = true
		categories[p.Category]++

		if p.Price <= 0 {
			fmt.Fprintf(out, "product %d (%s) has no price\n", p.ID, p.Name)
			problems++
		}
		if len(p.Images) == 0 {
			fmt.Fprintf(out, "product %d (%s) has no images\n", p.ID, p.Name)
		}
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%d products from %s\n", len(products), source)
	for _, name := range names {
		label, ok := product.CategoryLabels[name]
		if !ok {
			label = name + " (no Spanish label)"
		}
		fmt.Fprintf(out, "  %-22s %3d  %s\n", name, categories[name], label)
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	return nil
}

func estimateDelivery(c *cli.Context) error {
	loc, err := time.LoadLocation(c.String("timezone"))
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	table := location.DefaultTable()
	if path := c.String("regions-file"); path != "" {
		if table, err = location.LoadTableFile(path); err != nil {
			return err
		}
	}

	var calendar location.HolidayCalendar = location.DefaultCalendar()
	if path := c.String("holidays-file"); path != "" {
		if calendar, err = location.LoadCalendarFile(path); err != nil {
			return err
		}
	}

	dept, ok := table.Lookup(c.String("department"))
	if !ok {
		return fmt.Errorf("unknown department %q", c.String("department"))
	}

	estimator := location.NewEstimator(calendar, loc, quietLogger())
	if raw := c.String("date"); raw != "" {
		day, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
		estimator.WithClock(func() time.Time { return day.Add(12 * time.Hour) })
	}

	est := estimator.Estimate(dept)
	out := c.App.Writer
	fmt.Fprintf(out, "%s (%s)\n", dept.Name, dept.Capital)
	fmt.Fprintf(out, "  envío:    %s\n", money.FormatCOP(dept.ShippingCost))
	fmt.Fprintf(out, "  ventana:  %d-%d días hábiles\n", est.MinDays, est.MaxDays)
	fmt.Fprintf(out, "  entrega:  %s (%s)\n", est.DateText, est.Date.Format(dateLayout))
	return nil
}

func hashPassword(c *cli.Context) error {
	password := c.Args().First()
	if password == "" {
		scanner := bufio.NewScanner(c.App.Reader)
		if !scanner.Scan() {
			return errors.New("no password given")
		}
		password = strings.TrimRight(scanner.Text(), "\r\n")
	}

	hash, err := auth.NewPasswordManager(c.Int("cost")).HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, hash)
	return nil
}
