package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ariefcatur/go-restaurant-reservations/internal/logging"
	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/ariefcatur/go-restaurant-reservations/internal/seed"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "reservations-demo",
		Usage: "Run the reservation lifecycle against an in-memory store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "seed",
				Aliases: []string{"s"},
				Usage:   "YAML seed file; the built-in samples are used when empty",
			},
			&cli.StringFlag{
				Name:  "search",
				Value: "john",
				Usage: "Name fragment to search for after seeding",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f := seed.Samples()
			if path := cmd.String("seed"); path != "" {
				var err error
				if f, err = seed.LoadFile(path); err != nil {
					return err
				}
			}
			log := logging.New("reservations-demo", cmd.String("log-level"))
			defer func() { _ = log.Sync() }()

			svc := reservations.NewService(reservations.NewMemoryStore(), reservations.WithLogger(log))
			return runDemo(ctx, os.Stdout, svc, f, reservations.DateOf(time.Now()), cmd.String("search"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runDemo(ctx context.Context, w io.Writer, svc *reservations.Service, f seed.File, today reservations.Date, search string) error {
	fmt.Fprintln(w, "=== Reservation System Demo ===")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Creating sample reservations...")

	created, err := seed.Apply(ctx, svc, f, today)
	for _, r := range created {
		fmt.Fprintf(w, "  created %s for %s (%s)\n", r.ID, r.CustomerName, r.Status.Label())
	}
	if err != nil {
		return err
	}

	stats, err := svc.Statistics(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Reservation Summary ===")
	fmt.Fprintf(w, "Total reservations: %d\n", stats.Total)
	for _, st := range reservations.Statuses() {
		fmt.Fprintf(w, "%s: %d\n", st.Label(), stats.Count(st))
	}

	tomorrow := today.AddDays(1)
	list, err := svc.ByDate(ctx, tomorrow)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nReservations for %s: %d\n", tomorrow, len(list))
	for _, r := range list {
		fmt.Fprintf(w, "  - %s at %s (%s)\n", r.CustomerName, r.Time, r.Status)
	}

	if search != "" {
		found, err := svc.SearchByName(ctx, search)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nName search %q: %d\n", search, len(found))
		for _, r := range found {
			fmt.Fprintf(w, "  - %s on %s at %s\n", r.CustomerName, r.Date, r.Time)
		}
	}

	fmt.Fprintln(w, "\n=== Demo completed successfully! ===")
	return nil
}
