package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/api"
	"github.com/bobby-s-dev/weather-cli/internal/cache"
	"github.com/bobby-s-dev/weather-cli/internal/report"
	"github.com/bobby-s-dev/weather-cli/internal/scheduler"
	"github.com/bobby-s-dev/weather-cli/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type cli struct {
	app     *app
	verbose bool
}

func (c *cli) close() {
	if c.app != nil {
		c.app.close()
		c.app = nil
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "weather",
		Short:         "Daily weather forecasts with a local cache",
		Long:          "Fetches daily forecasts from open-meteo and keeps them in a local SQLite database so they can be read back offline.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), c.verbose)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.list(cmd.Context(), cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.addCityCmd(),
		c.removeCityCmd(),
		c.getDBCmd(),
		c.citiesCmd(),
		c.watchCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show today's forecast for the favourite cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.list(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *cli) list(ctx context.Context, out io.Writer) error {
	favourites := c.app.forecaster.Favourites()
	results, sweepErr := c.app.forecaster.Sweep(ctx, favourites, []int{0})

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "Could not refresh %s: %v\n\n", r.City.Name, r.Err)
			continue
		}
		if err := report.Render(out, r.Selection); err != nil {
			return err
		}
	}

	if sweepErr != nil {
		return fmt.Errorf("%d of %d cities failed: %w", len(multierr.Errors(sweepErr)), len(favourites), sweepErr)
	}
	return nil
}

// dayFlags holds --tomorrow and --day-after. Without either, today is shown.
type dayFlags struct {
	tomorrow bool
	dayAfter bool
}

func (f *dayFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.tomorrow, "tomorrow", "t", false, "show tomorrow's forecast")
	cmd.Flags().BoolVarP(&f.dayAfter, "day-after", "d", false, "show the forecast for the day after tomorrow")
}

func (f *dayFlags) offsets() []int {
	var offsets []int
	if f.tomorrow {
		offsets = append(offsets, 1)
	}
	if f.dayAfter {
		offsets = append(offsets, 2)
	}
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	return offsets
}

func (c *cli) getCmd() *cobra.Command {
	var days dayFlags
	cmd := &cobra.Command{
		Use:   "get CITY",
		Short: "Fetch and store the forecast for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := c.app.forecaster.Get(cmd.Context(), args[0], days.offsets())
			if errors.Is(err, services.ErrCityNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "City %q not found.\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), sel)
		},
	}
	days.register(cmd)
	return cmd
}

func (c *cli) addCityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-city CITY",
		Short: "Store a city and its forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			city, err := c.app.forecaster.AddCity(cmd.Context(), args[0])
			if errors.Is(err, services.ErrCityNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "City %q not found.\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", city)
			return nil
		},
	}
}

func (c *cli) removeCityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-city CITY",
		Short: "Delete a stored city and its forecasts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.forecaster.RemoveCity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No stored city named %q.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q (%d stored record(s)).\n", args[0], n)
			return nil
		},
	}
}

func (c *cli) getDBCmd() *cobra.Command {
	var days dayFlags
	cmd := &cobra.Command{
		Use:   "get-db CITY",
		Short: "Show the stored forecast for a city without going online",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sel, err := c.app.forecaster.Stored(cmd.Context(), args[0], days.offsets())
			if errors.Is(err, cache.ErrUnknownCity) {
				fmt.Fprintf(out, "'%s' is not stored.\nRun 'get %s' or 'add-city %s' first to fetch and store its forecast.\n", args[0], args[0], args[0])
				return nil
			}
			if err != nil {
				return err
			}
			if err := report.Render(out, sel); err != nil {
				return err
			}
			if sel.Status == report.StatusNoData {
				fmt.Fprintf(out, "Run 'get %s' first to fetch and store the forecast.\n", args[0])
			}
			return nil
		},
	}
	days.register(cmd)
	return cmd
}

func (c *cli) citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List stored cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cities, err := c.app.forecaster.Cities(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cities) == 0 {
				fmt.Fprintln(out, "No cities stored.")
				return nil
			}
			for _, city := range cities {
				fmt.Fprintln(out, city)
			}
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh favourite and stored cities on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := scheduler.NewScheduler(c.app.forecaster, c.app.cfg.Scheduler.Schedule, c.app.logger)
			if err := s.Start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshing forecasts %s, press Ctrl+C to stop.\n", c.app.cfg.Scheduler.Schedule)

			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored forecasts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := c.app.logger
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watch {
				s := scheduler.NewScheduler(c.app.forecaster, c.app.cfg.Scheduler.Schedule, logger)
				if err := s.Start(); err != nil {
					return err
				}
				defer s.Stop()
			}

			server := api.NewApp(api.NewHandler(c.app.forecaster, logger), logger)

			listenErr := make(chan error, 1)
			go func() {
				addr := ":" + c.app.cfg.Server.Port
				logger.Info("Starting server", zap.String("address", addr))
				fmt.Fprintf(cmd.OutOrStdout(), "Serving stored forecasts on %s\n", addr)
				listenErr <- server.Listen(addr)
			}()

			select {
			case err := <-listenErr:
				return fmt.Errorf("start server: %w", err)
			case <-ctx.Done():
			}

			logger.Info("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.ShutdownWithContext(shutdownCtx); err != nil {
				logger.Error("Server shutdown failed", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "also refresh forecasts on the watch schedule")
	return cmd
}
