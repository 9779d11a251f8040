package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/census-cli/internal/config"
	"github.com/sells-group/census-cli/internal/report"
	"github.com/sells-group/census-cli/pkg/census"
)

type populationOpts struct {
	Query     census.Query
	Format    report.Format
	Breakdown bool
}

var populationCmd = &cobra.Command{
	Use:   "population",
	Short: "Population within a radius of a coordinate",
	Long: "Resolves the coordinate to its census block group, collects the block groups within the radius " +
		"and sums their population from the Census Data API.",
	Example: "  census-cli population --lat 38.8977 --lon -77.0365 --radius 2 --unit mi",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts, err := parsePopulationOpts(cmd)
		if err != nil {
			return err
		}
		return runPopulation(ctx, cfg, opts, cmd.OutOrStdout())
	},
}

func init() {
	addPopulationFlags(populationCmd)
	rootCmd.AddCommand(populationCmd)
}

func addPopulationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("lat", 0, "latitude in decimal degrees [-90, 90]")
	f.Float64("lon", 0, "longitude in decimal degrees [-180, 180]")
	f.Float64("radius", 1, "search radius (> 0)")
	f.String("unit", census.UnitKilometers, "radius unit: m, km or mi")
	f.String("format", string(report.FormatText), "output format: text, json, yaml or geojson")
	f.Bool("breakdown", false, "list every counted block group (text format)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

// parsePopulationOpts reads and validates the population flags.
func parsePopulationOpts(cmd *cobra.Command) (populationOpts, error) {
	var opts populationOpts
	f := cmd.Flags()

	lat, err := f.GetFloat64("lat")
	if err != nil {
		return opts, eris.Wrap(err, "population: read --lat")
	}
	lon, err := f.GetFloat64("lon")
	if err != nil {
		return opts, eris.Wrap(err, "population: read --lon")
	}
	radius, err := f.GetFloat64("radius")
	if err != nil {
		return opts, eris.Wrap(err, "population: read --radius")
	}
	unit, _ := f.GetString("unit")
	format, _ := f.GetString("format")
	opts.Breakdown, _ = f.GetBool("breakdown")

	meters, err := census.ParseRadius(radius, unit)
	if err != nil {
		return opts, err
	}
	opts.Query = census.Query{Latitude: lat, Longitude: lon, RadiusMeters: meters}

	if opts.Format, err = report.ParseFormat(format, true); err != nil {
		return opts, err
	}
	return opts, nil
}

// runPopulation checks configuration, then the query, before any request is made.
func runPopulation(ctx context.Context, c *config.Config, opts populationOpts, w io.Writer) error {
	client, err := c.NewClient()
	if err != nil {
		return err
	}
	if err := opts.Query.Validate(); err != nil {
		return err
	}

	res, err := client.Population(ctx, opts.Query)
	if err != nil {
		return err
	}
	return report.Population(w, opts.Format, res, opts.Breakdown)
}
