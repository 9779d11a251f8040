package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/census-cli/internal/config"
	"github.com/sells-group/census-cli/internal/report"
	"github.com/sells-group/census-cli/pkg/census"
)

type queryOpts struct {
	Dataset string
	Params  census.DataParams
	Format  report.Format
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a Census Data API query",
	Long: "Issues one request against a Census Data API dataset and prints the table. " +
		"Without flags it lists the name of every state from the 2020 redistricting data.",
	Example: "  census-cli query --get NAME,P1_001N --for 'county:*' --in state:06 --format json",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts, err := parseQueryOpts(cmd)
		if err != nil {
			return err
		}
		return runQuery(ctx, cfg, opts, cmd.OutOrStdout())
	},
}

func init() {
	addQueryFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)
}

func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("dataset", census.DefaultDataset, "dataset path under the Data API, e.g. 2020/dec/pl or 2022/acs/acs5")
	f.StringSlice("get", []string{"NAME"}, "variables to return")
	f.String("for", "state:*", "geography to return, e.g. 'county:*'")
	f.StringArray("in", nil, "parent geography predicate, repeatable, e.g. --in state:06")
	f.String("format", string(report.FormatText), "output format: text, json or yaml")
}

func parseQueryOpts(cmd *cobra.Command) (queryOpts, error) {
	f := cmd.Flags()
	opts := queryOpts{}
	opts.Dataset, _ = f.GetString("dataset")
	opts.Params.Get, _ = f.GetStringSlice("get")
	opts.Params.For, _ = f.GetString("for")
	opts.Params.In, _ = f.GetStringArray("in")

	format, _ := f.GetString("format")
	var err error
	if opts.Format, err = report.ParseFormat(format, false); err != nil {
		return opts, err
	}
	return opts, nil
}

func runQuery(ctx context.Context, c *config.Config, opts queryOpts, w io.Writer) error {
	client, err := c.NewClient()
	if err != nil {
		return err
	}
	table, err := client.Query(ctx, opts.Dataset, opts.Params)
	if err != nil {
		return err
	}
	return report.Table(w, opts.Format, table)
}
