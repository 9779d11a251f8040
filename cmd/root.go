package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/census-cli/internal/config"
	"github.com/sells-group/census-cli/pkg/census"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "census-cli",
	Short: "Query the US Census Bureau APIs",
	Long:  "Looks up the population living within a radius of a coordinate and runs ad-hoc Census Data API queries. Requires CENSUS_API_KEY.",
	// Usage is for flag mistakes, not for API failures.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrapf(census.ErrConfiguration, "load config: %v", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrapf(census.ErrConfiguration, "init logger: %v", err)
		}
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", uuid.NewString())))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
