package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlbeMasera/ATAI/internal/core/crowd"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

var crowdCmd = &cobra.Command{
	Use:   "crowd",
	Short: "Manage crowdsourced verdicts",
}

var crowdImportCmd = &cobra.Command{
	Use:   "import <raw.tsv>",
	Short: "Filter, aggregate and store raw crowd answers",
	Long: "Drops unreliable workers, aggregates the remaining answers per task, " +
		"rates every batch with Fleiss' kappa and replaces the contents of the crowd database.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := cmd.Context()

		rows, err := crowd.LoadRaw(args[0])
		if err != nil {
			return err
		}

		opts := crowd.DefaultFilterOptions()
		opts.MinWorkSeconds = cfg.Crowd.MinWorkSeconds
		opts.MinApprovalRate = cfg.Crowd.MinApprovalRate
		kept, removed := crowd.FilterWorkers(rows, opts)

		records := crowd.Aggregate(kept)
		ratings := crowd.BatchRatings(records)

		store, err := crowd.OpenSQLite(ctx, cfg.Data.Path(cfg.Data.CrowdDB))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Import(ctx, records, ratings); err != nil {
			return err
		}

		logging.Info().
			Int("rows", len(rows)).
			Int("removed", len(removed)).
			Int("tasks", len(records)).
			Int("batches", len(ratings)).
			Str("db", store.Path).
			Msg("crowd data imported")
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks from %d answers (%d answers dropped)\n", len(records), len(rows), len(removed))
		return nil
	},
}

func init() {
	crowdCmd.AddCommand(crowdImportCmd)
}
