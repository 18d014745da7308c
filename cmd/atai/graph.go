package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlbeMasera/ATAI/internal/driver"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

var importBatch int

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage the Memgraph copy of the knowledge graph",
}

var graphImportCmd = &cobra.Command{
	Use:   "import [graph.nt]",
	Short: "Load an N-Triples file into Memgraph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := cmd.Context()

		path := cfg.Data.Path(cfg.Data.Graph)
		if len(args) == 1 {
			path = args[0]
		}
		triples, err := driver.LoadNTriples(path)
		if err != nil {
			return err
		}

		mg := cfg.Graph.Memgraph
		d, err := driver.NewMemgraphDriver(ctx, mg.URI, mg.User, mg.Password)
		if err != nil {
			return err
		}
		store := driver.NewCypherStore(d)
		defer store.Close(ctx)

		if err := d.BuildIndices(ctx); err != nil {
			return err
		}
		if err := store.ImportTriples(ctx, triples, importBatch); err != nil {
			return err
		}

		n, err := store.CountTriples(ctx)
		if err != nil {
			return err
		}
		logging.Info().Str("path", path).Int("parsed", len(triples)).Int64("stored", n).Msg("graph imported")
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d triples, graph now holds %d\n", len(triples), n)
		return nil
	},
}

func init() {
	graphImportCmd.Flags().IntVar(&importBatch, "batch", driver.DefaultImportBatch, "Triples per write transaction")
	graphCmd.AddCommand(graphImportCmd)
}
