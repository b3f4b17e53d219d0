package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorevault/internal/core/services"
)

var optimizeRebuildSearch bool

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Refresh statistics and compact the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := services.NewMaintenanceService(store, store.Path())
		if err := svc.Optimize(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Database optimized")

		if optimizeRebuildSearch {
			if err := svc.RebuildSearchIndex(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Search index rebuilt")
		}
		return nil
	},
}

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeRebuildSearch, "rebuild-search", false,
		"rebuild the full-text search index from the base tables")
	rootCmd.AddCommand(optimizeCmd)
}
