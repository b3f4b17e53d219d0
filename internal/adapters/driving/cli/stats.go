package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorevault/internal/core/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pool, cache, and query telemetry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := services.NewMaintenanceService(store, store.Path())
		stats := svc.Stats()

		cmd.Printf("Database: %s\n\n", store.Path())
		cmd.Printf("Connections: %d live, %d idle (max %d)\n",
			stats.LiveConnections, stats.IdleConnections, stats.MaxConnections)
		cmd.Printf("Query cache: %d entries (%d expired)\n",
			stats.CacheEntries, stats.CacheExpiredEntries)
		cmd.Printf("Recorded queries: %d\n", stats.RecordedQueries)

		if len(stats.SlowQueries) > 0 {
			cmd.Println("\nSlowest queries:")
			for _, q := range stats.SlowQueries {
				cmd.Printf("  %-10s %s\n", q.Duration, q.Query)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
