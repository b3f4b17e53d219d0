package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorevault/internal/core/services"
)

var backupCmd = &cobra.Command{
	Use:   "backup [destination]",
	Short: "Write a consistent copy of the database",
	Long: `Backup writes an engine-consistent, compacted copy of the encrypted
database. Without a destination, a timestamped file is created next to
the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		var dest string
		if len(args) == 1 {
			dest = args[0]
		}

		svc := services.NewMaintenanceService(store, store.Path())
		resolved, err := svc.Backup(cmd.Context(), dest)
		if err != nil {
			return err
		}
		cmd.Printf("Backup written to %s\n", resolved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
