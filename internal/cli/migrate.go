package cli

import (
	"github.com/spf13/cobra"

	"github.com/anonto42/yatube/pkg/config"
)

func init() {
	RootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *config.DB) error {
			if err := config.Migrate(db.SQL); err != nil {
				return err
			}
			success("Schema is up to date")
			return nil
		})
	},
}
