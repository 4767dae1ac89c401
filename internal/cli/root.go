// Package cli implements the ensoctl admin tool: dataset upload, search
// reindexing and sample-data seeding.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensoctl",
		Short: "Admin tool for the enso model feed",
		Long: `ensoctl manages the data behind the enso API: uploading model datasets
into the document store, pushing them into the hosted search collection and
seeding the bundled sample data.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newSeedCmd())

	return cmd
}
