package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/typesense"
)

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the hosted search collection to a JSON file",
		Long: `Pages through every document in the Typesense collection and writes them
as a JSON array, in the same shape the upload command accepts.`,
		Example: `  # Snapshot the collection
  ensoctl export --out backup.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if !cfg.RemoteSearchConfigured() {
				return fmt.Errorf("hosted search is not configured (set TYPESENSE_API_KEY)")
			}

			client := typesense.NewClient(cfg)
			records, err := client.ExportAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to export collection %s: %w", cfg.TypesenseCollection, err)
			}

			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}

			log.Printf("Exported %d documents from %s to %s", len(records), cfg.TypesenseCollection, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Destination JSON file")
	cmd.MarkFlagRequired("out")

	return cmd
}
