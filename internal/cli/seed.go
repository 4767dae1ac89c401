package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/store"
)

func newSeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled sample dataset into the document store",
		Long: `Seeds the document store from the bundled sample file so a fresh
deployment has data to serve. Refuses to overwrite an existing dataset
unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()

			st, err := store.New(cfg.StorePath)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			count, err := st.CountItems()
			if err != nil {
				return err
			}
			if count > 0 && !force {
				return fmt.Errorf("store already holds %d items, pass --force to replace", count)
			}

			records, skipped, err := loadRecords(cfg.SampleDataPath)
			if err != nil {
				return err
			}
			if skipped > 0 {
				log.Printf("Skipped %d duplicate sample records", skipped)
			}

			if err := st.ReplaceItems(records); err != nil {
				return fmt.Errorf("failed to seed store: %w", err)
			}
			log.Printf("Seeded %d sample records into %s", len(records), cfg.StorePath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing dataset")

	return cmd
}
