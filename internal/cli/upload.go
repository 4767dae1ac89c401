package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/store"
	"github.com/enso-app/enso/internal/utils"
)

func newUploadCmd() *cobra.Command {
	var (
		dataPath  string
		batchSize int
		dryRun    bool
		replace   bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a model dataset into the document store",
		Long: `Reads a JSON array of model records, assigns content-hash ids to records
that lack one, skips duplicates within the run and writes the result to the
document store.`,
		Example: `  # Replace the dataset wholesale
  ensoctl upload --data models.json

  # Merge into the existing dataset in batches of 100
  ensoctl upload --data extra.json --replace=false --batch-size 100

  # Inspect without writing
  ensoctl upload --data models.json --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, skipped, err := loadRecords(dataPath)
			if err != nil {
				return err
			}
			log.Printf("Loaded %d records (%d intra-run duplicates skipped)", len(records), skipped)

			if dryRun {
				log.Println("Dry-run: no writes performed")
				return nil
			}

			cfg := config.LoadConfig()
			st, err := store.New(cfg.StorePath)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			if replace {
				if err := st.ReplaceItems(records); err != nil {
					return fmt.Errorf("failed to replace dataset: %w", err)
				}
				log.Printf("Replaced dataset with %d records", len(records))
				return nil
			}

			for start := 0; start < len(records); start += batchSize {
				end := start + batchSize
				if end > len(records) {
					end = len(records)
				}
				if err := st.UpsertItems(records[start:end]); err != nil {
					return fmt.Errorf("failed to upsert batch at %d: %w", start, err)
				}
				log.Printf("Upserted %d/%d", end, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to the dataset JSON file")
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "Records per store write when merging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and report without writing")
	cmd.Flags().BoolVar(&replace, "replace", true, "Replace the dataset instead of merging")
	cmd.MarkFlagRequired("data")

	return cmd
}

// loadRecords parses the dataset file, fills missing ids with content hashes
// and drops duplicates within the run.
func loadRecords(path string) ([]models.RawRecord, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []models.RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(raw))
	records := make([]models.RawRecord, 0, len(raw))
	skipped := 0
	for i, rec := range raw {
		if rec.ID == "" {
			rec.ID = utils.ContentID(rec, i)
		}
		if _, dup := seen[rec.ID]; dup {
			skipped++
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	return records, skipped, nil
}
