package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/feed"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/store"
	"github.com/enso-app/enso/internal/typesense"
	"github.com/enso-app/enso/internal/utils"
)

func newReindexCmd() *cobra.Command {
	var (
		dataPath  string
		batchSize int
		drop      bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push the dataset into the hosted search collection",
		Long: `Reads the dataset from the document store (or a JSON file with --data),
normalizes every record and upserts the results into the Typesense
collection in batches.`,
		Example: `  # Reindex the stored dataset
  ensoctl reindex

  # Rebuild the collection from scratch out of a file
  ensoctl reindex --data models.json --drop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if !cfg.RemoteSearchConfigured() {
				return fmt.Errorf("hosted search is not configured (set TYPESENSE_API_KEY)")
			}

			var records []models.RawRecord
			if dataPath != "" {
				var skipped int
				var err error
				records, skipped, err = loadRecords(dataPath)
				if err != nil {
					return err
				}
				log.Printf("Loaded %d records from %s (%d duplicates skipped)", len(records), dataPath, skipped)
			} else {
				st, err := store.New(cfg.StorePath)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				defer st.Close()
				records, err = st.GetItems()
				if err != nil {
					return fmt.Errorf("failed to read dataset from store: %w", err)
				}
				log.Printf("Loaded %d records from the store", len(records))
			}

			if dryRun {
				log.Printf("Dry-run: would index %d documents into %s", len(records), cfg.TypesenseCollection)
				return nil
			}

			ctx := context.Background()
			client := typesense.NewClient(cfg)

			if drop {
				if err := client.DropCollection(ctx); err != nil {
					return err
				}
				log.Printf("Dropped collection %s", cfg.TypesenseCollection)
			}
			if err := client.EnsureCollection(ctx); err != nil {
				return err
			}

			docs := make([]map[string]interface{}, 0, len(records))
			for _, rec := range records {
				docs = append(docs, searchDocument(rec))
			}

			for start := 0; start < len(docs); start += batchSize {
				end := start + batchSize
				if end > len(docs) {
					end = len(docs)
				}
				if err := client.UpsertBatch(ctx, docs[start:end]); err != nil {
					return fmt.Errorf("failed to index batch at %d: %w", start, err)
				}
				log.Printf("Indexed %d/%d", end, len(docs))
			}

			log.Printf("Reindex complete: %d documents in %s", len(docs), cfg.TypesenseCollection)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Index a JSON file instead of the store")
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "Documents per import batch")
	cmd.Flags().BoolVar(&drop, "drop", false, "Drop and recreate the collection first")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report without indexing")

	return cmd
}

// searchDocument flattens a record into the indexed document shape. The
// normalizer supplies the same fallbacks searches will see in the feed.
func searchDocument(rec models.RawRecord) map[string]interface{} {
	item := feed.Normalize(rec)
	id := rec.ID
	if id == "" {
		id = item.Key()
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}

	description := rec.DescriptionEn
	if description == "" {
		description = rec.DescriptionJa
	}

	return map[string]interface{}{
		"id":          id,
		"title":       item.Title,
		"title_en":    item.TitleEn,
		"tags":        tags,
		"source":      item.Source,
		"image_url":   item.ImageURL,
		"source_url":  item.SourceURL,
		"description": utils.PlainText(description),
	}
}
