package main

import (
	"log"

	_ "github.com/enso-app/enso/docs"
	"github.com/enso-app/enso/internal/api/routes"
	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/dataset"
	"github.com/enso-app/enso/internal/feed"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/observability"
	"github.com/enso-app/enso/internal/search"
	"github.com/enso-app/enso/internal/store"
	"github.com/enso-app/enso/internal/typesense"
)

// @title           enso API
// @version         1.0
// @description     Browser-facing API for the enso 3D-model feed: incremental feed sessions, hosted search with local fallback, and per-user collections.

// @license.name  MIT

// @BasePath  /
func main() {
	cfg := config.LoadConfig()

	observability.InitTracer(cfg)
	defer observability.ShutdownTracer()

	st, err := store.New(cfg.StorePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	provider := dataset.NewProvider(st, cfg.SampleDataPath)
	if err := provider.Load(); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("Dataset loaded: %s", provider.Identity())

	var remote search.RemoteSearcher
	if cfg.RemoteSearchConfigured() {
		remote = typesense.NewClient(cfg)
		log.Printf("Hosted search enabled against collection %s", cfg.TypesenseCollection)
	} else {
		log.Println("Hosted search not configured, serving local search only")
	}

	engine := search.NewEngine(remote, cfg.Search)
	engine.SetCorpus(normalizeAll(provider.Records()))

	manager := feed.NewManager(cfg.Feed, feed.NewHTTPImageLoader(cfg.Feed.ImageProbeTimeout))
	defer manager.Stop()

	r := routes.SetupRouter(cfg, routes.Dependencies{
		Store:        st,
		Provider:     provider,
		Engine:       engine,
		Manager:      manager,
		RemoteSearch: remote != nil,
	})

	log.Printf("Server listening on port %s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func normalizeAll(records []models.RawRecord) []models.Item {
	items := make([]models.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, feed.Normalize(rec))
	}
	return items
}
