package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/enso-app/enso/internal/api/handlers"
	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/dataset"
	"github.com/enso-app/enso/internal/feed"
	middlewares "github.com/enso-app/enso/internal/middleware"
	"github.com/enso-app/enso/internal/search"
	"github.com/enso-app/enso/internal/store"
)

// Dependencies are the long-lived components the router exposes. They are
// built in main so their lifetimes outlast individual requests.
type Dependencies struct {
	Store        *store.Store
	Provider     *dataset.Provider
	Engine       *search.Engine
	Manager      *feed.Manager
	RemoteSearch bool
}

func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())
	if cfg.TracingEnabled {
		r.Use(middlewares.RequestTiming())
	}
	r.Use(middlewares.ExtractUserContext())

	feedHandler := handlers.NewFeedHandler(deps.Manager, deps.Provider, deps.Store, cfg.Feed.RepeatCount)
	searchHandler := handlers.NewSearchHandler(deps.Engine)
	itemsHandler := handlers.NewItemsHandler(deps.Store)
	libraryHandler := handlers.NewLibraryHandler(deps.Store)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Store)
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Provider, deps.Engine, deps.RemoteSearch)
	adminHandler := handlers.NewAdminHandler(deps.Provider, deps.Engine, deps.Manager, cfg.Feed.RepeatCount)

	api := r.Group("/api/v1")
	{
		sessions := api.Group("/feed/sessions")
		{
			sessions.POST("", feedHandler.CreateSession)
			sessions.GET("/:id", feedHandler.GetFeed)
			sessions.POST("/:id/sentinel", feedHandler.Sentinel)
			sessions.POST("/:id/scroll", feedHandler.Scroll)
			sessions.POST("/:id/retry", feedHandler.Retry)
			sessions.POST("/:id/selection", feedHandler.Select)
			sessions.POST("/:id/selection/back", feedHandler.Back)
			sessions.POST("/:id/selection/sentinel", feedHandler.DetailSentinel)
			sessions.DELETE("/:id", feedHandler.DeleteSession)
		}
		api.GET("/feed/daily-pick", feedHandler.DailyPick)

		api.GET("/search", searchHandler.Search)

		items := api.Group("/items/custom", middlewares.RequireUser())
		{
			items.GET("", itemsHandler.ListCustomItems)
			items.POST("", itemsHandler.CreateCustomItem)
			items.DELETE("/:id", itemsHandler.DeleteCustomItem)
		}

		library := api.Group("/library", middlewares.RequireUser())
		{
			library.GET("/saved", libraryHandler.ListSaved)
			library.PUT("/saved", libraryHandler.SaveItem)
			library.DELETE("/saved", libraryHandler.DeleteSaved)
			library.POST("/likes", libraryHandler.ToggleLike)
		}
		// Like tallies are public; the feed shows counts to anonymous users.
		api.GET("/library/likes", libraryHandler.GetLikeCounts)

		api.POST("/feedback", feedbackHandler.Submit)

		api.GET("/me", handlers.Me)
		api.POST("/admin/reload", adminHandler.ReloadDataset)
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-ID, X-User-Name, X-User-Email")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
