package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/forfunphy/stockmove/internal/application/engine"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Release        bool
	MaxImportBytes int64 // 0 means DefaultMaxImportBytes
}

// NewRouter builds the control API for session, wrapped in CORS handling.
func NewRouter(session *engine.Session, opts Options) http.Handler {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(Logger())
	router.Use(ErrorHandler())

	h := NewHandler(session, opts.MaxImportBytes)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/instruments", h.ListInstruments)
		api.POST("/instruments/select", h.SelectInstrument)
		api.POST("/import", h.Import)

		api.GET("/snapshot", h.Snapshot)
		api.GET("/window", h.Window)
		api.GET("/position", h.Position)
		api.GET("/trades", h.Trades)
		api.GET("/stats", h.Stats)

		api.GET("/config", h.GetConfig)
		api.PUT("/config", h.PutConfig)

		api.POST("/playback/play", h.Play)
		api.POST("/playback/pause", h.Pause)
		api.POST("/playback/reset", h.Reset)
		api.POST("/playback/step", h.Step)
		api.PUT("/playback/speed", h.SetSpeed)
		api.PUT("/playback/window", h.SetWindow)

		api.POST("/manual/buy", h.ManualBuy)
		api.POST("/manual/sell", h.ManualSell)

		api.GET("/display/ma", h.GetMAVisibility)
		api.PUT("/display/ma", h.PutMAVisibility)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}
