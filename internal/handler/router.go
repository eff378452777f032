package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kyuaar/internal/handler/api"
	"kyuaar/internal/handler/middleware"
	"kyuaar/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	scanHandler *api.ScanHandler,
	manageHandler *api.ManageHandler,
	packetHandler *api.PacketHandler,
	activityHandler *api.ActivityHandler,
	adminMiddleware *middleware.AdminMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, scanHandler, manageHandler, packetHandler, activityHandler, adminMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(middleware.NewLogger(cfg.Log)))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	scanHandler *api.ScanHandler,
	manageHandler *api.ManageHandler,
	packetHandler *api.PacketHandler,
	activityHandler *api.ActivityHandler,
	adminMiddleware *middleware.AdminMiddleware,
) {
	engine.GET("/health", healthCheck)

	// Scan namespaces are public: these are the URLs printed on the codes.
	public := engine.Group("/p")
	{
		addRoutes(public, []route{
			{Method: http.MethodGet, Path: "/:id", Handler: scanHandler.Resolve},
			{Method: http.MethodPost, Path: "/:id/configure", Handler: scanHandler.Configure},
			{Method: http.MethodGet, Path: "/:id/status", Handler: scanHandler.Status},
		})
	}

	manage := engine.Group("/m")
	{
		addRoutes(manage, []route{
			{Method: http.MethodGet, Path: "/:id", Handler: manageHandler.Resolve},
			{Method: http.MethodPost, Path: "/:id/configure", Handler: manageHandler.Configure},
		})
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(adminMiddleware.RequireAdmin())
	{
		packets := apiGroup.Group("/packets")
		{
			addRoutes(packets, []route{
				{Method: http.MethodPost, Path: "", Handler: packetHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: packetHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: packetHandler.Get},
				{Method: http.MethodPost, Path: "/:id/artifact", Handler: packetHandler.AttachArtifact},
				{Method: http.MethodPost, Path: "/:id/sell", Handler: packetHandler.Sell},
				{Method: http.MethodPost, Path: "/:id/reset", Handler: packetHandler.Reset},
				{Method: http.MethodDelete, Path: "/:id", Handler: packetHandler.Delete},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/activities", Handler: activityHandler.Recent},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
