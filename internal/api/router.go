package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/repoeval_go_server/config"
	"github.com/qs3c/repoeval_go_server/internal/api/handler"
	"github.com/qs3c/repoeval_go_server/internal/api/middleware"
)

type Router struct {
	analysisHandler  *handler.AnalysisHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	analysisHandler *handler.AnalysisHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		analysisHandler:  analysisHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket 进度订阅，token 放在 query 里
		api.GET("/ws", r.websocketHandler.Handle)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			analysis := authenticated.Group("/analysis")
			{
				analysis.POST("", r.analysisHandler.Analyze)
				analysis.POST("/async", r.analysisHandler.AnalyzeAsync)
				analysis.GET("/:id", r.analysisHandler.Detail)
				analysis.DELETE("/:id", r.analysisHandler.DeleteVersion)
			}

			repositories := authenticated.Group("/repositories")
			{
				repositories.GET("", r.analysisHandler.ListRepositories)
				repositories.GET("/comparison", r.analysisHandler.Comparison)
				repositories.GET("/:id/history", r.analysisHandler.History)
				repositories.PUT("/:id/public", r.analysisHandler.SetPublic)
				repositories.DELETE("/:id", r.analysisHandler.DeleteRepository)
			}
		}
	}

	return engine
}
