package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/langbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/langbridge-backend/internal/http/middleware"
	"github.com/yungbote/langbridge-backend/internal/observability"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	ServiceName     string
	AllowedOrigins  []string
	MaxRequestBytes int64
	Metrics         *observability.Metrics

	CurationHandler *httpH.CurationHandler
	PathwayHandler  *httpH.PathwayHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "langbridge"
	}

	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		if cfg.CurationHandler != nil {
			api.POST("/resource-discovery", cfg.CurationHandler.DiscoverResources)
			api.POST("/content-optimization", cfg.CurationHandler.OptimizeContent)
			api.POST("/resource-curation", cfg.CurationHandler.CurateResources)
			api.POST("/resource-search", cfg.CurationHandler.SearchResources)
		}
		if cfg.PathwayHandler != nil {
			api.GET("/pathway/modules", cfg.PathwayHandler.ListModules)
		}
	}

	return r
}
