package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cakewatch/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	apiHandler *handler.APIHandler,
	statusHandler *handler.StatusHandler,
	apiKey string,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), MetricsMiddleware())

	// Public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Keyed
	api := r.Group("/api")
	api.Use(APIKeyAuth(apiKey))
	{
		api.GET("/recent-credit-transactions", apiHandler.RecentCreditTransactions)
		api.POST("/check-transaction", apiHandler.CheckTransaction)
		api.GET("/status", statusHandler.Status)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(addr string) error {
	return r.Engine.Run(addr)
}
