package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the renderer endpoints on rg (typically /v1):
//
//	GET  /graph          - full canonical graph
//	GET  /graph/view     - projection (?view=&focus=)
//	GET  /meta           - phases, pinned positions and ui config
//	GET  /nodes/:id      - node detail
//	POST /edges          - manual edge edit
//	POST /positions      - pin or unpin a node
//	GET  /preview        - file text (?path=)
//	GET  /history        - journaled edits (?all=&limit=)
//	GET  /health         - project status
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/graph", h.HandleGraph)
	rg.GET("/graph/view", h.HandleView)
	rg.GET("/meta", h.HandleMeta)
	rg.GET("/nodes/:id", h.HandleNode)
	rg.POST("/edges", h.HandleEditEdge)
	rg.POST("/positions", h.HandleEditPosition)
	rg.GET("/preview", h.HandlePreview)
	rg.GET("/history", h.HandleHistory)
	rg.GET("/health", h.HandleHealth)
}

// NewRouter builds the engine: recovery middleware, the /v1 endpoints and
// the Prometheus /metrics endpoint.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	RegisterRoutes(v1, h)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}
