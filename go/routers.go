// Package stockgatewayserver exposes the stock gateway HTTP surface.
package stockgatewayserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApiHandleFunctions groups the API handlers mounted on the router.
type ApiHandleFunctions struct {
	StockAPI StockAPI
}

// NewRouter builds a gin engine with all routes registered.
func NewRouter(handlers ApiHandleFunctions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	return NewRouterWithGinEngine(router, handlers)
}

// NewRouterWithGinEngine registers the routes on an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handlers ApiHandleFunctions) *gin.Engine {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/stock/:productId", handlers.StockAPI.GetStock)
	router.POST("/stock/retrieve", handlers.StockAPI.RetrieveStock)
	router.POST("/stock/restock", handlers.StockAPI.Restock)
	return router
}
