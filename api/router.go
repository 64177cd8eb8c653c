package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/api/handlers"
)

func setupRoutes(router *gin.Engine, s *server) {
	router.GET("/health", health())

	handlers.SetupRecords(router, s.logger, s.recordService, s.searchService, s.validator, s.cfg.GetDefaultPageSize())
	handlers.SetupSearch(router, s.logger, s.searchdb, s.validator)
	handlers.SetupLive(router, s.logger, s.liveManager, s.validator, s.cfg.GetDefaultPageSize())

}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.Default()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
