// Package api wires the HTTP endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/docfmt/api/handler"
	"github.com/tsawler/docfmt/api/middleware"
	"github.com/tsawler/docfmt/api/model"
)

// BasePath prefixes every formatting endpoint.
const BasePath = "/word-formatting-api"

// WelcomeText is served at the root.
const WelcomeText = "Welcome to Document Formatting Web API..."

// SetupRouter builds the engine with all routes and middleware.
func SetupRouter(h *handler.FormattingHandler, logger *logrus.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Cors())
	router.Use(middleware.ErrorHandler(logger))
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog(logger))
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, WelcomeText)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthResponse{Status: "ok"})
	})

	api := router.Group(BasePath)
	{
		api.POST("/check-doc", h.CheckDocument)
		api.POST("/check-doc/report", h.CheckReport)
		api.GET("/get-rules", h.GetRules)
		api.GET("/rules", h.ListRules)
		api.POST("/setup-rules", h.SetupRules)
		api.POST("/get-rules-from-file", h.RulesFromFile)
	}

	return router
}
