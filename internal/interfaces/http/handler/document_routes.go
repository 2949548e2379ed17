package handler

import (
	"github.com/billydoc/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// DocumentRoutes creates the route group for document endpoints
func DocumentRoutes(handler *DocumentHandler, middleware ...gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("documents", "/documents")
	group.Use(middleware...)

	group.POST("/generate", handler.Generate)
	group.POST("/calculate", handler.Calculate)

	group.GET("", handler.List)
	group.GET("/types", handler.GetDocumentTypes)
	group.GET("/by-number/:number", handler.GetByNumber)
	group.GET("/:id", handler.Get)
	group.GET("/:id/pdf", handler.DownloadPDF)

	return group
}
