package handler

import "github.com/billydoc/backend/internal/interfaces/http/router"

// SystemRoutes creates the route group for health and system endpoints
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "")
	group.GET("/health", handler.Health)

	sys := group.Group("system", "/system")
	sys.GET("/info", handler.GetSystemInfo)
	sys.GET("/ping", handler.Ping)

	return group
}
