package router

import (
	"github.com/gin-gonic/gin"
	"github.com/orderimport/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers served under the API prefix
type Handlers struct {
	Orders  *handler.OrderHandler
	Import  *handler.OrderImportHandler
	History *handler.ImportHistoryHandler
	System  *handler.SystemHandler
}

// OrderRoutes builds the /orders domain. uploadMiddleware runs only in front
// of the file import endpoint.
func OrderRoutes(h Handlers, uploadMiddleware ...gin.HandlerFunc) *DomainGroup {
	orders := NewDomainGroup("orders", "/orders")
	orders.GET("", h.Orders.List).
		POST("", h.Orders.Create).
		GET("/:id", h.Orders.GetByID).
		PUT("/:id", h.Orders.Update).
		DELETE("/:id", h.Orders.Delete).
		GET("/number/:order_number", h.Orders.GetByOrderNumber)

	upload := append(append([]gin.HandlerFunc{}, uploadMiddleware...), h.Import.Import)
	orders.Group("import", "/import").
		POST("", upload...).
		GET("/template", h.Import.Template)

	return orders
}

// SystemRoutes builds the /system domain
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}

// Setup registers every API domain on r and the unversioned health check on
// the engine.
func Setup(engine *gin.Engine, h Handlers, uploadMiddleware []gin.HandlerFunc, opts ...RouterOption) *Router {
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, opts...)
	r.Register(OrderRoutes(h, uploadMiddleware...)).
		Register(h.History).
		Register(SystemRoutes(h.System))
	r.Setup()
	return r
}
