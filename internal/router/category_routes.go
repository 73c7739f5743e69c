package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/recipe-sharing-api/internal/handler"
)

// RegisterCategories registers /categories.  Categories are shared
// reference data; no token is required to read or change them.
func RegisterCategories(e *echo.Echo, h *handler.CategoryHandler, cache echo.MiddlewareFunc) {
	e.GET("/categories", h.List, cache)
	e.GET("/categories/:id", h.Get, cache)
	e.POST("/categories", h.Create)
	e.PUT("/categories/:id", h.Update)
	e.DELETE("/categories/:id", h.Delete)
}
