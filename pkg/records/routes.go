package records

import (
	"github.com/fb2shelf/fb2shelf/pkg/catalog"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		catalogService: catalog.NewService(db),
	}

	e.GET("/records", h.list)
	e.GET("/records/export", h.export)
}
