package scans

import (
	"github.com/fb2shelf/fb2shelf/pkg/jobs"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		jobService: jobs.NewService(db),
	}

	e.POST("/scans", h.create)
	e.GET("/scans/:id", h.retrieve)
}
