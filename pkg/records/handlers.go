// Package records exposes the catalog over HTTP: listing the resolved
// records and exporting them as CSV.
package records

import (
	"net/http"

	"github.com/fb2shelf/fb2shelf/pkg/catalog"
	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	catalogService *catalog.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListRecordsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	records, total, err := h.catalogService.ListRecordsWithTotal(ctx, catalog.ListRecordsOptions{
		Limit:        &params.Limit,
		Offset:       &params.Offset,
		AuthorSource: params.AuthorSource,
		Search:       params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Records []*models.BookRecord `json:"records"`
		Total   int                  `json:"total"`
	}{records, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) export(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := h.catalogService.ListRecords(ctx, catalog.ListRecordsOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="fb2shelf.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return errors.WithStack(catalog.WriteCSV(c.Response(), records))
}
