package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}
	g.GET("/students/:id/report", api.studentReport, jwt)
}

func (api *reportApi) studentReport(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	param := ctx.QueryParam("academic_year")
	if param == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "academic_year", Error: "academic_year is required"})
	}
	year, err := core.ParseAcademicYear(param)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "academic_year", Error: err.Error()})
	}

	rep, err := api.svc.StudentReport(ctx.Request().Context(), id, year)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
