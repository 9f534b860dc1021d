package echoapi

import (
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	exportsvc "github.com/smpn3kaledupa/presensi-nilai/services/export"
)

type attendanceApi struct {
	auth     authenticator
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth authenticator,
	svc *attendance.Service,
	validate *validator.Validate,
) {
	api := attendanceApi{auth: auth, svc: svc, validate: validate}
	staff := roleMiddleware(user.RoleAdmin, user.RoleTeacher)

	ag := g.Group("/attendances", jwt)
	ag.POST("", api.create, staff)
	ag.POST("/bulk", api.createBulk, staff)
	ag.GET("/report", api.report)
	ag.GET("/export", api.export)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if data.RecordedBy == 0 {
		claims, err := api.auth.contextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		data.RecordedBy = claims.UserID()
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) createBulk(ctx echo.Context) error {
	var data attendance.NewAttendances
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendances")
	}
	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	for i := range data.Attendances {
		if data.Attendances[i].RecordedBy == 0 {
			data.Attendances[i].RecordedBy = claims.UserID()
		}
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	atts, err := api.svc.RecordBulk(ctx.Request().Context(), data.Attendances)
	if err != nil {
		return errors.Wrap(err, "recording attendances")
	}
	return ctx.JSON(http.StatusCreated, atts)
}

func (api *attendanceApi) bindFilter(ctx echo.Context) (attendance.ReportFilter, error) {
	var filter attendance.ReportFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, errors.Wrap(err, "binding to ReportFilter")
	}
	if err := filter.Validate(api.validate); err != nil {
		return filter, err
	}
	return filter, nil
}

func (api *attendanceApi) report(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	details, err := api.svc.Report(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *attendanceApi) export(ctx echo.Context) error {
	format, err := exportFormat(ctx)
	if err != nil {
		return err
	}
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	details, err := api.svc.Report(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return sendExport(ctx, format, "attendance", func(w io.Writer, now time.Time) error {
		return exportsvc.Attendance(w, format, filter.StartDate, filter.EndDate, details, now)
	})
}
