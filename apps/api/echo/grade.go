package echoapi

import (
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	exportsvc "github.com/smpn3kaledupa/presensi-nilai/services/export"
)

type gradeApi struct {
	auth     authenticator
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth authenticator,
	svc *grade.Service,
	validate *validator.Validate,
) {
	api := gradeApi{auth: auth, svc: svc, validate: validate}

	gg := g.Group("/grades", jwt)
	gg.POST("", api.create, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	gg.POST("/bulk", api.createBulk, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	gg.GET("/report", api.report)
	gg.GET("/export", api.export)

	cg := g.Group("/grade-configs", jwt, roleMiddleware(user.RoleAdmin))
	cg.POST("", api.createConfig)
	cg.GET("", api.queryConfigs)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
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

	grd, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *gradeApi) createBulk(ctx echo.Context) error {
	var data grade.NewGrades
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrades")
	}
	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	for i := range data.Grades {
		if data.Grades[i].RecordedBy == 0 {
			data.Grades[i].RecordedBy = claims.UserID()
		}
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grades, err := api.svc.RecordBulk(ctx.Request().Context(), data.Grades)
	if err != nil {
		return errors.Wrap(err, "recording grades")
	}
	return ctx.JSON(http.StatusCreated, grades)
}

func (api *gradeApi) createConfig(ctx echo.Context) error {
	var data grade.NewConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewConfig")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	conf, err := api.svc.CreateConfig(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade config")
	}
	return ctx.JSON(http.StatusCreated, conf)
}

func (api *gradeApi) queryConfigs(ctx echo.Context) error {
	var filter grade.ConfigFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ConfigFilter")
	}

	configs, err := api.svc.QueryConfigs(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying grade configs")
	}
	if configs == nil {
		configs = []grade.Config{}
	}
	return ctx.JSON(http.StatusOK, configs)
}

func (api *gradeApi) bindFilter(ctx echo.Context) (grade.ReportFilter, error) {
	var filter grade.ReportFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, errors.Wrap(err, "binding to ReportFilter")
	}
	if err := filter.Validate(api.validate); err != nil {
		return filter, err
	}
	return filter, nil
}

func (api *gradeApi) report(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	details, err := api.svc.Report(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building grade report")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *gradeApi) export(ctx echo.Context) error {
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
		return errors.Wrap(err, "building grade report")
	}
	return sendExport(ctx, format, "grades", func(w io.Writer, now time.Time) error {
		return exportsvc.Grades(w, format, filter.AcademicYear, details, now)
	})
}
