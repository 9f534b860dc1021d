package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationApi{svc: svc, validate: validate}

	ng := g.Group("/notifications", jwt)
	ng.POST("", api.create, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	ng.GET("", api.query)
}

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	notif, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, notif)
}

func (api *notificationApi) query(ctx echo.Context) error {
	var filter notification.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	notifs, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}
