package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core/notification"
)

type notificationApi struct {
	svc      notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{
		svc:      deps.NotifSvc,
		validate: deps.Validate,
	}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.queryOwn)
	ng.GET("/user/:id", api.queryByUser)

	// admin tooling
	ng.POST("/test", api.sendTest, adminMiddleware())
	ng.POST("/broadcast", api.broadcast, adminMiddleware())
	ng.DELETE("/cleanup", api.cleanup, adminMiddleware())
}

// Handlers

func (api *notificationApi) queryOwn(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	ns, err := api.svc.QueryByUser(ctx.Request().Context(), prin, prin.ID)
	if err != nil {
		return errors.Wrap(err, "querying own notifications")
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *notificationApi) queryByUser(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	ns, err := api.svc.QueryByUser(ctx.Request().Context(), prin, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *notificationApi) sendTest(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data TestNotificationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestNotificationRequest")
	}
	if data.UserID == "" {
		data.UserID = prin.ID
	}

	n, err := api.svc.SendTest(ctx.Request().Context(), prin, data.UserID)
	if err != nil {
		return errors.Wrap(err, "sending test notification")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *notificationApi) broadcast(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data BroadcastRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BroadcastRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sent, err := api.svc.SendMany(ctx.Request().Context(), prin, data.UserIDs,
		notification.Type(data.Type), notification.Data(data.Data))
	if err != nil {
		return errors.Wrap(err, "broadcasting notification")
	}
	return ctx.JSON(http.StatusOK, BroadcastResponse{Sent: sent})
}

func (api *notificationApi) cleanup(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	maxAgeDays := 0
	if v := ctx.QueryParam("max_age_days"); v != "" {
		maxAgeDays, err = strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "max_age_days must be an integer")
		}
	}

	purged, err := api.svc.Cleanup(ctx.Request().Context(), prin, maxAgeDays)
	if err != nil {
		return errors.Wrap(err, "cleaning up notifications")
	}
	return ctx.JSON(http.StatusOK, CleanupResponse{Purged: purged})
}

type (
	TestNotificationRequest struct {
		UserID string `json:"user_id"`
	}

	BroadcastRequest struct {
		UserIDs []string               `json:"user_ids" validate:"required,min=1"`
		Type    string                 `json:"type" validate:"required"`
		Data    map[string]interface{} `json:"data"`
	}

	BroadcastResponse struct {
		Sent int `json:"sent"`
	}

	CleanupResponse struct {
		Purged int `json:"purged"`
	}
)

func (br *BroadcastRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(br)
}
