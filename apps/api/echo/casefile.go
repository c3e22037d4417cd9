package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core/casefile"
)

type caseApi struct {
	svc      casefile.Service
	validate *validator.Validate
}

func registerCaseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := caseApi{
		svc:      deps.CaseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/cases", jwt)

	// submission endpoints
	cg.POST("/intake", api.submitIntake)
	cg.POST("/referral", api.submitReferral)

	// scoped listings
	cg.GET("/mine", api.queryMine)
	cg.GET("/referrals", api.queryReferrals)

	// admin worklist
	cg.GET("", api.query, adminMiddleware())
	cg.GET("/active", api.queryActive, adminMiddleware())
	cg.GET("/completed", api.queryCompleted, adminMiddleware())
	cg.GET("/schedule", api.schedule, adminMiddleware())

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.POST("/:id/follow-up", api.scheduleFollowUp, adminMiddleware())
}

// Handlers

func (api *caseApi) submitIntake(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data casefile.NewIntake
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIntake")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	cs, err := api.svc.SubmitIntake(ctx.Request().Context(), prin, data)
	if err != nil {
		return errors.Wrap(err, "submitting intake")
	}
	return ctx.JSON(http.StatusCreated, cs)
}

func (api *caseApi) submitReferral(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data casefile.NewReferral
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReferral")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	cs, err := api.svc.SubmitReferral(ctx.Request().Context(), prin, data)
	if err != nil {
		return errors.Wrap(err, "submitting referral")
	}
	return ctx.JSON(http.StatusCreated, cs)
}

func (api *caseApi) query(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(casefile.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []casefile.Case{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	css, err := api.svc.Query(ctx.Request().Context(), prin, filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying cases")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(css))
}

func (api *caseApi) queryActive(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	css, err := api.svc.ListActive(ctx.Request().Context(), prin)
	if err != nil {
		return errors.Wrap(err, "listing active cases")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(css))
}

func (api *caseApi) queryCompleted(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	css, err := api.svc.ListCompleted(ctx.Request().Context(), prin)
	if err != nil {
		return errors.Wrap(err, "listing completed cases")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(css))
}

func (api *caseApi) schedule(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	css, err := api.svc.ScheduleFor(ctx.Request().Context(), prin, ctx.QueryParam("date"))
	if err != nil {
		return errors.Wrap(err, "listing schedule")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(css))
}

// queryMine lists the cases the authenticated student submitted.
func (api *caseApi) queryMine(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	css, err := api.svc.QueryByEmail(ctx.Request().Context(), prin, prin.Email)
	if err != nil {
		return errors.Wrap(err, "querying own cases")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(css))
}

// queryReferrals lists the referrals the authenticated faculty member
// submitted.
func (api *caseApi) queryReferrals(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	css, err := api.svc.QueryByFaculty(ctx.Request().Context(), prin, prin.ID)
	if err != nil {
		return errors.Wrap(err, "querying referrals")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(css))
}

func (api *caseApi) retrieve(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	cs, err := api.svc.GetByID(ctx.Request().Context(), prin, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting case")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *caseApi) update(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data casefile.UpdateCase
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCase")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	cs, err := api.svc.Update(ctx.Request().Context(), prin, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating case")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *caseApi) scheduleFollowUp(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data casefile.FollowUp
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FollowUp")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	cs, err := api.svc.ScheduleFollowUp(ctx.Request().Context(), prin, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "scheduling follow-up")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func emptyIfNil(css []casefile.Case) []casefile.Case {
	if css == nil {
		return []casefile.Case{}
	}
	return css
}
