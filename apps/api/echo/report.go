package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core/casefile"
	"github.com/gabayhq/gabay/core/report"
)

type reportApi struct {
	caseSvc casefile.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{caseSvc: deps.CaseSvc}

	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("", api.aggregate)
	rg.GET("/export", api.export)
}

// Handlers

// aggregate serves the dashboard statistics, optionally narrowed to a
// timeframe and a college.
func (api *reportApi) aggregate(ctx echo.Context) error {
	css, err := api.filteredCases(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report.Aggregate(css))
}

// export streams the filtered cases as a CSV or XLSX download.
func (api *reportApi) export(ctx echo.Context) error {
	css, err := api.filteredCases(ctx)
	if err != nil {
		return err
	}

	stamp := time.Now().Format("2006-01-02")
	var buf bytes.Buffer

	switch format := ctx.QueryParam("format"); format {
	case "", "csv":
		if err := report.WriteCSV(&buf, css); err != nil {
			return errors.Wrap(err, "writing csv export")
		}
		setAttachmentHeader(ctx, fmt.Sprintf("counseling-report-%s.csv", stamp))
		return ctx.Blob(http.StatusOK, "text/csv", buf.Bytes())
	case "xlsx":
		if err := report.WriteXLSX(&buf, css); err != nil {
			return errors.Wrap(err, "writing xlsx export")
		}
		setAttachmentHeader(ctx, fmt.Sprintf("counseling-report-%s.xlsx", stamp))
		return ctx.Blob(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
	}
}

func (api *reportApi) filteredCases(ctx echo.Context) ([]casefile.Case, error) {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	css, err := api.caseSvc.Query(ctx.Request().Context(), prin, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying cases for report")
	}

	if tf := ctx.QueryParam("timeframe"); tf != "" {
		css = report.FilterByTimeframe(css, report.Timeframe(tf))
	}
	if college := ctx.QueryParam("college"); college != "" {
		css = report.FilterByCollege(css, college)
	}
	return css, nil
}

func setAttachmentHeader(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))
}
