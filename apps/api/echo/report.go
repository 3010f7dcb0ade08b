package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/club"
	"github.com/trezcool/kitabu/core/user"
)

type reportApi struct {
	deps ServerDeps
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{deps: deps}

	rg := g.Group("", jwt)
	rg.GET("/clubs/:id/report", api.clubOverview)
	rg.GET("/clubs/:id/matrix", api.clubMatrix)
	rg.GET("/students/:id/report", api.studentPerformance)
}

// Handlers

func (api *reportApi) clubOverview(ctx echo.Context) error {
	clubID, err := api.checkClubAccess(ctx)
	if err != nil {
		return err
	}
	overview, err := api.deps.ReportSvc.ClubOverview(ctx.Request().Context(), clubID)
	if err != nil {
		return errors.Wrap(err, "generating club overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *reportApi) clubMatrix(ctx echo.Context) error {
	clubID, err := api.checkClubAccess(ctx)
	if err != nil {
		return err
	}
	matrix, err := api.deps.ReportSvc.ClubMatrix(ctx.Request().Context(), clubID)
	if err != nil {
		return errors.Wrap(err, "generating club matrix")
	}
	return ctx.JSON(http.StatusOK, matrix)
}

func (api *reportApi) studentPerformance(ctx echo.Context) error {
	studentID := ctx.Param("id")

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsAdmin || claims.IsTeacher || claims.IsParent || claims.Subject == studentID) {
		return errHttpNotFound
	}

	perf, err := api.deps.ReportSvc.StudentPerformance(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "generating student performance")
	}
	return ctx.JSON(http.StatusOK, perf)
}

// checkClubAccess 404s on unknown clubs and forbids callers who are neither
// staff nor a member of the club.
func (api *reportApi) checkClubAccess(ctx echo.Context) (string, error) {
	c, err := api.deps.ClubSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == club.ErrNotFound {
			return "", errHttpNotFound
		}
		return "", errors.Wrap(err, "finding club by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || claims.IsTeacher {
		return c.ID, nil
	}
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}
	if ctxUsr.ClubID.Valid && ctxUsr.ClubID.String == c.ID {
		return c.ID, nil
	}
	return "", errHttpForbidden
}
