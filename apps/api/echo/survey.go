package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
)

var errSurveyTypeMismatch = "this survey type cannot be submitted with your role"

type surveyApi struct {
	deps ServerDeps
}

func registerSurveyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := surveyApi{deps: deps}

	sg := g.Group("/surveys", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

// create accepts a survey from any authenticated role; the role fixes the
// survey type (students self-assess, teachers and parents rate students,
// admins submit any type).
func (api *surveyApi) create(ctx echo.Context) error {
	var data survey.NewSurvey
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSurvey")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = checkSurveyType(ctxUsr, data); err != nil {
		return err
	}

	svy, err := api.deps.SurveySvc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating survey")
	}
	api.invalidateReports(ctx, svy.ClubID)
	return ctx.JSON(http.StatusCreated, svy)
}

func checkSurveyType(ctxUsr user.User, data survey.NewSurvey) error {
	if ctxUsr.IsAdmin() {
		return nil
	}
	var want string
	switch {
	case ctxUsr.IsTeacher():
		want = survey.TypeTeacher
	case ctxUsr.IsParent():
		want = survey.TypeParent
	case ctxUsr.IsStudent():
		want = survey.TypeSelf
		if data.StudentID != ctxUsr.ID {
			return errHttpForbidden
		}
	default:
		return errHttpForbidden
	}
	if data.Type != want {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: errSurveyTypeMismatch})
	}
	return nil
}

func (api *surveyApi) query(ctx echo.Context) error {
	filter := new(survey.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []survey.Survey{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsAdmin || claims.IsTeacher) {
		// students only see their own surveys
		if !claims.IsStudent {
			return errHttpForbidden
		}
		filter.StudentID = claims.Subject
	}

	surveys, err := api.deps.SurveySvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying surveys")
	}
	if surveys == nil {
		surveys = []survey.Survey{}
	}
	return ctx.JSON(http.StatusOK, surveys)
}

func (api *surveyApi) retrieve(ctx echo.Context) error {
	svy, err := api.getSurvey(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, svy)
}

// update only accepts new ratings; type, club and student are fixed at
// creation. Only the author or an admin may edit.
func (api *surveyApi) update(ctx echo.Context) error {
	svy, err := api.getSurvey(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin && svy.AuthorID != claims.Subject {
		return errHttpForbidden
	}

	var data survey.UpdateSurvey
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSurvey")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	svy, err = api.deps.SurveySvc.Update(ctx.Request().Context(), svy.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating survey")
	}
	api.invalidateReports(ctx, svy.ClubID)
	return ctx.JSON(http.StatusOK, svy)
}

func (api *surveyApi) destroy(ctx echo.Context) error {
	svy, err := api.getSurvey(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin && svy.AuthorID != claims.Subject {
		return errHttpForbidden
	}

	if err = api.deps.SurveySvc.Delete(ctx.Request().Context(), svy.ID); err != nil {
		return errors.Wrap(err, "deleting survey")
	}
	api.invalidateReports(ctx, svy.ClubID)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *surveyApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.SurveySvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting surveys")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getSurvey loads the survey from the path param, 404ing on unknown IDs and on
// surveys the caller may not see (staff, the student or the author).
func (api *surveyApi) getSurvey(ctx echo.Context) (survey.Survey, error) {
	svy, err := api.deps.SurveySvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == survey.ErrNotFound {
			return survey.Survey{}, errHttpNotFound
		}
		return survey.Survey{}, errors.Wrap(err, "finding survey by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return survey.Survey{}, errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || claims.IsTeacher || svy.StudentID == claims.Subject || svy.AuthorID == claims.Subject {
		return svy, nil
	}
	return survey.Survey{}, errHttpNotFound
}

func (api *surveyApi) invalidateReports(ctx echo.Context, clubID string) {
	if err := api.deps.ReportSvc.InvalidateClub(ctx.Request().Context(), clubID); err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "invalidating club reports"))
	}
}
