package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core/guide"
)

type guideApi struct {
	deps ServerDeps
}

func registerGuideAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := guideApi{deps: deps}

	gg := g.Group("/guides", jwt)
	gg.POST("", api.upload, staffMiddleware())
	gg.GET("", api.query)
	gg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/file", api.download)
	dg.DELETE("", api.destroy, staffMiddleware())
}

// Handlers

// upload takes a multipart form: a "file" part plus "title", "description" and
// an optional "club_id" (empty shares the guide with every club).
func (api *guideApi) upload(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a \"file\" part is required")
	}

	data := guide.NewGuide{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		FileName:    fileHdr.Filename,
		ContentType: fileHdr.Header.Get(echo.HeaderContentType),
	}
	if clubID := ctx.FormValue("club_id"); clubID != "" {
		data.ClubID = null.StringFrom(clubID)
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	src, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	gd, err := api.deps.GuideSvc.Upload(ctx.Request().Context(), ctxUsr.ID, data, src)
	if err != nil {
		return errors.Wrap(err, "uploading guide")
	}
	return ctx.JSON(http.StatusCreated, gd)
}

func (api *guideApi) query(ctx echo.Context) error {
	filter := new(guide.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []guide.Guide{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	guides, err := api.deps.GuideSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying guides")
	}
	if guides == nil {
		guides = []guide.Guide{}
	}
	return ctx.JSON(http.StatusOK, guides)
}

func (api *guideApi) retrieve(ctx echo.Context) error {
	gd, err := api.getGuide(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gd)
}

func (api *guideApi) download(ctx echo.Context) error {
	gd, rc, err := api.deps.GuideSvc.Open(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == guide.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening guide file")
	}
	defer rc.Close()

	contentType := gd.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", gd.FileName))
	return ctx.Stream(http.StatusOK, contentType, rc)
}

func (api *guideApi) destroy(ctx echo.Context) error {
	gd, err := api.getGuide(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.GuideSvc.Delete(ctx.Request().Context(), gd.ID); err != nil {
		return errors.Wrap(err, "deleting guide")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guideApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.GuideSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting guides")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guideApi) getGuide(ctx echo.Context) (guide.Guide, error) {
	gd, err := api.deps.GuideSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == guide.ErrNotFound {
			return guide.Guide{}, errHttpNotFound
		}
		return guide.Guide{}, errors.Wrap(err, "finding guide by ID")
	}
	return gd, nil
}
