package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/book"
)

type bookApi struct {
	deps ServerDeps
}

func registerBookAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := bookApi{deps: deps}

	bg := g.Group("/books", jwt)
	bg.POST("", api.create, staffMiddleware())
	bg.GET("", api.query)
	bg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := bg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
	dg.POST("/read", api.markRead, staffMiddleware())
	dg.POST("/unread", api.markUnread, staffMiddleware())
}

// Handlers

func (api *bookApi) create(ctx echo.Context) error {
	var data book.NewBook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBook")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	b, err := api.deps.BookSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating book")
	}
	api.invalidateReports(ctx, b.ClubID)
	return ctx.JSON(http.StatusCreated, b)
}

func (api *bookApi) query(ctx echo.Context) error {
	filter := new(book.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []book.Book{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	books, err := api.deps.BookSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying books")
	}
	if books == nil {
		books = []book.Book{}
	}
	return ctx.JSON(http.StatusOK, books)
}

func (api *bookApi) retrieve(ctx echo.Context) error {
	b, err := api.getBook(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *bookApi) update(ctx echo.Context) error {
	b, err := api.getBook(ctx)
	if err != nil {
		return err
	}

	var data book.UpdateBook
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBook")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	b, err = api.deps.BookSvc.Update(ctx.Request().Context(), b.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating book")
	}
	api.invalidateReports(ctx, b.ClubID)
	return ctx.JSON(http.StatusOK, b)
}

func (api *bookApi) markRead(ctx echo.Context) error {
	b, err := api.getBook(ctx)
	if err != nil {
		return err
	}
	b, err = api.deps.BookSvc.MarkRead(ctx.Request().Context(), b.ID)
	if err != nil {
		return errors.Wrap(err, "marking book read")
	}
	api.invalidateReports(ctx, b.ClubID)
	return ctx.JSON(http.StatusOK, b)
}

func (api *bookApi) markUnread(ctx echo.Context) error {
	b, err := api.getBook(ctx)
	if err != nil {
		return err
	}
	b, err = api.deps.BookSvc.MarkUnread(ctx.Request().Context(), b.ID)
	if err != nil {
		return errors.Wrap(err, "marking book unread")
	}
	api.invalidateReports(ctx, b.ClubID)
	return ctx.JSON(http.StatusOK, b)
}

func (api *bookApi) destroy(ctx echo.Context) error {
	b, err := api.getBook(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.BookSvc.Delete(ctx.Request().Context(), b.ID); err != nil {
		return errors.Wrap(err, "deleting book")
	}
	api.invalidateReports(ctx, b.ClubID)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *bookApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.BookSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting books")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *bookApi) getBook(ctx echo.Context) (book.Book, error) {
	b, err := api.deps.BookSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == book.ErrNotFound {
			return book.Book{}, errHttpNotFound
		}
		return book.Book{}, errors.Wrap(err, "finding book by ID")
	}
	return b, nil
}

// invalidateReports drops the club's cached dashboards; failures only cost a
// stale TTL window.
func (api *bookApi) invalidateReports(ctx echo.Context, clubID string) {
	if err := api.deps.ReportSvc.InvalidateClub(ctx.Request().Context(), clubID); err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "invalidating club reports"))
	}
}
