package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/club"
	"github.com/trezcool/kitabu/core/user"
)

type clubApi struct {
	deps ServerDeps
}

func registerClubAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := clubApi{deps: deps}

	cg := g.Group("/clubs", jwt)
	cg.POST("", api.create, staffMiddleware())
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())

	dg.GET("/members", api.members)
	dg.POST("/members/:userID", api.addMember, staffMiddleware())
	dg.DELETE("/members/:userID", api.removeMember, staffMiddleware())

	dg.GET("/meetings", api.meetings)
	dg.POST("/meetings", api.createMeeting, staffMiddleware())

	mg := cg.Group("/meetings/:meetingID", staffMiddleware())
	mg.DELETE("", api.destroyMeeting)
	mg.GET("/attendance", api.meetingAttendance)
	mg.PUT("/attendance/:userID", api.setAttendance)
}

// Handlers

func (api *clubApi) create(ctx echo.Context) error {
	var data club.NewClub
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClub")
	}

	// teachers always run their own club
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() {
		data.TeacherID = ctxUsr.ID
	}

	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.ClubSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating club")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *clubApi) query(ctx echo.Context) error {
	filter := new(club.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []club.Club{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	clubs, err := api.deps.ClubSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying clubs")
	}
	if clubs == nil {
		clubs = []club.Club{}
	}
	return ctx.JSON(http.StatusOK, clubs)
}

func (api *clubApi) retrieve(ctx echo.Context) error {
	c, err := api.getClub(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *clubApi) update(ctx echo.Context) error {
	c, err := api.getManagedClub(ctx)
	if err != nil {
		return err
	}

	var data club.UpdateClub
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClub")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err = api.deps.ClubSvc.Update(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating club")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *clubApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.ClubSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting clubs")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *clubApi) members(ctx echo.Context) error {
	c, err := api.getClub(ctx)
	if err != nil {
		return err
	}
	members, err := api.deps.ClubSvc.Members(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "querying club members")
	}
	if members == nil {
		members = []user.User{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *clubApi) addMember(ctx echo.Context) error {
	c, err := api.getManagedClub(ctx)
	if err != nil {
		return err
	}
	usr, err := api.deps.ClubSvc.AddMember(ctx.Request().Context(), c.ID, ctx.Param("userID"))
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound:
			return errHttpNotFound
		case club.ErrClubFull:
			return echo.NewHTTPError(http.StatusConflict, club.ErrClubFull.Error())
		}
		return errors.Wrap(err, "adding club member")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *clubApi) removeMember(ctx echo.Context) error {
	c, err := api.getManagedClub(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.ClubSvc.RemoveMember(ctx.Request().Context(), c.ID, ctx.Param("userID")); err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, club.ErrNotMember:
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing club member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *clubApi) meetings(ctx echo.Context) error {
	c, err := api.getClub(ctx)
	if err != nil {
		return err
	}
	meetings, err := api.deps.ClubSvc.MeetingsByClub(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	if meetings == nil {
		meetings = []club.Meeting{}
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *clubApi) createMeeting(ctx echo.Context) error {
	c, err := api.getManagedClub(ctx)
	if err != nil {
		return err
	}

	var data club.NewMeeting
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeeting")
	}
	data.ClubID = c.ID
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	m, err := api.deps.ClubSvc.CreateMeeting(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating meeting")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *clubApi) destroyMeeting(ctx echo.Context) error {
	if err := api.deps.ClubSvc.DeleteMeetings(ctx.Request().Context(), ctx.Param("meetingID")); err != nil {
		return errors.Wrap(err, "deleting meeting")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *clubApi) meetingAttendance(ctx echo.Context) error {
	atts, err := api.deps.ClubSvc.MeetingAttendance(ctx.Request().Context(), ctx.Param("meetingID"))
	if err != nil {
		return errors.Wrap(err, "querying meeting attendance")
	}
	if atts == nil {
		atts = []club.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *clubApi) setAttendance(ctx echo.Context) error {
	var data AttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceRequest")
	}
	err := api.deps.ClubSvc.SetAttendance(ctx.Request().Context(), ctx.Param("meetingID"), ctx.Param("userID"), data.Present)
	if err != nil {
		switch errors.Cause(err) {
		case club.ErrMeetingNotFound, user.ErrNotFound:
			return errHttpNotFound
		case club.ErrNotMember:
			return echo.NewHTTPError(http.StatusBadRequest, club.ErrNotMember.Error())
		}
		return errors.Wrap(err, "setting meeting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getClub loads the club from the path param, 404ing on unknown IDs.
func (api *clubApi) getClub(ctx echo.Context) (club.Club, error) {
	c, err := api.deps.ClubSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == club.ErrNotFound {
			return club.Club{}, errHttpNotFound
		}
		return club.Club{}, errors.Wrap(err, "finding club by ID")
	}
	return c, nil
}

// getManagedClub is getClub plus a write-permission check: admins manage any
// club, teachers only their own.
func (api *clubApi) getManagedClub(ctx echo.Context) (club.Club, error) {
	c, err := api.getClub(ctx)
	if err != nil {
		return club.Club{}, err
	}
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return club.Club{}, errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && c.TeacherID != ctxUsr.ID {
		return club.Club{}, errHttpForbidden
	}
	return c, nil
}

type AttendanceRequest struct {
	Present bool `json:"present"`
}
