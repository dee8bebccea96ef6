package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coreapi/codecamp/alog"

	"github.com/coreapi/codecamp/contexts/camps/internal/application"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewTalksController(logger alog.Logger, app application.App) *TalksController {
	return &TalksController{logger: logger, app: app}
}

type TalksController struct {
	logger alog.Logger
	app    application.App
}

func (tc *TalksController) List() func(echo.Context) error {
	return func(c echo.Context) error {
		query := application.ListTalksQuery{Moniker: c.Param("moniker")}

		err := echo.QueryParamsBinder(c).Bool("includeSpeakers", &query.IncludeSpeakers).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := tc.app.ListTalks.H(c.Request().Context(), query)
		if err != nil {
			return httpError(c, tc.logger, err, "")
		}

		return c.JSON(http.StatusOK, res.Talks)
	}
}

func (tc *TalksController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		query := application.GetTalkQuery{Moniker: c.Param("moniker")}

		err := echo.PathParamsBinder(c).MustInt("id", &query.TalkID).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		err = echo.QueryParamsBinder(c).Bool("includeSpeakers", &query.IncludeSpeakers).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := tc.app.GetTalk.H(c.Request().Context(), query)
		if err != nil {
			return httpError(c, tc.logger, err, "Couldn't find the talk")
		}

		return c.JSON(http.StatusOK, res.Talk)
	}
}

func (tc *TalksController) Create() func(echo.Context) error {
	return func(c echo.Context) error {
		var model domain.TalkModel
		if err := c.Bind(&model); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		moniker := c.Param("moniker")

		res, err := tc.app.CreateTalk.H(c.Request().Context(), application.CreateTalkRequest{
			Moniker: moniker,
			Talk:    model,
		})
		if err != nil {
			return httpError(c, tc.logger, err, "Camp does not exists")
		}

		c.Response().Header().Set(echo.HeaderLocation, c.Echo().Reverse(routeTalks, moniker))

		return c.JSON(http.StatusCreated, res.Talk)
	}
}

func (tc *TalksController) Update() func(echo.Context) error {
	return func(c echo.Context) error {
		req := application.UpdateTalkRequest{Moniker: c.Param("moniker")}

		err := echo.PathParamsBinder(c).MustInt("id", &req.TalkID).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		if err := c.Bind(&req.Talk); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := tc.app.UpdateTalk.H(c.Request().Context(), req)
		if err != nil {
			return httpError(c, tc.logger, err, "Couldn't find the talk")
		}

		return c.JSON(http.StatusOK, res.Talk)
	}
}

func (tc *TalksController) Delete() func(echo.Context) error {
	return func(c echo.Context) error {
		cmd := application.DeleteTalkCommand{Moniker: c.Param("moniker")}

		err := echo.PathParamsBinder(c).MustInt("id", &cmd.TalkID).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		err = tc.app.DeleteTalk.H(c.Request().Context(), cmd)
		if err != nil {
			return httpError(c, tc.logger, err, "Failed to find the talk to delete")
		}

		return c.NoContent(http.StatusOK)
	}
}
