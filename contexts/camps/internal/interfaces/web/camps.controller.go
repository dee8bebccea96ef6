package web

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coreapi/codecamp/alog"

	"github.com/coreapi/codecamp/contexts/camps/internal/application"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewCampsController(logger alog.Logger, app application.App) *CampsController {
	return &CampsController{logger: logger, app: app}
}

type CampsController struct {
	logger alog.Logger
	app    application.App
}

func (cc *CampsController) List() func(echo.Context) error {
	return func(c echo.Context) error {
		query := application.ListCampsQuery{}

		err := echo.QueryParamsBinder(c).Bool("includeTalks", &query.IncludeTalks).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := cc.app.ListCamps.H(c.Request().Context(), query)
		if err != nil {
			return httpError(c, cc.logger, err, "")
		}

		return c.JSON(http.StatusOK, res.Camps)
	}
}

func (cc *CampsController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		query := application.GetCampQuery{Moniker: c.Param("moniker")}

		err := echo.QueryParamsBinder(c).Bool("includeTalks", &query.IncludeTalks).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := cc.app.GetCamp.H(c.Request().Context(), query)
		if err != nil {
			return httpError(c, cc.logger, err, "Could not find camp with moniker of "+query.Moniker)
		}

		return c.JSON(http.StatusOK, res.Camp)
	}
}

// Search finds the camps on the day given as theDate, e.g. ?theDate=2024-10-12.
func (cc *CampsController) Search() func(echo.Context) error {
	return func(c echo.Context) error {
		query := application.SearchCampsQuery{}

		err := echo.QueryParamsBinder(c).
			MustTime("theDate", &query.EventDate, time.DateOnly).
			Bool("includeTalks", &query.IncludeTalks).
			BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := cc.app.SearchCamps.H(c.Request().Context(), query)
		if err != nil {
			return httpError(c, cc.logger, err, "No camps on "+query.EventDate.Format(time.DateOnly))
		}

		return c.JSON(http.StatusOK, res.Camps)
	}
}

func (cc *CampsController) Create() func(echo.Context) error {
	return func(c echo.Context) error {
		var model domain.CampModel
		if err := c.Bind(&model); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := cc.app.CreateCamp.H(c.Request().Context(), application.CreateCampRequest{Camp: model})
		if err != nil {
			return httpError(c, cc.logger, err, "Could not use current moniker")
		}

		c.Response().Header().Set(echo.HeaderLocation, c.Echo().Reverse(routeCamp, res.Camp.Moniker))

		return c.JSON(http.StatusCreated, res.Camp)
	}
}

func (cc *CampsController) Update() func(echo.Context) error {
	return func(c echo.Context) error {
		var model domain.CampModel
		if err := c.Bind(&model); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		moniker := c.Param("moniker")

		res, err := cc.app.UpdateCamp.H(c.Request().Context(), application.UpdateCampRequest{
			Moniker: moniker,
			Camp:    model,
		})
		if err != nil {
			return httpError(c, cc.logger, err, "Could not update camp with moniker of "+moniker)
		}

		return c.JSON(http.StatusOK, res.Camp)
	}
}

func (cc *CampsController) Delete() func(echo.Context) error {
	return func(c echo.Context) error {
		moniker := c.Param("moniker")

		err := cc.app.DeleteCamp.H(c.Request().Context(), application.DeleteCampCommand{Moniker: moniker})
		if err != nil {
			return httpError(c, cc.logger, err, "Could not find camp with moniker of "+moniker)
		}

		return c.JSON(http.StatusOK, "Deleted")
	}
}
