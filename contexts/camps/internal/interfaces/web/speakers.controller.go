package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coreapi/codecamp/alog"

	"github.com/coreapi/codecamp/contexts/camps/internal/application"
)

func NewSpeakersController(logger alog.Logger, app application.App) *SpeakersController {
	return &SpeakersController{logger: logger, app: app}
}

type SpeakersController struct {
	logger alog.Logger
	app    application.App
}

func (sc *SpeakersController) List() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := sc.app.ListSpeakers.H(c.Request().Context(), application.ListSpeakersQuery{})
		if err != nil {
			return httpError(c, sc.logger, err, "")
		}

		return c.JSON(http.StatusOK, res.Speakers)
	}
}

func (sc *SpeakersController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		query := application.GetSpeakerQuery{}

		err := echo.PathParamsBinder(c).MustInt("id", &query.SpeakerID).BindError()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := sc.app.GetSpeaker.H(c.Request().Context(), query)
		if err != nil {
			return httpError(c, sc.logger, err, "Couldn't find the speaker")
		}

		return c.JSON(http.StatusOK, res.Speaker)
	}
}

func (sc *SpeakersController) ListOfCamp() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := sc.app.ListCampSpeakers.H(c.Request().Context(),
			application.ListCampSpeakersQuery{Moniker: c.Param("moniker")},
		)
		if err != nil {
			return httpError(c, sc.logger, err, "")
		}

		return c.JSON(http.StatusOK, res.Speakers)
	}
}
