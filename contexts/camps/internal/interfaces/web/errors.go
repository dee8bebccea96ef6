package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/coreapi/codecamp/alog"
	engine "github.com/coreapi/codecamp/repository"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

const databaseFailure = "Database Failure"

// httpError maps the errors of the application layer to a status code.
// Database details are logged but never sent to the client.
func httpError(c echo.Context, logger alog.Logger, err error, msg string) error {
	var verr validator.ValidationErrors

	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(verr))
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msg)
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrNotApplied):
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, engine.ErrDatabaseFailure):
		logger.Log(c.Request().Context(), slog.LevelError, "database failure",
			slog.String("path", c.Path()),
			slog.String("err", err.Error()),
		)

		return echo.NewHTTPError(http.StatusInternalServerError, databaseFailure)
	}

	return fmt.Errorf("%w", err)
}

func validationMessage(verr validator.ValidationErrors) string {
	fields := make([]string, 0, len(verr))
	for _, fe := range verr {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}

	return strings.Join(fields, ", ")
}
