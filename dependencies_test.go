package codecamp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp"
)

func TestInitialiseDefaultDependencies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty config", func(t *testing.T) {
		t.Parallel()

		di, err := codecamp.InitialiseDefaultDependencies(ctx, &codecamp.Config{Environment: codecamp.TestEnv})
		assert.NoError(t, err)
		assert.NotEmpty(t, di)
		assert.Nil(t, di.PGx, "no postgres configured")
		assert.NotNil(t, di.Logger)
		assert.NotNil(t, di.TraceProvider)
		assert.NotNil(t, di.MeterProvider)
		assert.NotNil(t, di.WebRouter)
		assert.NotNil(t, di.APIRouter)

		assert.ErrorIs(t, di.EnsureAllDependenciesPresent(), codecamp.ErrMissingDependency)

		shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		// no otel collector is running, only make sure shutdown returns.
		_ = di.Shutdown(shutdownCtx)
	})

	t.Run("request id", func(t *testing.T) {
		t.Parallel()

		di, err := codecamp.InitialiseDefaultDependencies(ctx, &codecamp.Config{Environment: codecamp.TestEnv})
		assert.NoError(t, err)

		di.APIRouter.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		rec := httptest.NewRecorder()
		di.WebRouter.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Request-Id"))
	})
}

func TestContainer_EnsureAllDependenciesPresent(t *testing.T) {
	t.Parallel()

	di := &codecamp.Container{}
	assert.ErrorIs(t, di.EnsureAllDependenciesPresent(), codecamp.ErrMissingDependency)
}
