package codecamp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreapi/codecamp/alog"
)

func TestStatusHandler(t *testing.T) {
	t.Parallel()

	di := &Container{
		Logger:   alog.Test(t),
		Registry: prometheus.NewRegistry(),
		Config: &Config{
			ApplicationName: "codecamp",
			Environment:     TestEnv,
			Camps:           Camps{AtomicWrites: true},
		},
	}

	handler := statusHandler(di, time.Now().Add(-time.Minute))

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, statusPath, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var status systemStatus
		err := json.NewDecoder(rec.Body).Decode(&status)
		require.NoError(t, err)

		assert.Equal(t, statusOnline, status.Status)
		assert.Equal(t, "codecamp", status.ApplicationName)
		assert.Equal(t, "not configured", status.Database.Status)
		assert.Equal(t, "1m0s", status.Uptime)
		assert.True(t, status.Camps.AtomicWrites)
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, metricPath, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGitHash(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, gitHash())
}
