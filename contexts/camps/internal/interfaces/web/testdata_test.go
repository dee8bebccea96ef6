package web_test

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp/alog"
	"github.com/coreapi/codecamp/app"
	engine "github.com/coreapi/codecamp/repository"

	"github.com/coreapi/codecamp/contexts/camps/internal/application"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
	"github.com/coreapi/codecamp/contexts/camps/internal/interfaces/repository"
	"github.com/coreapi/codecamp/contexts/camps/internal/interfaces/web"
)

var (
	ctx       = context.Background()
	eventDate = time.Date(2024, 10, 12, 0, 0, 0, 0, time.UTC)
)

// newApp returns the use cases on top of a memory repository with camp ATL2024 and two talks.
func newApp(t *testing.T) (application.App, *repository.MemoryRepository) {
	t.Helper()

	repo := repository.NewMemoryRepository()

	_, err := repo.AddCamp(ctx, domain.CampModel{
		Name:      "Atlanta Code Camp",
		Moniker:   "ATL2024",
		EventDate: eventDate,
		Length:    1,
		Venue:     "Convention Center",
	})
	assert.NoError(t, err)

	for _, title := range []string{"Generics", "Channels"} {
		_, err = repo.AddTalk(ctx, domain.TalkModel{
			Title:    title,
			Abstract: "All about " + title,
			Level:    200,
			Speaker:  domain.SpeakerModel{FirstName: "Ada", LastName: "Lovelace"},
		}, "ATL2024")
		assert.NoError(t, err)
	}

	return application.App{
		ListCamps:        application.NewListCampsQueryHandler(repo),
		GetCamp:          application.NewGetCampQueryHandler(repo),
		SearchCamps:      application.NewSearchCampsQueryHandler(repo),
		CreateCamp:       application.NewCreateCampRequestHandler(repo, repo),
		UpdateCamp:       application.NewUpdateCampRequestHandler(repo, repo),
		DeleteCamp:       application.NewDeleteCampCommandHandler(repo),
		ListTalks:        application.NewListTalksQueryHandler(repo),
		GetTalk:          application.NewGetTalkQueryHandler(repo),
		CreateTalk:       application.NewCreateTalkRequestHandler(repo, repo),
		UpdateTalk:       application.NewUpdateTalkRequestHandler(repo, repo),
		DeleteTalk:       application.NewDeleteTalkCommandHandler(repo),
		ListSpeakers:     application.NewListSpeakersQueryHandler(repo),
		GetSpeaker:       application.NewGetSpeakerQueryHandler(repo),
		ListCampSpeakers: application.NewListCampSpeakersQueryHandler(repo),
	}, repo
}

var errDatabase = fmt.Errorf("%w: connection reset by peer", engine.ErrDatabaseFailure)

// failingApp fails every use case with a database failure.
func failingApp() application.App {
	return application.App{
		ListCamps: app.TestQueryHandler(func(context.Context, application.ListCampsQuery) (application.ListCampsResponse, error) {
			return application.ListCampsResponse{}, errDatabase
		}),
		CreateCamp: app.TestRequestHandler(func(context.Context, application.CreateCampRequest) (application.CreateCampResponse, error) { //nolint:lll
			return application.CreateCampResponse{}, errDatabase
		}),
		DeleteTalk: app.TestCommandHandler(func(context.Context, application.DeleteTalkCommand) error {
			return errDatabase
		}),
	}
}

// newTestAPI returns a router with all routes registered under /api.
func newTestAPI(t *testing.T, a application.App) (*echo.Echo, *alog.TestLogger) {
	t.Helper()

	logger := alog.Test(t)

	e := echo.New()
	web.RegisterAPIRoutes(e.Group("/api"), logger, a)

	return e, logger
}

func serve(e *echo.Echo, method string, target string, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()

	assert.Equal(t, code, rec.Code, rec.Body.String())
}

