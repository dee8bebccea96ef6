// Package init is the context's startup API.
//
// It binds every repository contract to its implementation,
// sets up the use cases and registers the routes.
package init

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreapi/codecamp"
	"github.com/coreapi/codecamp/alog"
	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/application"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
	"github.com/coreapi/codecamp/contexts/camps/internal/interfaces/repository"
	"github.com/coreapi/codecamp/contexts/camps/internal/interfaces/web"
	engine "github.com/coreapi/codecamp/repository"
	"github.com/coreapi/codecamp/repository/q"
)

const contextName = "camps"

func NewCampsContext(ctx context.Context, di *codecamp.Container) (*CampsContext, error) {
	err := ensureRequiredDependencies(di)
	if err != nil {
		return nil, fmt.Errorf("missing dependencies to initialise context camps: %w", err)
	}

	logger := contextLogger(di.Logger)

	repos := bindRepositories(ctx, di, logger)
	camps := &CampsContext{
		repositories: repos,
		app:          setupApplication(di, logger, repos),
	}

	web.RegisterAPIRoutes(di.APIRouter, logger, camps.app)

	logger.DebugContext(ctx, "context camps initialised",
		slog.Bool("atomic_writes", di.Config.Camps.AtomicWrites),
	)

	return camps, nil
}

type CampsContext struct {
	repositories repositories
	app          application.App
}

func (c *CampsContext) Shutdown(_ context.Context) error {
	return nil
}

// repositories holds one implementation per contract.
// The instances keep no per call state and are shared by all use cases.
type repositories struct {
	camps     domain.CampRepository
	talks     domain.TalkRepository
	speakers  domain.SpeakerRepository
	mutations domain.MutationRepository
}

func contextLogger(logger alog.Logger) alog.Logger { //nolint:ireturn // test loggers are kept as is
	if l, ok := logger.(*slog.Logger); ok {
		return l.With(slog.String("context", contextName))
	}

	return logger
}

func ensureRequiredDependencies(di *codecamp.Container) error {
	if di.Config == nil {
		return fmt.Errorf("%w: config", codecamp.ErrMissingDependency)
	}

	if di.Logger == nil {
		return fmt.Errorf("%w: logger", codecamp.ErrMissingDependency)
	}

	if di.TraceProvider == nil || di.MeterProvider == nil {
		return fmt.Errorf("%w: observability", codecamp.ErrMissingDependency)
	}

	if di.APIRouter == nil {
		return fmt.Errorf("%w: api router", codecamp.ErrMissingDependency)
	}

	return nil
}

// bindRepositories is the single place deciding which implementation serves a contract.
// Without a database all contracts are served from memory.
func bindRepositories(ctx context.Context, di *codecamp.Container, logger alog.Logger) repositories {
	if di.PGx == nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "no database configured, camps are kept in memory")

		mem := repository.NewMemoryRepository()

		return repositories{camps: mem, talks: mem, speakers: mem, mutations: mem}
	}

	opts := []engine.ExecutorOption{engine.WithTracerProvider(di.TraceProvider)}
	if di.Config.Log.Statements {
		opts = append(opts, engine.WithLogger(logger))
	}

	executor := engine.NewExecutor(engine.NewPoolProvider(di.PGx), q.Postgres, opts...)

	return repositories{
		camps:     repository.NewPostgresCampRepository(executor),
		talks:     repository.NewPostgresTalkRepository(executor),
		speakers:  repository.NewPostgresSpeakerRepository(executor),
		mutations: repository.NewPostgresMutationRepository(executor),
	}
}

func setupApplication(di *codecamp.Container, logger alog.Logger, repos repositories) application.App {
	return application.App{
		ListCamps: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewListCampsQueryHandler(repos.camps),
		),
		GetCamp: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewGetCampQueryHandler(repos.camps),
		),
		SearchCamps: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewSearchCampsQueryHandler(repos.camps),
		),
		CreateCamp: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			atomicRequest(di, application.NewCreateCampRequestHandler(repos.camps, repos.mutations)),
		),
		UpdateCamp: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			atomicRequest(di, application.NewUpdateCampRequestHandler(repos.camps, repos.mutations)),
		),
		DeleteCamp: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
			atomicCommand(di, application.NewDeleteCampCommandHandler(repos.mutations)),
		),

		ListTalks: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewListTalksQueryHandler(repos.talks),
		),
		GetTalk: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewGetTalkQueryHandler(repos.talks),
		),
		CreateTalk: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			atomicRequest(di, application.NewCreateTalkRequestHandler(repos.camps, repos.mutations)),
		),
		UpdateTalk: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			atomicRequest(di, application.NewUpdateTalkRequestHandler(repos.talks, repos.mutations)),
		),
		DeleteTalk: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
			atomicCommand(di, application.NewDeleteTalkCommandHandler(repos.mutations)),
		),

		ListSpeakers: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewListSpeakersQueryHandler(repos.speakers),
		),
		GetSpeaker: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewGetSpeakerQueryHandler(repos.speakers),
		),
		ListCampSpeakers: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewListCampSpeakersQueryHandler(repos.speakers),
		),
	}
}

// atomicRequest runs all statements of req in one transaction, if camps.atomic_writes is set.
func atomicRequest[Req any, Res any](di *codecamp.Container, req app.Request[Req, Res]) app.Request[Req, Res] {
	if !di.Config.Camps.AtomicWrites || di.PGx == nil {
		return req
	}

	return app.NewTxRequest(di.PGx, req)
}

func atomicCommand[C any](di *codecamp.Container, cmd app.Command[C]) app.Command[C] {
	if !di.Config.Camps.AtomicWrites || di.PGx == nil {
		return cmd
	}

	return app.NewTxCommand(di.PGx, cmd)
}
