package codecamp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prometheusSDK "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/coreapi/codecamp/alog"
	"github.com/coreapi/codecamp/postgres"
)

var ErrMissingDependency = errors.New("missing dependency")

// Container holds global dependencies that can be used within each Context, to make initialisation easier.
type Container struct {
	Logger        alog.Logger
	MeterProvider *metric.MeterProvider
	TraceProvider *trace.TracerProvider
	// Registry collects all prometheus metrics served on the status endpoint.
	Registry *prometheusSDK.Registry

	Config *Config
	PGx    *pgxpool.Pool

	WebRouter *echo.Echo
	APIRouter *echo.Group

	statusEndpoint *http.Server
}

func (c *Container) EnsureAllDependenciesPresent() error {
	if c.Config == nil {
		return fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	if c.PGx == nil {
		return fmt.Errorf("%w: no database connection", ErrMissingDependency)
	}

	return nil
}

// InitialiseDefaultDependencies sets up observability, the database and the routers.
// If conf.Postgres is empty, no database connection is made and PGx stays nil.
func InitialiseDefaultDependencies(ctx context.Context, conf *Config) (*Container, error) {
	if conf.InstanceName == "" {
		conf.InstanceName = getOutboundIP()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(conf.OrganisationName+"."+conf.ApplicationName),
		attribute.String(conf.OrganisationName, conf.ApplicationName),
	)

	dc := &Container{
		Config:   conf,
		Registry: prometheusSDK.NewRegistry(),
		Logger:   newLogger(conf),
	}

	var err error

	if dc.TraceProvider, err = newTracerProvider(ctx, conf, res); err != nil {
		return nil, err
	}

	if dc.MeterProvider, err = newMeterProvider(dc.Registry, res); err != nil {
		return nil, err
	}

	otel.SetTracerProvider(dc.TraceProvider)
	otel.SetMeterProvider(dc.MeterProvider)

	if conf.Postgres != (Postgres{}) {
		if dc.PGx, err = connectPostgres(ctx, conf.Postgres, dc.TraceProvider); err != nil {
			return nil, err
		}

		dc.Logger.InfoContext(ctx, "connected to postgres",
			slog.String("host", conf.Postgres.Host),
			slog.String("database", conf.Postgres.Database),
		)
	}

	dc.WebRouter = newWebRouter(conf, dc.TraceProvider, dc.Registry)
	dc.APIRouter = dc.WebRouter.Group("/api")

	return dc, nil
}

func newTracerProvider(ctx context.Context, conf *Config, res *resource.Resource) (*trace.TracerProvider, error) {
	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(net.JoinHostPort(conf.OTEL.Host, strconv.Itoa(conf.OTEL.Port))),
		otlptracegrpc.WithInsecure(),
	}

	if conf.Environment == TestEnv {
		// no collector runs in tests, shutdown would block until its ctx expires
		exporterOpts = append(exporterOpts, otlptracegrpc.WithTimeout(10*time.Millisecond))
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("could not connect to trace exporter: %w", err)
	}

	var (
		batchOpts []trace.BatchSpanProcessorOption
		sampler   = trace.ParentBased(trace.TraceIDRatioBased(0.6)) //nolint:mnd
	)

	if conf.Environment == LocalEnv {
		batchOpts = append(batchOpts, trace.WithBlocking())
		sampler = trace.AlwaysSample()
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter, batchOpts...),
		trace.WithResource(res),
		trace.WithSampler(sampler),
	), nil
}

// newMeterProvider exports all otel metrics through registry, next to the go and process collectors.
func newMeterProvider(registry *prometheusSDK.Registry, res *resource.Resource) (*metric.MeterProvider, error) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("could not create prometheus exporter: %w", err)
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(exporter),
	), nil
}

// newLogger returns the logger for conf.Environment and makes it the slog default.
// A local environment logs human readable, and to loki if a push url is configured.
func newLogger(conf *Config) *slog.Logger {
	var logger *slog.Logger

	switch {
	case conf.Environment == LocalEnv && conf.Log.LokiPushURL != "":
		logger = alog.NewDevelopment(&alog.LokiHandlerOptions{
			Labels:  map[string]string{conf.OrganisationName: conf.ApplicationName},
			PushURL: conf.Log.LokiPushURL,
		})
	case conf.Environment == LocalEnv:
		logger = alog.NewDevelopment(nil)
	default:
		logger = alog.New()
	}

	logger = logger.With(
		slog.String("organisation_name", conf.OrganisationName),
		slog.String("application_name", conf.ApplicationName),
		slog.String("instance_name", conf.InstanceName),
		slog.String("environment", string(conf.Environment)),
		slog.String("git_hash", gitHash()),
	)
	slog.SetDefault(logger)

	return logger
}

// connectPostgres waits up to ConnectTimeoutSeconds for the database and migrates it.
// Only the pool is kept, the database/sql handle is closed after migrating.
func connectPostgres(ctx context.Context, conf Postgres, tp *trace.TracerProvider) (*pgxpool.Pool, error) {
	pg, err := postgres.ConnectWithRetry(ctx, postgres.Config{
		User:       conf.User,
		Password:   conf.Password.Secret(),
		Database:   conf.Database,
		Host:       conf.Host,
		Port:       conf.Port,
		SSLMode:    conf.SSLMode,
		MaxConns:   conf.MaxConns,
		Migrations: postgres.CodecampMigrations,
	}, tp, time.Duration(conf.ConnectTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	if err = pg.Migrate(); err != nil {
		_ = pg.Shutdown(ctx)

		return nil, fmt.Errorf("could not migrate postgres: %w", err)
	}

	_ = pg.DB.Close()

	return pg.PGx, nil
}

func newWebRouter(conf *Config, tp *trace.TracerProvider, registry *prometheusSDK.Registry) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.Debug = conf.Environment == LocalEnv
	router.IPExtractor = echo.ExtractIPFromXFFHeader()
	router.Logger.SetOutput(io.Discard)

	router.Use(
		middleware.Recover(),
		otelecho.Middleware(conf.OTEL.Hostname, otelecho.WithTracerProvider(tp)),
		echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{ //nolint:exhaustruct
			Subsystem:  conf.ApplicationName,
			Registerer: registry,
		}),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{ //nolint:exhaustruct
			TargetHeader: "Request-Id",
			Generator:    uuid.NewString,
			RequestIDHandler: func(c echo.Context, rid string) {
				ctx := alog.AddAttr(c.Request().Context(), slog.String("request_id", rid))
				c.SetRequest(c.Request().WithContext(ctx))
			},
		}),
	)

	return router
}

func (c *Container) Start(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "starting all servers",
		slog.Int("port", c.Config.HTTP.Port),
	)

	if c.Config.HTTP.StatusEndpointEnabled {
		c.statusEndpoint = serveStatus(ctx, c)
	}

	err := c.WebRouter.Start(fmt.Sprintf(":%d", c.Config.HTTP.Port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not serve http: %w", err)
	}

	return nil
}

// Shutdown stops all servers and releases the database connections.
// It keeps going on failures and returns all errors joined.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "shutting down all servers")

	var errs []error

	if c.WebRouter != nil {
		errs = append(errs, c.WebRouter.Shutdown(ctx))
	}

	if c.statusEndpoint != nil {
		errs = append(errs, c.statusEndpoint.Shutdown(ctx))
	}

	if c.PGx != nil {
		c.PGx.Close()
	}

	if c.TraceProvider != nil {
		errs = append(errs, c.TraceProvider.Shutdown(ctx))
	}

	if c.MeterProvider != nil {
		errs = append(errs, c.MeterProvider.Shutdown(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("could not shut down cleanly: %w", err)
	}

	return nil
}

const (
	metricPath = "/metrics"
	statusPath = "/status"
)

func statusHandler(di *Container, serverStartedAt time.Time) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricPath, promhttp.HandlerFor(
		di.Registry,
		promhttp.HandlerOpts{ //nolint:exhaustruct
			EnableOpenMetrics: true, // to enable Examplars in the export format
		},
	))

	mux.HandleFunc(statusPath, func(w http.ResponseWriter, r *http.Request) {
		statusData := getSystemStatus(r.Context(), di, serverStartedAt)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if statusData.Status != statusOnline {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(statusData)
	})

	return mux
}

func serveStatus(ctx context.Context, di *Container) *http.Server {
	srv := &http.Server{ //nolint:exhaustruct
		Addr:              fmt.Sprintf(":%d", di.Config.HTTP.StatusEndpointPort),
		Handler:           statusHandler(di, time.Now()),
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	di.Logger.InfoContext(ctx, "serving status endpoint",
		slog.String("addr", srv.Addr),
		slog.String("metric_path", metricPath),
		slog.String("status_path", statusPath),
	)

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			di.Logger.DebugContext(ctx, "error serving http", slog.String("err", err.Error()))

			return
		}
	}()

	return srv
}

func gitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}

// getOutboundIP returns the preferred outbound ip of this machine.
// No connection is established, the destination does not need to exist.
func getOutboundIP() string {
	conn, err := net.Dial("udp", "5.1.66.255:80")
	if err != nil {
		return "unknown"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "unknown"
	}

	return addr.IP.String()
}
