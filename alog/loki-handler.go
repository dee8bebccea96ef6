package alog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/afiskon/promtail-client/promtail"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultLokiPushURL = "http://localhost:3100/api/prom/push"
	lokiRetryInterval  = 15 * time.Second
	lokiPingTimeout    = 2 * time.Second
)

type LokiHandlerOptions struct {
	// Labels are attached to every line. Keep them few and static,
	// labels with high cardinality slow loki down.
	Labels  map[string]string
	PushURL string
}

// NewLokiHandler ships records to a loki instance. Use it only for local development!
//
// In production the service logs to stderr and the container runtime ships the logs.
// If loki is not reachable at start, the handler drops records and reconnects in the background.
func NewLokiHandler(opt *LokiHandlerOptions) *LokiHandler {
	conf := promtailConfig(opt)

	sink := &lokiSink{mu: sync.Mutex{}, client: nil, buf: &bytes.Buffer{}}
	handler := &LokiHandler{
		sink: sink,
		renderer: slog.NewJSONHandler(sink.buf, &slog.HandlerOptions{
			Level:       LevelDebug, // the level is controlled by the alog handler instead
			AddSource:   false,
			ReplaceAttr: MapLogLevelsToName,
		}),
	}

	if client := connectLoki(conf); client != nil {
		sink.setClient(client)
	} else {
		go reconnectLoki(sink, conf)
	}

	return handler
}

// LokiHandler renders records as JSON lines and pushes them to loki.
// All handlers derived via WithAttrs and WithGroup share one connection.
type LokiHandler struct {
	sink     *lokiSink
	renderer slog.Handler
}

// lokiSink is the state shared between a LokiHandler and all its derived handlers.
type lokiSink struct {
	mu     sync.Mutex
	client promtail.Client
	buf    *bytes.Buffer
}

func (s *lokiSink) setClient(client promtail.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client = client
}

var _ slog.Handler = (*LokiHandler)(nil)

func (l *LokiHandler) Handle(ctx context.Context, record slog.Record) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.client == nil { // no loki instance available yet
		return nil
	}

	defer l.sink.buf.Reset()

	if err := l.renderer.Handle(ctx, record); err != nil {
		return fmt.Errorf("%w", err)
	}

	// attributes stay in the log line, query in grafana with: {app="codecamp"} | json | context="camps"
	l.sink.client.Infof("%s", strings.TrimSpace(l.sink.buf.String()))

	return nil
}

func (l *LokiHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (l *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LokiHandler{sink: l.sink, renderer: l.renderer.WithAttrs(attrs)}
}

func (l *LokiHandler) WithGroup(name string) slog.Handler {
	return &LokiHandler{sink: l.sink, renderer: l.renderer.WithGroup(name)}
}

func promtailConfig(opt *LokiHandlerOptions) promtail.ClientConfig {
	pushURL := defaultLokiPushURL
	labels := map[string]string{"app": "codecamp", "client": "codecamp-loki"}

	if opt != nil && opt.PushURL != "" {
		pushURL = opt.PushURL
	}

	if opt != nil && len(opt.Labels) != 0 {
		labels = opt.Labels
	}

	return promtail.ClientConfig{
		PushURL:            pushURL,
		Labels:             lokiLabels(labels),
		BatchWait:          1 * time.Second,
		BatchEntriesNumber: 1,
		SendLevel:          promtail.DEBUG,
		PrintLevel:         promtail.DISABLE,
	}
}

// lokiLabels renders labels in the stream selector format, sorted by key: {a="1",b="2"}.
func lokiLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}

	return "{" + strings.Join(pairs, ",") + "}"
}

func reconnectLoki(sink *lokiSink, conf promtail.ClientConfig) {
	// never gives up: loki is often started after the service while developing.
	_ = backoff.Retry(func() error {
		client := connectLoki(conf)
		if client == nil {
			return errLokiUnavailable
		}

		sink.setClient(client)

		return nil
	}, backoff.NewConstantBackOff(lokiRetryInterval))
}

var errLokiUnavailable = errors.New("loki not reachable")

// connectLoki returns nil, if loki does not answer.
func connectLoki(conf promtail.ClientConfig) promtail.Client { //nolint:ireturn // promtail only returns the interface
	ctx, cancel := context.WithTimeout(context.Background(), lokiPingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, conf.PushURL, nil)
	if err != nil {
		return nil
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}

	_ = res.Body.Close()

	client, _ := promtail.NewClientJson(conf) // promtail always returns a nil error

	return client
}
