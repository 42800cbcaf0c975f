package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// Options selects the record format and the minimum level.
type Options struct {
	JSON  bool
	Level slog.Level
}

// OptionsFromEnv picks JSON inside Kubernetes or when ENV is prod or dev, and
// colored text otherwise. LOG_LEVEL (debug, info, warn, error) overrides the
// default level: info for JSON, debug for text.
func OptionsFromEnv() Options {
	_, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST")
	env := os.Getenv("ENV")

	opts := Options{JSON: inK8s || env == "prod" || env == "dev"}
	opts.Level = ParseLevel(os.Getenv("LOG_LEVEL"), defaultLevel(opts.JSON))
	return opts
}

// ParseLevel accepts slog level names, including offsets like "info+2".
func ParseLevel(s string, fallback slog.Level) slog.Level {
	if s == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return level
}

func defaultLevel(useJSON bool) slog.Level {
	if useJSON {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func New() *slog.Logger {
	return NewWithOptions(os.Stdout, OptionsFromEnv())
}

func NewWithWriter(w io.Writer, useJSON bool) *slog.Logger {
	return NewWithOptions(w, Options{JSON: useJSON, Level: defaultLevel(useJSON)})
}

// NewWithOptions builds the handler chain: JSON or colored text, wrapped so
// that records logged with a span in ctx carry trace_id and span_id.
func NewWithOptions(w io.Writer, opts Options) *slog.Logger {
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: true,
		})
	} else {
		handler = &colorTextHandler{
			handler: slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}),
		}
	}
	return slog.New(&traceContextHandler{handler: handler})
}

func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

// ANSI colors for message text by level; lower levels stay plain.
const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	default:
		return ""
	}
}

type colorTextHandler struct {
	handler slog.Handler
}

func (h *colorTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *colorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	color := levelColor(r.Level)
	if color == "" {
		return h.handler.Handle(ctx, r)
	}

	painted := slog.NewRecord(r.Time, r.Level, color+r.Message+colorReset, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		painted.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, painted)
}

func (h *colorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *colorTextHandler) WithGroup(name string) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithGroup(name)}
}

type traceContextHandler struct {
	handler slog.Handler
}

func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.handler.Handle(ctx, r)
	}

	r = r.Clone()
	r.AddAttrs(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
	return h.handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithGroup(name)}
}
