package tracing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/viant/curator/model"
)

const instrumentation = "github.com/viant/curator"

// Span kinds used by the engine.
const (
	KindInternal = trace.SpanKindInternal
	KindClient   = trace.SpanKindClient
)

// Attribute keys.
const (
	AttrRun           = attribute.Key("curator.run.id")
	AttrTopicCategory = attribute.Key("curator.topic.category")
	AttrTopicKey      = attribute.Key("curator.topic.key")
	AttrChange        = attribute.Key("curator.change.id")
)

type exporterState struct {
	mux      sync.Mutex
	provider *sdktrace.TracerProvider
	output   io.Closer
}

var state exporterState

// Init installs a tracer provider exporting spans as JSON lines to file, or
// to stdout when file is empty. Calling Init again while a provider is
// installed is a no-op.
func Init(serviceName, serviceVersion, file string) error {
	state.mux.Lock()
	defer state.mux.Unlock()
	if state.provider != nil {
		return nil
	}
	var w io.Writer = os.Stdout
	var output io.Closer
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w, output = f, f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err == nil {
		err = install(serviceName, serviceVersion, exporter)
	}
	if err != nil {
		if output != nil {
			_ = output.Close()
		}
		return err
	}
	state.output = output
	return nil
}

// InitWithExporter installs a tracer provider using exporter.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return errors.New("tracing: exporter is nil")
	}
	state.mux.Lock()
	defer state.mux.Unlock()
	if state.provider != nil {
		return nil
	}
	return install(serviceName, serviceVersion, exporter)
}

func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return err
	}
	state.provider = sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(state.provider)
	return nil
}

// Shutdown flushes and removes the installed provider and closes its output
// file.
func Shutdown(ctx context.Context) error {
	state.mux.Lock()
	provider, output := state.provider, state.output
	state.provider, state.output = nil, nil
	state.mux.Unlock()
	if provider == nil {
		return nil
	}
	err := provider.Shutdown(ctx)
	if output != nil {
		err = errors.Join(err, output.Close())
	}
	return err
}

// Span wraps an OpenTelemetry span. A nil *Span is valid and does nothing.
type Span struct {
	span trace.Span
}

// WithTopic tags the span with the topic ref.
func (s *Span) WithTopic(ref model.Ref) *Span {
	return s.WithAttributes(AttrTopicCategory.String(ref.Category), AttrTopicKey.String(ref.Key))
}

// WithRun tags the span with the run id.
func (s *Span) WithRun(runID string) *Span {
	if runID == "" {
		return s
	}
	return s.WithAttributes(AttrRun.String(runID))
}

// WithAttributes attaches attrs to the span.
func (s *Span) WithAttributes(attrs ...attribute.KeyValue) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	s.span.SetAttributes(attrs...)
	return s
}

// SetStatus records an error status on the span, or OK when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// StartSpan starts a child span of the span found in ctx.
func StartSpan(ctx context.Context, name string, kind trace.SpanKind) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentation).Start(ctx, name, trace.WithSpanKind(kind))
	return ctx, &Span{span: span}
}

// EndSpan finalises the span and records status depending on err.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}
