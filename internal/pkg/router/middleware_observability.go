package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/satriajati/gerbang/internal/pkg/config"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func middlewareObservability(cfg config.Config, in instrument.Instrumentation) Middleware {
	tracer := in.Tracer("router")
	meter := in.Meter("router")

	requestCounter, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("server: failed to create request counter", "error", err)
	}

	latencyHistogram, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Error("server: failed to create latency histogram", "error", err)
	}

	serviceName := cfg.GetString("app.name")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			if matched := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); matched != "" {
				route = matched
			}

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("http.route", route),
					attribute.String("service.name", serviceName),
				),
			)
			defer span.End()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))
			elapsed := time.Since(start)

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", rec.status),
			)

			if requestCounter != nil {
				requestCounter.Add(ctx, 1, attrs)
			}
			if latencyHistogram != nil {
				latencyHistogram.Record(ctx, float64(elapsed.Milliseconds()), attrs)
			}

			span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}

			slog.InfoContext(ctx, "server: request completed",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
				"client_ip", ClientIP(r),
			)
		})
	}
}
