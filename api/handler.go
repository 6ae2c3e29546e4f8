package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
	"github.com/carlosfiori/integrador-apis/internal/pipeline"
	"github.com/carlosfiori/integrador-apis/internal/telemetry"
)

// Runner produces the report for one CEP. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, cep string) (pipeline.Result, error)
}

type Handler struct {
	Runner Runner
	Logger zerolog.Logger
}

func NewHandler(runner Runner, logger zerolog.Logger) *Handler {
	return &Handler{Runner: runner, Logger: logger.With().Str("component", "api").Logger()}
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(r.Context(), "api: handle-report")
	defer span.End()

	cep := chi.URLParam(r, "cep")
	span.SetAttributes(attribute.String("cep", cep))
	h.Logger.Info().Str("cep", cep).Str("remote", r.RemoteAddr).Msg("Request recebido")

	res, err := h.Runner.Run(ctx, cep)
	if err != nil {
		code, msg := statusFor(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		h.Logger.Warn().Err(err).Str("cep", cep).Int("status", code).Msg("Erro ao gerar relatorio")
		WriteError(w, msg, apperrors.Kind(err), code)
		return
	}

	span.SetStatus(codes.Ok, "")
	h.Logger.Info().Str("cep", cep).Str("cidade", res.Address.City).Msg("Resposta enviada")
	WriteJSON(w, NewReportResponse(res), http.StatusOK)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, HealthResponse{Status: "ok"}, http.StatusOK)
}

func statusFor(err error) (int, string) {
	switch apperrors.Kind(err) {
	case "not_found":
		return http.StatusNotFound, "can not find zipcode"
	case "transport", "parse":
		return http.StatusBadGateway, "upstream service failure"
	case "canceled":
		return http.StatusGatewayTimeout, "request canceled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// requestLogger logs each request through zerolog so nothing is written to
// stdout.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// SetupRouter mounts the report, health and metrics routes. gatherer may be
// nil, in which case /metrics is not served.
func SetupRouter(h *Handler, gatherer prometheus.Gatherer, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/report/{cep}", h.HandleReport)
	r.Get("/healthz", h.HandleHealth)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return otelhttp.NewHandler(r, "integrador-server")
}
