package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carlosfiori/integrador-apis/api"
	"github.com/carlosfiori/integrador-apis/internal/logging"
	"github.com/carlosfiori/integrador-apis/internal/telemetry"
)

const (
	shutdownTimeout    = 10 * time.Second
	serverReadTimeout  = 10 * time.Second
	serverIdleTimeout  = 60 * time.Second
	requestTimeout     = 30 * time.Second
	serverWriteTimeout = requestTimeout + 5*time.Second
)

func newServeCmd(opts *options, stderr io.Writer) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expõe o relatório via HTTP em GET /report/{cep}",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}

			logger := logging.New(stderr, cfg.LogLevel, cfg.LogFormat).
				With().Str("instance_id", uuid.NewString()).Logger()

			stopTracing := initTracing(cmd.Context(), cfg, logger)
			defer stopTracing()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := telemetry.NewMetrics(reg)

			handler := api.NewHandler(newOrchestrator(cfg, logger, metrics), logger)
			server := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      api.SetupRouter(handler, reg, requestTimeout),
				ReadTimeout:  serverReadTimeout,
				WriteTimeout: serverWriteTimeout,
				IdleTimeout:  serverIdleTimeout,
			}
			return serve(cmd.Context(), server, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// serve runs server until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Integrador server starting")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
		logger.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Error during shutdown")
			_ = server.Close()
		}

		logger.Info().Msg("Integrador server stopped")
		return nil
	}
}
