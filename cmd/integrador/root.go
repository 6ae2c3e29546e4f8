package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carlosfiori/integrador-apis/api"
	"github.com/carlosfiori/integrador-apis/internal/apperrors"
	"github.com/carlosfiori/integrador-apis/internal/config"
	"github.com/carlosfiori/integrador-apis/internal/feriados"
	"github.com/carlosfiori/integrador-apis/internal/ibge"
	"github.com/carlosfiori/integrador-apis/internal/logging"
	"github.com/carlosfiori/integrador-apis/internal/pipeline"
	"github.com/carlosfiori/integrador-apis/internal/report"
	"github.com/carlosfiori/integrador-apis/internal/telemetry"
	"github.com/carlosfiori/integrador-apis/internal/upstream"
	"github.com/carlosfiori/integrador-apis/internal/viacep"
)

const (
	outputText = "text"
	outputJSON = "json"

	tracingShutdownTimeout = 5 * time.Second
)

const usageText = `Uso: integrador <CEP>
Exemplo: integrador 01310100

Exemplos de CEPs para testar:
  01310100 - São Paulo/SP (Av. Paulista)
  20040020 - Rio de Janeiro/RJ (Centro)
  30130100 - Belo Horizonte/MG (Centro)
  40020000 - Salvador/BA (Centro)
  88015100 - Florianópolis/SC (Centro)`

// options holds the flag values shared by the root command and serve.
type options struct {
	configPath string
	timeout    time.Duration
	noHolidays bool
	concurrent bool
	logLevel   string
	logFormat  string

	output string
	quiet  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "integrador <CEP>",
		Short:         "Relatório integrado ViaCEP + IBGE + Brasil API",
		Long:          "Consulta um CEP no ViaCEP, usa o código IBGE retornado para obter dados demográficos do município e combina o resultado com os feriados nacionais do ano.",
		Example:       "  integrador 01310100\n  integrador 20040020 --no-holidays --output json",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return apperrors.UsageError{Message: usageText}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, args[0], stdout, stderr)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	pf.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "timeout for each upstream request")
	pf.BoolVar(&opts.noHolidays, "no-holidays", false, "skip the Brasil API holiday lookup")
	pf.BoolVar(&opts.concurrent, "concurrent", false, "fetch holidays in parallel with the address lookups")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, disabled)")
	pf.StringVar(&opts.logFormat, "log-format", logging.FormatConsole, "log format (console, json)")

	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "report format (text, json)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "disable the progress spinner")

	cmd.AddCommand(newServeCmd(opts, stderr))
	return cmd
}

// loadConfig layers explicitly set flags over the file and environment
// configuration.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("no-holidays") {
		cfg.Holidays = !opts.noHolidays
	}
	if flags.Changed("concurrent") {
		cfg.Concurrent = opts.concurrent
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(opts.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(opts.logFormat)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newOrchestrator wires the lookups for cfg. metrics may be nil.
func newOrchestrator(cfg config.Config, logger zerolog.Logger, metrics *telemetry.Metrics) *pipeline.Orchestrator {
	fetcher := upstream.Fetcher{
		Client:    upstream.NewHTTPClient(cfg.Timeout),
		UserAgent: cfg.UserAgent,
	}

	orch := &pipeline.Orchestrator{
		Address: viacep.NewClient(cfg.ViaCEPURL, fetcher, logger),
		Stats: ibge.NewClient(ibge.Endpoints{
			LocalidadesURL:      cfg.IBGELocalidadesURL,
			PesquisasURL:        cfg.IBGEPesquisasURL,
			PopulationIndicator: cfg.PopulationIndicator,
		}, fetcher, logger),
		Compose:    report.Compose,
		Concurrent: cfg.Concurrent,
		Metrics:    metrics,
		Logger:     logging.Component(logger, "pipeline"),
	}
	if cfg.Holidays {
		orch.Holidays = feriados.NewClient(cfg.HolidaysURL, fetcher, logger)
	}
	return orch
}

func initTracing(ctx context.Context, cfg config.Config, logger zerolog.Logger) func() {
	shutdown, err := telemetry.InitProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn().Err(err).Msg("Tracing desabilitado")
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("Erro ao finalizar tracing")
		}
	}
}

func runReport(cmd *cobra.Command, opts *options, cep string, stdout, stderr io.Writer) error {
	if opts.output != outputText && opts.output != outputJSON {
		return apperrors.UsageError{Message: fmt.Sprintf("formato de saída inválido %q (use text ou json)\n\n%s", opts.output, usageText)}
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := logging.New(stderr, cfg.LogLevel, cfg.LogFormat).
		With().Str("run_id", uuid.NewString()).Logger()
	logger.Debug().Stringer("config", cfg).Msg("Configuracao carregada")

	stopTracing := initTracing(ctx, cfg, logger)
	defer stopTracing()

	orch := newOrchestrator(cfg, logger, nil)

	prog := newProgress(stderr, opts.quiet, cfg.Holidays)
	orch.OnStage = prog.Update
	prog.Start()
	res, err := orch.Run(ctx, cep)
	prog.Stop()
	if err != nil {
		return err
	}

	if opts.output == outputJSON {
		enc := upstream.JSON.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(api.NewReportResponse(res))
	}
	_, err = fmt.Fprintln(stdout, res.Report)
	return err
}
