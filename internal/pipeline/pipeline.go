// Package pipeline sequences the address, municipal statistics and holiday
// lookups and hands their records to the report composer.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/carlosfiori/integrador-apis/internal/feriados"
	"github.com/carlosfiori/integrador-apis/internal/ibge"
	"github.com/carlosfiori/integrador-apis/internal/report"
	"github.com/carlosfiori/integrador-apis/internal/telemetry"
	"github.com/carlosfiori/integrador-apis/internal/viacep"
)

type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (viacep.Address, error)
}

type StatsLookup interface {
	Lookup(ctx context.Context, code string) (ibge.Municipality, error)
}

type HolidayLookup interface {
	Lookup(ctx context.Context) (feriados.Summary, error)
}

// Composer renders the final report from the collected records.
type Composer func(report.Input) string

// Result carries the records gathered by a run. Report is empty unless Stage
// is StageDone.
type Result struct {
	Address      viacep.Address
	Municipality ibge.Municipality
	Holidays     *feriados.Summary
	Report       string
	Stage        Stage
}

// StepError wraps the hard failure that moved the run to StageFailed. Stage
// is the last stage reached before the failing step.
type StepError struct {
	Stage Stage
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed after %s: %v", e.Step, e.Stage, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

const (
	StepAddress  = "address"
	StepStats    = "stats"
	StepHolidays = "holidays"
)

// Orchestrator runs the lookups. Holidays may be nil, in which case the
// two-service variant runs and the report has no holiday section.
type Orchestrator struct {
	Address  AddressLookup
	Stats    StatsLookup
	Holidays HolidayLookup
	Compose  Composer

	// Concurrent runs the holiday lookup alongside the address/stats chain.
	Concurrent bool

	Metrics *telemetry.Metrics
	Logger  zerolog.Logger
	// OnStage, when set, is called on every transition.
	OnStage func(Stage)
}

// Run executes the pipeline for cep. On a hard failure the returned error is
// a *StepError and the result holds whatever was fetched before it.
func (o *Orchestrator) Run(ctx context.Context, cep string) (Result, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "pipeline: run")
	defer span.End()
	span.SetAttributes(
		attribute.String("cep", cep),
		attribute.Bool("holidays", o.Holidays != nil),
		attribute.Bool("concurrent", o.Concurrent),
	)

	res := Result{Stage: StageStart}
	o.transition(&res, StageStart)

	var err error
	if o.Concurrent && o.Holidays != nil {
		err = o.runConcurrent(ctx, cep, &res)
	} else {
		err = o.runSequential(ctx, cep, &res)
	}
	o.Metrics.ObserveReport(err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline failed")
		o.transition(&res, StageFailed)
		o.Logger.Error().Err(err).Str("cep", cep).Msg("Falha ao gerar relatorio")
		return res, err
	}

	res.Report = o.compose(res)
	o.transition(&res, StageReported)
	o.transition(&res, StageDone)

	span.SetStatus(codes.Ok, "")
	o.Logger.Info().Str("cep", cep).Msg("Relatorio gerado")
	return res, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, cep string, res *Result) error {
	if err := o.fetchAddressAndStats(ctx, cep, res); err != nil {
		return err
	}
	if o.Holidays == nil {
		return nil
	}
	summary, err := o.fetchHolidays(ctx)
	if err != nil {
		return &StepError{Stage: res.Stage, Step: StepHolidays, Err: err}
	}
	res.Holidays = &summary
	o.transition(res, StageHolidaysFetched)
	return nil
}

// runConcurrent fetches holidays in parallel with the address/stats chain.
// The first hard failure cancels the sibling. Stages are still reported in
// the sequential order once both branches have finished, and a holiday
// failure carries the stage the chain had reached.
func (o *Orchestrator) runConcurrent(ctx context.Context, cep string, res *Result) error {
	g, gctx := errgroup.WithContext(ctx)

	var (
		chain      Result
		summary    feriados.Summary
		holidayErr *StepError
	)
	chain.Stage = StageStart

	g.Go(func() error {
		return o.fetchAddressAndStats(gctx, cep, &chain)
	})
	g.Go(func() error {
		s, err := o.fetchHolidays(gctx)
		if err != nil {
			holidayErr = &StepError{Step: StepHolidays, Err: err}
			return holidayErr
		}
		summary = s
		return nil
	})

	err := g.Wait()
	if holidayErr != nil {
		holidayErr.Stage = chain.Stage
	}
	res.Address = chain.Address
	res.Municipality = chain.Municipality
	res.Stage = chain.Stage
	if err != nil {
		return err
	}
	res.Holidays = &summary
	o.transition(res, StageHolidaysFetched)
	return nil
}

func (o *Orchestrator) fetchAddressAndStats(ctx context.Context, cep string, res *Result) error {
	started := time.Now()
	addr, err := o.Address.Lookup(ctx, cep)
	o.Metrics.ObserveLookup(viacep.Service, started, err)
	if err != nil {
		return &StepError{Stage: res.Stage, Step: StepAddress, Err: err}
	}
	res.Address = addr
	o.transition(res, StageAddressFetched)

	started = time.Now()
	mun, err := o.Stats.Lookup(ctx, addr.IBGECode)
	o.Metrics.ObserveLookup(ibge.Service, started, err)
	if err != nil {
		return &StepError{Stage: res.Stage, Step: StepStats, Err: err}
	}
	res.Municipality = mun
	o.transition(res, StageStatsFetched)
	return nil
}

func (o *Orchestrator) fetchHolidays(ctx context.Context) (feriados.Summary, error) {
	started := time.Now()
	summary, err := o.Holidays.Lookup(ctx)
	o.Metrics.ObserveLookup(feriados.Service, started, err)
	return summary, err
}

func (o *Orchestrator) compose(res Result) string {
	compose := o.Compose
	if compose == nil {
		compose = report.Compose
	}
	return compose(report.Input{
		Address:      res.Address,
		Municipality: res.Municipality,
		Holidays:     res.Holidays,
	})
}

func (o *Orchestrator) transition(res *Result, next Stage) {
	res.Stage = next
	o.Logger.Debug().Stringer("stage", next).Msg("Etapa concluida")
	if o.OnStage != nil {
		o.OnStage(next)
	}
}
