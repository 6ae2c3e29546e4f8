package main

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/carlosfiori/integrador-apis/internal/logging"
	"github.com/carlosfiori/integrador-apis/internal/pipeline"
)

const spinnerRefreshRate = 120 * time.Millisecond

// Spinner abstracts the terminal spinner so progress can be tested without a
// TTY.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(w io.Writer) Spinner {
	return &realSpinner{s: spinner.New(spinner.CharSets[11], spinnerRefreshRate, spinner.WithWriter(w))}
}

// progress turns pipeline stages into spinner messages. It is inert when
// stderr is not a terminal or --quiet is set.
type progress struct {
	sp       Spinner
	holidays bool
}

func newProgress(w io.Writer, quiet, holidays bool) *progress {
	p := &progress{holidays: holidays}
	if !quiet && logging.IsTerminal(w) {
		p.sp = newSpinner(w)
	}
	return p
}

func (p *progress) Start() {
	if p.sp == nil {
		return
	}
	p.sp.UpdateSuffix(" " + p.message(pipeline.StageStart))
	p.sp.Start()
}

func (p *progress) Stop() {
	if p.sp != nil {
		p.sp.Stop()
	}
}

// Update is installed as the orchestrator's OnStage callback.
func (p *progress) Update(stage pipeline.Stage) {
	if p.sp == nil || stage.Terminal() {
		return
	}
	p.sp.UpdateSuffix(" " + p.message(stage))
}

func (p *progress) message(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageStart:
		return "[API 1] Consultando ViaCEP..."
	case pipeline.StageAddressFetched:
		return "[API 2] Consultando IBGE..."
	case pipeline.StageStatsFetched:
		if p.holidays {
			return "[API 3] Consultando Brasil API (feriados)..."
		}
		return "Gerando relatório..."
	default:
		return "Gerando relatório..."
	}
}
