package api

import (
	"github.com/carlosfiori/integrador-apis/internal/feriados"
	"github.com/carlosfiori/integrador-apis/internal/ibge"
	"github.com/carlosfiori/integrador-apis/internal/pipeline"
	"github.com/carlosfiori/integrador-apis/internal/viacep"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ReportResponse is the JSON form of a finished run. It is shared by the
// server and the CLI's --output json mode.
type ReportResponse struct {
	Address      viacep.Address    `json:"endereco"`
	Municipality ibge.Municipality `json:"municipio"`
	Holidays     *feriados.Summary `json:"feriados,omitempty"`
	Report       string            `json:"relatorio"`
}

// NewReportResponse maps a pipeline result onto the response model.
func NewReportResponse(res pipeline.Result) ReportResponse {
	return ReportResponse{
		Address:      res.Address,
		Municipality: res.Municipality,
		Holidays:     res.Holidays,
		Report:       res.Report,
	}
}
