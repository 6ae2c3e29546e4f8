// Package ibge fetches municipality details and the population estimate from
// the IBGE data service.
package ibge

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
	"github.com/carlosfiori/integrador-apis/internal/jsonx"
	"github.com/carlosfiori/integrador-apis/internal/telemetry"
	"github.com/carlosfiori/integrador-apis/internal/upstream"
)

const (
	Service                    = "ibge"
	DefaultLocalidadesURL      = "https://servicodados.ibge.gov.br/api/v1/localidades"
	DefaultPesquisasURL        = "https://servicodados.ibge.gov.br/api/v1/pesquisas"
	DefaultPopulationIndicator = "47001"

	// PlaceholderAreaKm2 stands in for the municipal area. No area endpoint
	// is consulted, so density is only an approximation.
	PlaceholderAreaKm2 = 500.0
)

var regionPath = jsonx.MustCompile("$.microrregiao.mesorregiao.UF.regiao.nome")

// Municipality holds the demographic record for one IBGE code.
type Municipality struct {
	Name       string  `json:"nome"`
	Region     string  `json:"regiao"`
	Population int     `json:"populacao"`
	AreaKm2    float64 `json:"area_km2"`
	Density    float64 `json:"densidade"`
}

// Endpoints configures where the two IBGE calls go.
type Endpoints struct {
	LocalidadesURL      string
	PesquisasURL        string
	PopulationIndicator string
}

type Client struct {
	Endpoints Endpoints
	Fetcher   upstream.Fetcher
	Logger    zerolog.Logger
}

func NewClient(ep Endpoints, fetcher upstream.Fetcher, logger zerolog.Logger) *Client {
	if ep.LocalidadesURL == "" {
		ep.LocalidadesURL = DefaultLocalidadesURL
	}
	if ep.PesquisasURL == "" {
		ep.PesquisasURL = DefaultPesquisasURL
	}
	if ep.PopulationIndicator == "" {
		ep.PopulationIndicator = DefaultPopulationIndicator
	}
	ep.LocalidadesURL = strings.TrimRight(ep.LocalidadesURL, "/")
	ep.PesquisasURL = strings.TrimRight(ep.PesquisasURL, "/")
	return &Client{
		Endpoints: ep,
		Fetcher:   fetcher,
		Logger:    logger.With().Str("component", Service).Logger(),
	}
}

func (c *Client) MunicipalityURL(code string) string {
	return fmt.Sprintf("%s/municipios/%s", c.Endpoints.LocalidadesURL, url.PathEscape(code))
}

func (c *Client) PopulationURL(code string) string {
	return fmt.Sprintf("%s/indicadores/%s/resultados/%s",
		c.Endpoints.PesquisasURL, url.PathEscape(c.Endpoints.PopulationIndicator), url.PathEscape(code))
}

// Lookup returns the municipality record for code. Only the detail call can
// fail; the population call degrades to zero.
func (c *Client) Lookup(ctx context.Context, code string) (Municipality, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "ibge: lookup", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("ibge", code))

	requestURL := c.MunicipalityURL(code)
	c.Logger.Debug().Str("url", requestURL).Msg("Consultando IBGE")

	body, err := c.Fetcher.Get(ctx, Service, requestURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call ibge")
		c.Logger.Warn().Err(err).Str("ibge", code).Msg("Erro ao consultar IBGE")
		return Municipality{}, err
	}

	root, err := upstream.DecodeObject(Service, requestURL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		c.Logger.Warn().Err(err).Str("ibge", code).Msg("Resposta invalida do IBGE")
		return Municipality{}, err
	}

	m := Municipality{
		Name:    jsonx.Field(root, "nome"),
		AreaKm2: PlaceholderAreaKm2,
	}
	if region, ok := regionPath.Text(root); ok {
		m.Region = region
	} else {
		c.Logger.Debug().Str("ibge", code).Msg("Regiao ausente na resposta do IBGE")
	}

	m.Population = c.population(ctx, code)
	if m.Population > 0 {
		m.Density = float64(m.Population) / m.AreaKm2
	}

	span.SetAttributes(
		attribute.String("municipio", m.Name),
		attribute.String("regiao", m.Region),
		attribute.Int("populacao", m.Population),
	)
	span.SetStatus(codes.Ok, "")
	c.Logger.Info().
		Str("municipio", m.Name).
		Str("regiao", m.Region).
		Int("populacao", m.Population).
		Msg("Dados do municipio obtidos")
	return m, nil
}

// indicatorLevel is one level of [ {"res": [ {"res": {"2010": "...", ...}} ]} ].
// Only the first element of each array is ever decoded.
type indicatorLevel struct {
	Res jsoniter.RawMessage `json:"res"`
}

// firstRes decodes raw as an array and returns the "res" member of its first
// element. Later elements are never inspected.
func firstRes(raw []byte) (jsoniter.RawMessage, error) {
	var items []jsoniter.RawMessage
	if err := upstream.JSON.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	var level indicatorLevel
	if err := upstream.JSON.Unmarshal(items[0], &level); err != nil {
		return nil, err
	}
	return level.Res, nil
}

// population is best effort: every failure leaves the estimate at zero.
func (c *Client) population(ctx context.Context, code string) int {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "ibge: population", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestURL := c.PopulationURL(code)
	body, err := c.Fetcher.Get(ctx, Service, requestURL)
	if err != nil {
		span.RecordError(err)
		c.Logger.Debug().Err(err).Str("url", requestURL).Msg("Populacao indisponivel")
		return 0
	}

	series, err := firstRes(body)
	if err == nil && len(series) > 0 {
		series, err = firstRes(series)
	}
	if err != nil {
		err = &apperrors.ParseError{Service: Service, URL: requestURL, Cause: err}
		span.RecordError(err)
		c.Logger.Debug().Err(err).Str("url", requestURL).Msg("Populacao indisponivel")
		return 0
	}
	if len(series) == 0 {
		c.Logger.Debug().Str("url", requestURL).Msg("Indicador de populacao vazio")
		return 0
	}

	n, ok := LastInteger(series)
	if !ok {
		c.Logger.Debug().Str("url", requestURL).Msg("Nenhum valor inteiro no indicador de populacao")
		return 0
	}
	return n
}

// LastInteger walks a JSON object in document order and returns the last
// value that is an integer number or a string holding one.
func LastInteger(raw []byte) (int, bool) {
	iter := jsoniter.ParseBytes(upstream.JSON, raw)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return 0, false
	}

	var (
		last  int
		found bool
	)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, _ string) bool {
		var (
			n  int
			ok bool
		)
		switch it.WhatIsNext() {
		case jsoniter.NumberValue:
			n, ok = jsonx.Int(it.ReadNumber())
		case jsoniter.StringValue:
			n, ok = jsonx.Int(it.ReadString())
		default:
			it.Skip()
		}
		if ok {
			last, found = n, true
		}
		return it.Error == nil
	})
	if iter.Error != nil {
		return 0, false
	}
	return last, found
}
