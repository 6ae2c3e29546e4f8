// Package viacep resolves a CEP into an address through the ViaCEP service.
package viacep

import (
	"context"
	"fmt"
	"net/url"
	"strings"

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
	Service        = "viacep"
	DefaultBaseURL = "https://viacep.com.br/ws"
)

// Address is the normalized ViaCEP record. Fields the service omits or sends
// with a non-string type are left empty.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	IBGECode     string `json:"ibge"`
}

type Client struct {
	BaseURL string
	Fetcher upstream.Fetcher
	Logger  zerolog.Logger
}

func NewClient(baseURL string, fetcher upstream.Fetcher, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Fetcher: fetcher,
		Logger:  logger.With().Str("component", Service).Logger(),
	}
}

// URL builds the lookup URL. The CEP is path-escaped but otherwise passed
// through untouched; format validation is left to the service.
func (c *Client) URL(cep string) string {
	return fmt.Sprintf("%s/%s/json/", c.BaseURL, url.PathEscape(cep))
}

// Lookup fetches the address for cep.
func (c *Client) Lookup(ctx context.Context, cep string) (Address, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "viacep: lookup", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("cep", cep))

	requestURL := c.URL(cep)
	c.Logger.Debug().Str("url", requestURL).Msg("Consultando ViaCEP")

	body, err := c.Fetcher.Get(ctx, Service, requestURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call viacep")
		c.Logger.Warn().Err(err).Str("cep", cep).Msg("Erro ao consultar ViaCEP")
		return Address{}, err
	}

	root, err := upstream.DecodeObject(Service, requestURL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		c.Logger.Warn().Err(err).Str("cep", cep).Msg("Resposta invalida do ViaCEP")
		return Address{}, err
	}

	if jsonx.Truthy(root["erro"]) {
		err := &apperrors.NotFoundError{Service: Service, Key: cep}
		span.RecordError(err)
		span.SetStatus(codes.Error, "zipcode not found")
		c.Logger.Warn().Str("cep", cep).Msg("CEP nao encontrado")
		return Address{}, err
	}

	addr := Address{
		CEP:          jsonx.Field(root, "cep"),
		Street:       jsonx.Field(root, "logradouro"),
		Neighborhood: jsonx.Field(root, "bairro"),
		City:         jsonx.Field(root, "localidade"),
		State:        jsonx.Field(root, "uf"),
		IBGECode:     jsonx.Field(root, "ibge"),
	}

	span.SetAttributes(attribute.String("ibge", addr.IBGECode))
	span.SetStatus(codes.Ok, "")
	c.Logger.Info().
		Str("cep", cep).
		Str("logradouro", addr.Street).
		Str("cidade", addr.City).
		Str("uf", addr.State).
		Str("ibge", addr.IBGECode).
		Msg("Endereco encontrado")
	return addr, nil
}
