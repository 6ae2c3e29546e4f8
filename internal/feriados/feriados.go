// Package feriados counts the national holidays of the current year and
// finds the next one, using BrasilAPI.
package feriados

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carlosfiori/integrador-apis/internal/telemetry"
	"github.com/carlosfiori/integrador-apis/internal/upstream"
)

const (
	Service        = "brasilapi"
	DefaultBaseURL = "https://brasilapi.com.br/api/feriados/v1"
	DefaultType    = "national"
	NotAvailable   = "N/A"
	isoDate        = "2006-01-02"
)

type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Summary is the holiday record for one year. When HasNext is false, Next
// holds the "no remaining holiday" sentinel.
type Summary struct {
	Year    int     `json:"ano"`
	Total   int     `json:"total"`
	Next    Holiday `json:"proximo"`
	HasNext bool    `json:"tem_proximo"`
}

// NoneRemaining is the sentinel used once the year has no holiday left.
func NoneRemaining(year int) Holiday {
	return Holiday{
		Name: fmt.Sprintf("Nenhum feriado restante em %d", year),
		Date: NotAvailable,
		Type: NotAvailable,
	}
}

type Client struct {
	BaseURL string
	Fetcher upstream.Fetcher
	Logger  zerolog.Logger
	// Now defaults to time.Now; the local date decides both the year and "today".
	Now func() time.Time
}

func NewClient(baseURL string, fetcher upstream.Fetcher, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Fetcher: fetcher,
		Logger:  logger.With().Str("component", Service).Logger(),
		Now:     time.Now,
	}
}

func (c *Client) URL(year int) string {
	return c.BaseURL + "/" + strconv.Itoa(year)
}

// Lookup fetches the holidays for the current year.
func (c *Client) Lookup(ctx context.Context) (Summary, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "brasilapi: feriados", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	today := now()
	span.SetAttributes(attribute.Int("ano", today.Year()))

	requestURL := c.URL(today.Year())
	c.Logger.Debug().Str("url", requestURL).Msg("Consultando Brasil API (Feriados)")

	body, err := c.Fetcher.Get(ctx, Service, requestURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call brasilapi")
		c.Logger.Warn().Err(err).Msg("Erro ao consultar feriados")
		return Summary{}, err
	}

	entries, err := upstream.DecodeArray(Service, requestURL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		c.Logger.Warn().Err(err).Msg("Resposta invalida da Brasil API")
		return Summary{}, err
	}

	s := Summarize(entries, today)
	span.SetAttributes(attribute.Int("total", s.Total), attribute.String("proximo", s.Next.Date))
	span.SetStatus(codes.Ok, "")

	ev := c.Logger.Info().Int("ano", s.Year).Int("total", s.Total)
	if s.HasNext {
		ev = ev.Str("proximo", s.Next.Name).Str("data", s.Next.Date)
	}
	ev.Msg("Feriados nacionais encontrados")
	return s, nil
}

// Summarize counts the valid entries and picks the first one dated on or
// after today. Entries are taken in the order received; the service is
// trusted to return them chronologically.
func Summarize(entries []any, today time.Time) Summary {
	s := Summary{Year: today.Year()}
	todayISO := today.Format(isoDate)

	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		date, okDate := obj["date"].(string)
		name, okName := obj["name"].(string)
		if !okDate || !okName {
			continue
		}
		typ, okType := obj["type"].(string)
		if !okType {
			typ = DefaultType
		}

		s.Total++
		if !s.HasNext && date >= todayISO {
			s.Next = Holiday{Date: date, Name: name, Type: typ}
			s.HasNext = true
		}
	}

	if !s.HasNext {
		s.Next = NoneRemaining(s.Year)
	}
	return s
}
