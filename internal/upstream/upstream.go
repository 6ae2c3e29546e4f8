// Package upstream holds the request/decode plumbing shared by the ViaCEP,
// IBGE and BrasilAPI lookups.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
)

// DefaultUserAgent identifies the integrador on every upstream request.
const DefaultUserAgent = "IntegradorAPIs/1.0"

// JSON is the codec used for every upstream body. UseNumber keeps integer
// values exact so population figures are never routed through float64.
var JSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client whose transport propagates trace context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Fetcher performs a single GET and hands back the body. The body buffer is
// owned by the caller once returned.
type Fetcher struct {
	Client    HTTPClient
	UserAgent string
}

// Get issues the request and classifies failures as TransportError.
func (f Fetcher) Get(ctx context.Context, service, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &apperrors.TransportError{Service: service, URL: requestURL, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &apperrors.TransportError{Service: service, URL: requestURL, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.TransportError{Service: service, URL: requestURL, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.TransportError{Service: service, URL: requestURL, StatusCode: resp.StatusCode}
	}

	return body, nil
}

// Decode unmarshals body into v, reporting failures as ParseError.
func Decode(service, requestURL string, body []byte, v any) error {
	if err := JSON.Unmarshal(body, v); err != nil {
		return &apperrors.ParseError{Service: service, URL: requestURL, Cause: err}
	}
	return nil
}

// DecodeObject decodes a body whose top level must be a JSON object.
func DecodeObject(service, requestURL string, body []byte) (map[string]any, error) {
	var doc any
	if err := Decode(service, requestURL, body, &doc); err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &apperrors.ParseError{Service: service, URL: requestURL, Cause: fmt.Errorf("expected JSON object, got %T", doc)}
	}
	return obj, nil
}

// DecodeArray decodes a body whose top level must be a JSON array.
func DecodeArray(service, requestURL string, body []byte) ([]any, error) {
	var doc any
	if err := Decode(service, requestURL, body, &doc); err != nil {
		return nil, err
	}
	arr, ok := doc.([]any)
	if !ok {
		return nil, &apperrors.ParseError{Service: service, URL: requestURL, Cause: fmt.Errorf("expected JSON array, got %T", doc)}
	}
	return arr, nil
}
