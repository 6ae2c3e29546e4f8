package feriados

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
	"github.com/carlosfiori/integrador-apis/internal/upstream"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.Local) }
}

func newTestClient(t *testing.T, status int, body string, now func() time.Time) (*Client, *string) {
	t.Helper()
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL+"/api/feriados/v1", upstream.Fetcher{Client: server.Client()}, zerolog.Nop())
	c.Now = now
	return c, &path
}

func TestLookup_PicksFirstUpcoming(t *testing.T) {
	body := `[
	  {"date": "2025-12-25", "name": "Natal", "type": "national"},
	  {"date": "2025-01-01", "name": "Confraternização", "type": "national"}
	]`
	c, path := newTestClient(t, http.StatusOK, body, fixedClock(2025, time.June, 1))

	s, err := c.Lookup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/feriados/v1/2025", *path)
	assert.Equal(t, 2025, s.Year)
	assert.Equal(t, 2, s.Total)
	assert.True(t, s.HasNext)
	assert.Equal(t, Holiday{Date: "2025-12-25", Name: "Natal", Type: "national"}, s.Next)
}

func TestLookup_YearExhausted(t *testing.T) {
	body := `[
	  {"date": "2025-01-01", "name": "Confraternização mundial", "type": "national"},
	  {"date": "2025-04-21", "name": "Tiradentes", "type": "national"},
	  {"date": "2025-12-25", "name": "Natal", "type": "national"}
	]`
	c, _ := newTestClient(t, http.StatusOK, body, fixedClock(2025, time.December, 31))

	s, err := c.Lookup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, s.Total)
	assert.False(t, s.HasNext)
	assert.Equal(t, NoneRemaining(2025), s.Next)
	assert.Equal(t, "Nenhum feriado restante em 2025", s.Next.Name)
	assert.Equal(t, NotAvailable, s.Next.Date)
}

func TestLookup_TodayIsAHoliday(t *testing.T) {
	body := `[{"date": "2025-11-20", "name": "Dia Nacional de Zumbi e da Consciência Negra", "type": "national"}]`
	c, _ := newTestClient(t, http.StatusOK, body, fixedClock(2025, time.November, 20))

	s, err := c.Lookup(context.Background())
	require.NoError(t, err)
	assert.True(t, s.HasNext)
	assert.Equal(t, "2025-11-20", s.Next.Date)
}

func TestLookup_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "object instead of array",
			status: http.StatusOK,
			body:   `{"message": "ano fora do intervalo suportado"}`,
			check: func(t *testing.T, err error) {
				var pe *apperrors.ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name:   "malformed",
			status: http.StatusOK,
			body:   `[{"date": `,
			check: func(t *testing.T, err error) {
				var pe *apperrors.ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				var te *apperrors.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.status, tt.body, fixedClock(2025, time.June, 1))
			_, err := c.Lookup(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSummarize_SkipsInvalidEntries(t *testing.T) {
	entries := []any{
		map[string]any{"date": "2025-01-01", "name": "Confraternização"},
		map[string]any{"date": "2025-04-18"},
		map[string]any{"name": "Sem data"},
		map[string]any{"date": 20250421, "name": "Tiradentes"},
		"garbage",
		nil,
		map[string]any{"date": "2025-09-07", "name": "Independência", "type": 1},
	}

	s := Summarize(entries, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2, s.Total)
	assert.True(t, s.HasNext)
	assert.Equal(t, Holiday{Date: "2025-09-07", Name: "Independência", Type: DefaultType}, s.Next)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, s.Total)
	assert.False(t, s.HasNext)
	assert.Equal(t, "Nenhum feriado restante em 2026", s.Next.Name)
}
