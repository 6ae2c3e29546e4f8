package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosfiori/integrador-apis/internal/feriados"
	"github.com/carlosfiori/integrador-apis/internal/ibge"
	"github.com/carlosfiori/integrador-apis/internal/viacep"
)

func paulista() Input {
	return Input{
		Address: viacep.Address{
			CEP:          "01310-100",
			Street:       "Avenida Paulista",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			State:        "SP",
			IBGECode:     "3550308",
		},
		Municipality: ibge.Municipality{
			Name:       "São Paulo",
			Region:     "Sudeste",
			Population: 12325232,
			AreaKm2:    ibge.PlaceholderAreaKm2,
			Density:    12325232 / ibge.PlaceholderAreaKm2,
		},
	}
}

func TestCompose_TwoServices(t *testing.T) {
	out := Compose(paulista())

	assert.Contains(t, out, "Avenida Paulista")
	assert.Contains(t, out, "São Paulo/SP")
	assert.Contains(t, out, "região Sudeste")
	assert.Contains(t, out, "3550308")
	assert.Contains(t, out, "12.325.232")
	assert.Contains(t, out, "500,00 km²")
	assert.Contains(t, out, "24.650,46")
	assert.NotContains(t, out, "FERIADOS")
	assert.NotContains(t, out, "feriado")
}

func TestCompose_WithHolidays(t *testing.T) {
	in := paulista()
	in.Holidays = &feriados.Summary{
		Year:    2025,
		Total:   14,
		Next:    feriados.Holiday{Date: "2025-12-25", Name: "Natal", Type: "national"},
		HasNext: true,
	}

	out := Compose(in)

	assert.Contains(t, out, "FERIADOS NACIONAIS")
	assert.Contains(t, out, "ANÁLISE INTEGRADA DAS 3 APIs")
	assert.Contains(t, out, "14")
	assert.Contains(t, out, "O próximo feriado nacional será: Natal,")
	assert.Contains(t, out, "que ocorrerá em 2025-12-25.")
}

func TestCompose_LongValueKeepsLabelColumn(t *testing.T) {
	in := paulista()
	in.Address.Street = strings.TrimSpace(strings.Repeat("Avenida Marginal ", 7))

	out := Compose(in)

	var continuation []string
	seen := false
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Logradouro:") {
			seen = true
			continue
		}
		if seen && strings.Contains(line, "Marginal") {
			continuation = append(continuation, line)
		}
		if strings.Contains(line, "Bairro:") {
			break
		}
	}
	require.NotEmpty(t, continuation)
	indent := "║ " + strings.Repeat(" ", labelWidth)
	for _, line := range continuation {
		assert.True(t, strings.HasPrefix(line, indent), "line %q", line)
	}
}

func TestCompose_RulerLinesHaveNoPadding(t *testing.T) {
	out := Compose(paulista())

	var heading string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "ANÁLISE INTEGRADA") {
			heading = line
		}
	}
	require.NotEmpty(t, heading)
	assert.False(t, strings.HasSuffix(heading, " "), "line %q", heading)
}

func TestSummary_HolidaySentinel(t *testing.T) {
	in := paulista()
	in.Holidays = &feriados.Summary{Year: 2025, Total: 3, Next: feriados.NoneRemaining(2025)}

	out := Summary(in)

	assert.Contains(t, out, "Nenhum feriado restante em 2025.")
	assert.NotContains(t, out, "próximo feriado")
}

func TestSummary_DegradedFields(t *testing.T) {
	in := paulista()
	in.Municipality.Region = ""
	in.Municipality.Population = 0
	in.Municipality.Density = 0

	out := Summary(in)

	assert.Contains(t, out, "São Paulo/SP, município do Brasil.")
	assert.Contains(t, out, "população estimada de 0 habitantes")
	assert.Contains(t, out, "densidade demográfica de 0,00 habitantes")
	assert.Contains(t, Compose(in), missingValue)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "0", FormatInt(0))
	assert.Equal(t, "999", FormatInt(999))
	assert.Equal(t, "1.000", FormatInt(1000))
	assert.Equal(t, "12.325.232", FormatInt(12325232))
	assert.Equal(t, "500,00", FormatDecimal(500))
	assert.Equal(t, "0,00", FormatDecimal(0))
	assert.Equal(t, "24.650,46", FormatDecimal(24650.464))
}
