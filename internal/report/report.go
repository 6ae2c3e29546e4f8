// Package report renders the combined address, demographic and holiday
// report.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/carlosfiori/integrador-apis/internal/feriados"
	"github.com/carlosfiori/integrador-apis/internal/ibge"
	"github.com/carlosfiori/integrador-apis/internal/viacep"
)

const (
	boxWidth   = 62
	labelWidth = 14
	// boxWidth minus the horizontal padding and the label column.
	valueWidth = boxWidth - 2 - labelWidth
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(labelWidth)
	valueStyle   = lipgloss.NewStyle().Width(valueWidth)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1).Width(boxWidth)
	rulerStyle   = lipgloss.NewStyle().Bold(true)
	missingValue = "não informado"
)

// Input groups the records produced by the lookups. Holidays is nil in the
// two-service variant.
type Input struct {
	Address      viacep.Address
	Municipality ibge.Municipality
	Holidays     *feriados.Summary
}

// Compose renders the full report: one box per source followed by the
// narrative summary.
func Compose(in Input) string {
	title := "RELATÓRIO INTEGRADO - LOCALIZAÇÃO E DEMOGRAFIA"
	if in.Holidays != nil {
		title = "RELATÓRIO INTEGRADO - LOCALIZAÇÃO, DEMOGRAFIA E FERIADOS"
	}

	blocks := []string{
		boxStyle.Render(titleStyle.Render(title)),
		boxStyle.Render(section("ENDEREÇO (ViaCEP)", [][2]string{
			{"CEP", in.Address.CEP},
			{"Logradouro", in.Address.Street},
			{"Bairro", in.Address.Neighborhood},
			{"Município", in.Address.City},
			{"Estado", in.Address.State},
			{"Cód. IBGE", in.Address.IBGECode},
		})),
		boxStyle.Render(section("DADOS DEMOGRÁFICOS E GEOGRÁFICOS (IBGE)", [][2]string{
			{"Nome", in.Municipality.Name},
			{"Região", orMissing(in.Municipality.Region)},
			{"População", FormatInt(in.Municipality.Population)},
			{"Área", FormatDecimal(in.Municipality.AreaKm2) + " km² (estimada)"},
			{"Densidade", FormatDecimal(in.Municipality.Density) + " hab/km²"},
		})),
	}
	if h := in.Holidays; h != nil {
		blocks = append(blocks, boxStyle.Render(section("FERIADOS NACIONAIS (Brasil API)", [][2]string{
			{"Total no ano", fmt.Sprintf("%d", h.Total)},
			{"Próximo", h.Next.Name},
			{"Data", h.Next.Date},
			{"Tipo", h.Next.Type},
		})))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, blocks...))
	b.WriteString("\n\n")
	heading := "ANÁLISE INTEGRADA"
	if in.Holidays != nil {
		heading = "ANÁLISE INTEGRADA DAS 3 APIs"
	}
	ruler := strings.Repeat("═", boxWidth+2)
	b.WriteString(strings.Join([]string{
		rulerStyle.Render(ruler),
		rulerStyle.Render("  " + heading),
		rulerStyle.Render(ruler),
	}, "\n"))
	b.WriteString("\n\n")
	b.WriteString(Summary(in))
	return b.String()
}

// Summary is the narrative paragraph interpolating the key fields.
func Summary(in Input) string {
	a, m := in.Address, in.Municipality

	var b strings.Builder
	fmt.Fprintf(&b, "O endereço %s está localizado em\n", a.Street)
	if m.Region != "" {
		fmt.Fprintf(&b, "%s/%s, município da região %s do Brasil.\n\n", a.City, a.State, m.Region)
	} else {
		fmt.Fprintf(&b, "%s/%s, município do Brasil.\n\n", a.City, a.State)
	}
	fmt.Fprintf(&b, "O município possui população estimada de %s habitantes,\n", FormatInt(m.Population))
	fmt.Fprintf(&b, "distribuídos em aproximadamente %s km², resultando em\n", FormatDecimal(m.AreaKm2))
	fmt.Fprintf(&b, "densidade demográfica de %s habitantes por km².\n", FormatDecimal(m.Density))

	if h := in.Holidays; h != nil {
		b.WriteString("\n")
		if h.HasNext {
			fmt.Fprintf(&b, "O próximo feriado nacional será: %s,\n", h.Next.Name)
			fmt.Fprintf(&b, "que ocorrerá em %s.\n", h.Next.Date)
		} else {
			fmt.Fprintf(&b, "%s.\n", h.Next.Name)
		}
	}
	return b.String()
}

// FormatInt renders n with pt-BR thousands separators (12.325.232).
func FormatInt(n int) string {
	return humanize.FormatInteger("#.###,", n)
}

// FormatDecimal renders f with pt-BR separators and two decimals (24.650,46).
func FormatDecimal(f float64) string {
	return humanize.FormatFloat("#.###,##", f)
}

func section(title string, rows [][2]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r[0]+":"), valueStyle.Render(r[1])))
	}
	return strings.Join(lines, "\n")
}

func orMissing(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}
