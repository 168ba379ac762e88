package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFromText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain number", "250000", 250000, true},
		{"spanish thousands and decimal comma", "1.234.567,89 €", 1234567.89, true},
		{"euro suffix", "250000 €", 250000, true},
		{"euro prefix", "€ 250000", 250000, true},
		{"euros word", "250000 euros", 250000, true},
		{"embedded in text", "Presupuesto base: 98.500,00 euros sin IVA", 98500.00, true},
		{"too small", "50", 0, false},
		{"exactly hundred", "100", 0, false},
		{"empty", "", 0, false},
		{"no digits", "sin importe", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceFromText(tt.in)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestResolveRow_ColumnSynonyms(t *testing.T) {
	r := Row{
		Columns: []string{"id", "titulo", "localidad", "cpv_principal", "valor_estimado", "adjudicatario", "fecha_publicacion"},
		Values: map[string]string{
			"id":                "42",
			"titulo":            "Obras de reforma y ampliación del colegio público San Isidro",
			"localidad":         "Sevilla",
			"cpv_principal":     "45214200",
			"valor_estimado":    "480.000,00 €",
			"adjudicatario":     "Obras y Reformas del Sur SL",
			"fecha_publicacion": "2023-11-02",
		},
	}

	v := resolveRow(r)
	assert.Equal(t, "Obras de reforma y ampliación del colegio público San Isidro", v.subject)
	assert.Equal(t, "Sevilla", v.locality)
	assert.Equal(t, "45214200", v.cpv)
	require.NotNil(t, v.price)
	assert.InDelta(t, 480000.0, *v.price, 1e-9)
	assert.Equal(t, "Obras y Reformas del Sur SL", v.awardee)
	assert.Equal(t, "2023-11-02", v.date)
	assert.Equal(t, 2023, v.year)
}

func TestResolveRow_PlausibilityChecks(t *testing.T) {
	r := Row{
		Columns: []string{"importe", "presupuesto", "provincia", "objeto"},
		Values: map[string]string{
			"importe":     "12", // implausible, resolution moves on
			"presupuesto": "95000",
			"provincia":   "M",           // too short
			"objeto":      "Obra menor", // too short for a subject
		},
	}

	v := resolveRow(r)
	require.NotNil(t, v.price)
	assert.Equal(t, 95000.0, *v.price)
	assert.Empty(t, v.locality)
	assert.Empty(t, v.subject)
}

func TestResolveRow_Empty(t *testing.T) {
	v := resolveRow(Row{})
	assert.Nil(t, v.price)
	assert.Empty(t, v.locality)
	assert.Zero(t, v.year)
}

func TestParseRowDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"pronto", time.Time{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRowDate(tt.in), "input %q", tt.in)
	}
}
