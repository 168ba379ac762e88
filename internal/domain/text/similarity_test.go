package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("short text yields empty set", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords("obra"))
		assert.Empty(t, ExtractKeywords(""))
	})

	t.Run("stopwords and short words removed", func(t *testing.T) {
		kws := ExtractKeywords("Servicio de mantenimiento para el edificio municipal")
		assert.Contains(t, kws, "servicio")
		assert.Contains(t, kws, "mantenimiento")
		assert.Contains(t, kws, "edificio")
		assert.Contains(t, kws, "municipal")
		assert.NotContains(t, kws, "para")
		assert.NotContains(t, kws, "el")
		assert.NotContains(t, kws, "de")
	})

	t.Run("lowercased", func(t *testing.T) {
		kws := ExtractKeywords("LIMPIEZA VIARIA y recogida")
		assert.Contains(t, kws, "limpieza")
		assert.Contains(t, kws, "viaria")
	})

	t.Run("accented words kept whole", func(t *testing.T) {
		kws := ExtractKeywords("redacción de la memoria técnica de climatización")
		assert.Contains(t, kws, "técnica")
		assert.Contains(t, kws, "redacción")
		assert.Contains(t, kws, "climatización")
		assert.NotContains(t, kws, "cnica")

		// Accented stopwords are recognized, not split into kept fragments.
		kws = ExtractKeywords("según la cláusula administrativa del contrato")
		assert.NotContains(t, kws, "cláusula")
		assert.NotContains(t, kws, "usula")
		assert.Contains(t, kws, "administrativa")
	})
}

func TestKeywordOverlap(t *testing.T) {
	a := ExtractKeywords("servicio de limpieza viaria municipal")
	b := ExtractKeywords("servicio de limpieza de edificios")

	assert.Equal(t, 0.0, KeywordOverlap(nil, a))
	assert.Equal(t, 0.0, KeywordOverlap(a, nil))

	got := KeywordOverlap(a, b)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)

	assert.Equal(t, 1.0, KeywordOverlap(a, a))
}

func TestSimilarity_Short(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "obra civil"))
	assert.Equal(t, 0.0, Similarity("obra civil", ""))

	// Identical short texts are a perfect match.
	assert.Equal(t, 1.0, Similarity("abc", "abc"))

	// Disjoint short texts score zero.
	assert.Equal(t, 0.0, Similarity("puente", "escuela"))

	// "obras de asfaltado" vs "obras de pintura": tokens {obras,de,asfaltado}
	// and {obras,de,pintura}, intersection 2, union 4.
	assert.InDelta(t, 0.5, Similarity("obras de asfaltado", "obras de pintura"), 1e-9)
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Obra Civil", "obra civil"))
}

func TestSimilarity_ShortCutoffCountsRunes(t *testing.T) {
	// Both inputs are 49 runes but 50+ bytes thanks to the accents, so the
	// cutoff must count runes to pick the token-overlap path. Seven tokens
	// each, six shared, union eight.
	a := "rehabilitación de fachada y cubierta del edificio"
	b := "rehabilitación de fachada y cubierta del pabellón"
	assert.InDelta(t, 0.75, Similarity(a, b), 1e-9)
}

func TestSimilarity_Long(t *testing.T) {
	a := "servicio de mantenimiento integral de las instalaciones deportivas municipales incluyendo piscinas y polideportivos"
	b := "servicio de mantenimiento integral de las instalaciones deportivas municipales incluyendo piscinas y polideportivos"
	c := "suministro de equipos informáticos y licencias de software para los centros educativos de la provincia durante el curso"

	assert.True(t, len(a) >= shortTextLimit)

	// Identical long texts score 1.
	assert.InDelta(t, 1.0, Similarity(a, b), 1e-9)

	// Unrelated long texts score near zero, and well below related ones.
	cross := Similarity(a, c)
	assert.Less(t, cross, 0.2)

	related := "servicio de mantenimiento y conservación de instalaciones deportivas y piscinas municipales en los distritos de la ciudad"
	assert.Greater(t, Similarity(a, related), cross)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := "ejecución de obras de rehabilitación energética de la envolvente térmica del edificio consistorial"
	b := "obras de rehabilitación y mejora de la eficiencia energética en edificios públicos municipales"
	assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-12)
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"a b c", "a b c d"},
		{strings.Repeat("mantenimiento edificios municipales ", 5), strings.Repeat("mantenimiento escuelas provinciales ", 5)},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0+1e-9)
	}
}
