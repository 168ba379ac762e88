package analysis

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/oclem/tenderwise/internal/domain/contract"
	"github.com/oclem/tenderwise/internal/domain/matching"
	"github.com/oclem/tenderwise/internal/domain/recommend"
)

// Narrative openings and closings are varied per report so repeated analyses
// do not produce letter-identical texts.
var greetings = []string{
	"Buenos días,",
	"Estimados señores,",
	"Buenas tardes,",
	"Estimado equipo,",
	"Muy buenos días,",
}

var valedictions = []string{
	"Un cordial saludo",
	"Saludos cordiales",
	"Atentamente",
	"Un saludo",
	"Cordialmente",
}

// NarrativeWriter renders the Spanish justification text that accompanies a
// bid. The random source only picks the greeting and valediction; pass a
// seeded one for reproducible output.
type NarrativeWriter struct {
	rng *rand.Rand
}

// NewNarrativeWriter builds a writer around the given random source.
func NewNarrativeWriter(rng *rand.Rand) *NarrativeWriter {
	return &NarrativeWriter{rng: rng}
}

// Write composes the narrative for a finished analysis.
func (w *NarrativeWriter) Write(
	rec *contract.ContractRecord,
	candidates []matching.MatchCandidate,
	recommendation recommend.Recommendation,
) string {
	var b strings.Builder

	b.WriteString(greetings[w.rng.Intn(len(greetings))])
	b.WriteString("\n\n")

	if rec != nil && len(rec.Criteria.Items) > 0 {
		wroteHeader := false
		for _, crit := range rec.Criteria.Items {
			if crit.Weight == nil || crit.Name == "" {
				continue
			}
			if !wroteHeader {
				b.WriteString("En la selección de expedientes, nos encontramos los siguientes criterios de adjudicación:\n")
				wroteHeader = true
			}
			unit := "puntos"
			if *crit.Weight >= 50 {
				unit = "PUNTOS"
			}
			fmt.Fprintf(&b, "%s: %d %s\n", strings.ToUpper(crit.Name), int(*crit.Weight), unit)
		}
		if wroteHeader {
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "Al revisar expedientes previos de similar envergadura, presupuesto y características técnicas, hemos identificado %d licitaciones comparables.\n\n", len(candidates))

	if names := topAwardeeNames(candidates); len(names) > 0 {
		fmt.Fprintf(&b, "Entre las empresas más activas en este ámbito encontramos a %s.\n\n", strings.Join(names, ", "))
	}

	if lo, hi, ok := discountRange(candidates); ok {
		fmt.Fprintf(&b, "Las variaciones en las ofertas económicas presentan un rango de descuentos entre %.1f%% y %.1f%%, evidenciando un mercado competitivo con estrategias comerciales diversas.\n\n", lo, hi)
	}

	fmt.Fprintf(&b, "Tras el análisis estadístico de las licitaciones similares, recomendamos presentar una propuesta económica con un descuento del %.1f%%.\n\n", recommendation.Percent)
	fmt.Fprintf(&b, "Esta recomendación se basa en: %s\n\n", recommendation.Rationale)

	b.WriteString("Además, optimizar los aspectos técnicos de la propuesta y demostrar experiencia previa en proyectos similares serán elementos diferenciadores clave.\n\n")

	b.WriteString(valedictions[w.rng.Intn(len(valedictions))])
	return b.String()
}

// topAwardeeNames lists up to three distinct awardees from the ten best
// candidates, in candidate order.
func topAwardeeNames(candidates []matching.MatchCandidate) []string {
	limit := len(candidates)
	if limit > 10 {
		limit = 10
	}
	seen := make(map[string]struct{})
	var names []string
	for _, c := range candidates[:limit] {
		if len(c.Awardee) <= 3 {
			continue
		}
		if _, dup := seen[c.Awardee]; dup {
			continue
		}
		seen[c.Awardee] = struct{}{}
		names = append(names, c.Awardee)
		if len(names) == 3 {
			break
		}
	}
	return names
}

func discountRange(candidates []matching.MatchCandidate) (lo, hi float64, ok bool) {
	for _, c := range candidates {
		if c.DiscountPercent == nil || *c.DiscountPercent <= 0 {
			continue
		}
		d := *c.DiscountPercent
		if !ok {
			lo, hi, ok = d, d, true
			continue
		}
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi, ok
}
