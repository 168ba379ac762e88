// Package recommend turns observed award discounts into a bid discount
// recommendation. The approach is deliberately simple statistics over the
// discounts of similar past contracts: find a stable cluster and outbid it
// slightly, or fall back to the mean, with small adjustments for market
// competitiveness and variability.
package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/oclem/tenderwise/internal/domain/matching"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
)

const (
	// defaultDiscount applies when no usable discount history exists.
	defaultDiscount = 15.0

	// clusterRadius groups discounts within ±2 points of a base value.
	clusterRadius = 2.0

	// minClusterSize is how many nearby discounts make a cluster stable.
	minClusterSize = 3

	// outbidMargin is added on top of the reference discount.
	outbidMargin = 2.0

	// competitiveThreshold is the candidate count above which the market is
	// considered crowded.
	competitiveThreshold = 15

	// volatileStdDev is the spread above which the recommendation turns
	// conservative.
	volatileStdDev = 15.0

	minDiscount = 5.0
	maxDiscount = 70.0
)

// DiscountStats summarizes the observed discount distribution.
type DiscountStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Recommendation is the engine's output.
type Recommendation struct {
	// Percent is the recommended bid discount, clamped to [5, 70].
	Percent float64 `json:"percent"`

	// Rationale explains, in Spanish, how Percent was derived. It is embedded
	// verbatim in generated narratives.
	Rationale string `json:"rationale"`

	Stats DiscountStats `json:"stats"`
}

// Engine computes discount recommendations.
type Engine struct {
	log logging.Logger
}

// NewEngine builds an Engine. A nil logger means nop.
func NewEngine(log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Engine{log: log.Named("recommend")}
}

// FromCandidates recommends a discount from scored candidates, using their
// positive observed discounts.
func (e *Engine) FromCandidates(candidates []matching.MatchCandidate) Recommendation {
	discounts := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		if c.DiscountPercent != nil && *c.DiscountPercent > 0 {
			discounts = append(discounts, *c.DiscountPercent)
		}
	}
	return e.Recommend(discounts, len(candidates))
}

// Recommend derives a discount from the observed positive discounts.
// candidateCount is the total number of similar contracts found, including
// those without award data; it drives the competitiveness adjustment.
func (e *Engine) Recommend(discounts []float64, candidateCount int) Recommendation {
	if candidateCount == 0 {
		return Recommendation{Percent: defaultDiscount, Rationale: "No hay datos suficientes"}
	}
	valid := make([]float64, 0, len(discounts))
	for _, d := range discounts {
		if d > 0 {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return Recommendation{Percent: defaultDiscount, Rationale: "No hay bajas en los datos encontrados"}
	}

	stats := computeStats(valid)

	// Stable clusters: for each observed discount, the group of values
	// within the cluster radius. A group of three or more marks a level the
	// market keeps returning to.
	var clusters [][]float64
	for _, base := range valid {
		var group []float64
		for _, d := range valid {
			if math.Abs(d-base) <= clusterRadius {
				group = append(group, d)
			}
		}
		if len(group) >= minClusterSize {
			clusters = append(clusters, group)
		}
	}

	var percent float64
	var rationale string
	if len(clusters) > 0 {
		maxOfClusters := math.Inf(-1)
		for _, group := range clusters {
			for _, d := range group {
				if d > maxOfClusters {
					maxOfClusters = d
				}
			}
		}
		percent = maxOfClusters + outbidMargin
		rationale = fmt.Sprintf("Grupo de %d+ licitaciones con bajas cercanas. Baja más alta del grupo: %.1f%%",
			len(clusters[0]), maxOfClusters)
	} else {
		percent = stats.Mean + outbidMargin
		rationale = fmt.Sprintf("Media de todas las bajas encontradas: %.1f%%", stats.Mean)
	}

	if candidateCount > competitiveThreshold {
		percent += 1.0
		rationale += " + 1% (sector muy competitivo)"
	}
	if stats.StdDev > volatileStdDev {
		percent -= 1.0
		rationale += " - 1% (alta variabilidad, enfoque conservador)"
	}

	percent = math.Min(percent, maxDiscount)
	percent = math.Max(percent, minDiscount)

	e.log.Info("discount recommended",
		logging.Float64("percent", percent),
		logging.Int("observations", stats.Count),
		logging.Int("candidates", candidateCount),
	)
	return Recommendation{Percent: percent, Rationale: rationale, Stats: stats}
}

func computeStats(values []float64) DiscountStats {
	s := DiscountStats{Count: len(values)}
	if s.Count == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(s.Count)

	mid := s.Count / 2
	if s.Count%2 == 0 {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.Median = sorted[mid]
	}

	var sq float64
	for _, v := range sorted {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.Count)) // population deviation
	return s
}
