package analysis

import (
	"sort"
	"time"

	"github.com/oclem/tenderwise/internal/domain/contract"
	"github.com/oclem/tenderwise/internal/domain/matching"
	"github.com/oclem/tenderwise/internal/domain/recommend"
)

// MatchStats counts how many candidates satisfied each major factor.
type MatchStats struct {
	Total           int `json:"total"`
	CPVMatches      int `json:"cpv_matches"`
	LocationMatches int `json:"location_matches"`
	PriceMatches    int `json:"price_matches"`
}

// AwardeeActivity summarizes one company's presence among the candidates.
type AwardeeActivity struct {
	Name         string   `json:"name"`
	Contracts    int      `json:"contracts"`
	MeanDiscount *float64 `json:"mean_discount,omitempty"`
}

// Report is the complete result of one analysis run.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SourceURL string    `json:"source_url"`

	Contract       *contract.ContractRecord  `json:"contract"`
	Candidates     []matching.MatchCandidate `json:"candidates"`
	MatchStats     MatchStats                `json:"match_stats"`
	Recommendation recommend.Recommendation  `json:"recommendation"`
	Awardees       []AwardeeActivity         `json:"awardees,omitempty"`
	Narrative      string                    `json:"narrative"`
}

// buildMatchStats tallies factor flags across the candidate list.
func buildMatchStats(candidates []matching.MatchCandidate) MatchStats {
	s := MatchStats{Total: len(candidates)}
	for _, c := range candidates {
		if c.Factors.CPV {
			s.CPVMatches++
		}
		if c.Factors.Location {
			s.LocationMatches++
		}
		if c.Factors.Price {
			s.PriceMatches++
		}
	}
	return s
}

const maxAwardees = 10

// buildAwardeeActivity aggregates awardee frequency and mean discount over
// the candidates, most active first. Names of three characters or fewer are
// noise from scraped tables and are skipped.
func buildAwardeeActivity(candidates []matching.MatchCandidate) []AwardeeActivity {
	type agg struct {
		count     int
		discounts []float64
		first     int
	}
	byName := make(map[string]*agg)
	order := 0
	for _, c := range candidates {
		name := c.Awardee
		if len(name) <= 3 {
			continue
		}
		a, ok := byName[name]
		if !ok {
			a = &agg{first: order}
			order++
			byName[name] = a
		}
		a.count++
		if c.DiscountPercent != nil && *c.DiscountPercent > 0 {
			a.discounts = append(a.discounts, *c.DiscountPercent)
		}
	}

	out := make([]AwardeeActivity, 0, len(byName))
	for name, a := range byName {
		act := AwardeeActivity{Name: name, Contracts: a.count}
		if len(a.discounts) > 0 {
			var sum float64
			for _, d := range a.discounts {
				sum += d
			}
			mean := sum / float64(len(a.discounts))
			act.MeanDiscount = &mean
		}
		out = append(out, act)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Contracts != out[j].Contracts {
			return out[i].Contracts > out[j].Contracts
		}
		return byName[out[i].Name].first < byName[out[j].Name].first
	})
	if len(out) > maxAwardees {
		out = out[:maxAwardees]
	}
	return out
}
