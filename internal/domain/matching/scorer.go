package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/oclem/tenderwise/internal/domain/contract"
	"github.com/oclem/tenderwise/internal/domain/geo"
	"github.com/oclem/tenderwise/internal/domain/text"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// Factor weights. CPV identity dominates, then geography, price band,
// subject text, contract type, and year proximity.
const (
	scoreCPVExact    = 40 // full 8-digit code present in the row
	scoreCPVDivision = 30 // 4-digit division prefix
	scoreCPVCategory = 20 // 2-digit category prefix

	scoreSameLocality   = 30
	scoreNearbyLocality = 20

	scorePriceClose   = 25 // within ±20%
	scorePriceSimilar = 18 // within ±40%
	scorePriceNear    = 10 // within ±60%

	scoreSubjectHigh   = 30 // similarity > 0.4
	scoreSubjectMedium = 20 // similarity > 0.25
	scoreSubjectLow    = 10 // similarity > 0.15

	scoreSameType = 15

	scoreYearAdjacent = 15 // 1 year apart
	scoreYearNear     = 10 // up to 3 years
	scoreYearPeriod   = 5  // up to 5 years

	keywordOverlapThreshold = 0.3
	keywordBonusWeight      = 15

	recencyWindowDays = 365
	recencyMaxBonus   = 5
)

const subjectDisplayLimit = 150

// ScorerConfig tunes filtering and concurrency.
type ScorerConfig struct {
	// MinScore discards rows scoring below it. Zero means the default of 30.
	MinScore float64

	// MaxCandidates caps the returned list. Zero means the default of 20.
	MaxCandidates int

	// Workers bounds concurrent row scoring. Zero means the default of 8.
	Workers int
}

func (c ScorerConfig) withDefaults() ScorerConfig {
	if c.MinScore == 0 {
		c.MinScore = 30
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = 20
	}
	if c.Workers == 0 {
		c.Workers = 8
	}
	return c
}

// Scorer ranks historical rows by similarity to a target notice.
type Scorer struct {
	cfg ScorerConfig
	now func() time.Time
	log logging.Logger
}

// NewScorer builds a Scorer. The now function is injectable for tests; nil
// means time.Now.
func NewScorer(cfg ScorerConfig, now func() time.Time, log logging.Logger) *Scorer {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Scorer{cfg: cfg.withDefaults(), now: now, log: log.Named("scorer")}
}

// Score evaluates every row against the target and returns the relevant
// candidates, best first. Rows scoring below MinScore are dropped; the list
// is capped at MaxCandidates. An empty dataset is the degenerate zero-match
// case, not an error: the pipeline still produces a report with the default
// recommendation.
func (s *Scorer) Score(ctx context.Context, target *contract.ContractRecord, rows []Row) ([]MatchCandidate, error) {
	if target == nil {
		return nil, errors.New(errors.ErrCodeTargetIncomplete, "target notice is required")
	}
	if len(rows) == 0 {
		s.log.Warn("historical dataset is empty")
		return nil, nil
	}

	tc := newTargetContext(target)
	results := make([]*MatchCandidate, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scoreRow(tc, i, rows[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "scoring interrupted")
	}

	candidates := make([]MatchCandidate, 0, len(rows))
	for _, c := range results {
		if c != nil && c.Score >= s.cfg.MinScore {
			candidates = append(candidates, *c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority() > candidates[j].priority()
	})
	if len(candidates) > s.cfg.MaxCandidates {
		candidates = candidates[:s.cfg.MaxCandidates]
	}

	s.log.Info("dataset scored",
		logging.Int("rows", len(rows)),
		logging.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// targetContext precomputes the target features shared across rows.
type targetContext struct {
	record   *contract.ContractRecord
	cpvs     []string
	keywords map[string]struct{}
	year     int
}

func newTargetContext(target *contract.ContractRecord) targetContext {
	tc := targetContext{
		record: target,
		cpvs:   target.CPVCodes(),
		year:   target.Year(),
	}
	if target.Subject != "" {
		tc.keywords = text.ExtractKeywords(target.Subject)
	}
	return tc
}

func (s *Scorer) scoreRow(tc targetContext, index int, row Row) *MatchCandidate {
	v := resolveRow(row)
	target := tc.record

	var score float64
	var reasons []string
	var factors MatchFactors

	// CPV identity, first matching target code wins.
	if len(tc.cpvs) > 0 && v.cpv != "" {
		for _, code := range tc.cpvs {
			if len(code) < 8 {
				continue
			}
			if strings.Contains(v.cpv, code) {
				score += scoreCPVExact
				reasons = append(reasons, "CPV exacto: "+code)
				factors.CPV = true
				break
			}
			if strings.Contains(v.cpv, code[:4]) {
				score += scoreCPVDivision
				reasons = append(reasons, "CPV división similar: "+code[:4]+"xxxx")
				factors.CPV = true
				break
			}
			if strings.Contains(v.cpv, code[:2]) {
				score += scoreCPVCategory
				reasons = append(reasons, "CPV categoría: "+code[:2]+"xxxxxx")
				factors.CPV = true
				break
			}
		}
	}

	// Geography: same locality, or a curated neighbor.
	if target.Locality != "" && v.locality != "" {
		tu, ru := strings.ToUpper(target.Locality), strings.ToUpper(v.locality)
		if strings.Contains(ru, tu) || strings.Contains(tu, ru) {
			score += scoreSameLocality
			reasons = append(reasons, "Misma localidad: "+v.locality)
			factors.Location = true
		} else {
			for _, zone := range geo.NearbyLocations(target.Locality) {
				if strings.Contains(ru, strings.ToUpper(zone)) {
					score += scoreNearbyLocality
					reasons = append(reasons, "Zona cercana: "+v.locality)
					factors.Location = true
					break
				}
			}
		}
	}

	// Price band relative to the target budget. The widest band scores but
	// does not count as a price match for prioritization.
	if target.Budget != nil && v.price != nil {
		diff := math.Abs(*v.price-*target.Budget) / *target.Budget
		switch {
		case diff <= 0.20:
			score += scorePriceClose
			reasons = append(reasons, fmt.Sprintf("Importe muy similar: %.0f€ (±%.0f%%)", *v.price, diff*100))
			factors.Price = true
		case diff <= 0.40:
			score += scorePriceSimilar
			reasons = append(reasons, fmt.Sprintf("Importe similar: %.0f€ (±%.0f%%)", *v.price, diff*100))
			factors.Price = true
		case diff <= 0.60:
			score += scorePriceNear
			reasons = append(reasons, fmt.Sprintf("Importe cercano: %.0f€ (±%.0f%%)", *v.price, diff*100))
		}
	}

	// Subject similarity plus a keyword overlap bonus. The low band scores
	// without flagging a keyword match.
	if target.Subject != "" && v.subject != "" && utf8.RuneCountInString(target.Subject) > 20 {
		sim := text.Similarity(target.Subject, v.subject)
		switch {
		case sim > 0.4:
			score += scoreSubjectHigh
			reasons = append(reasons, fmt.Sprintf("Objeto muy similar (%.0f%%)", sim*100))
			factors.Keyword = true
		case sim > 0.25:
			score += scoreSubjectMedium
			reasons = append(reasons, fmt.Sprintf("Objeto similar (%.0f%%)", sim*100))
			factors.Keyword = true
		case sim > 0.15:
			score += scoreSubjectLow
			reasons = append(reasons, fmt.Sprintf("Objeto relacionado (%.0f%%)", sim*100))
		}

		if len(tc.keywords) > 0 {
			overlap := text.KeywordOverlap(tc.keywords, text.ExtractKeywords(v.subject))
			if overlap > keywordOverlapThreshold {
				score += overlap * keywordBonusWeight
				reasons = append(reasons, fmt.Sprintf("Palabras clave comunes (%.0f%%)", overlap*100))
				factors.Keyword = true
			}
		}
	}

	// Contract type containment.
	if target.ContractType != "" && v.contractType != "" &&
		strings.Contains(strings.ToLower(v.contractType), strings.ToLower(target.ContractType)) {
		score += scoreSameType
		reasons = append(reasons, "Mismo tipo: "+target.ContractType)
		factors.SameType = true
	}

	// Year proximity. Same-year rows score nothing in the adjacent band.
	if tc.year > 0 && v.year > 0 {
		yearDiff := tc.year - v.year
		if yearDiff < 0 {
			yearDiff = -yearDiff
		}
		switch {
		case yearDiff > 0 && yearDiff <= 1:
			score += scoreYearAdjacent
			reasons = append(reasons, fmt.Sprintf("Año cercano: %d", v.year))
			factors.RecentYear = true
		case yearDiff <= 3:
			score += scoreYearNear
			reasons = append(reasons, fmt.Sprintf("Años anteriores: %d", v.year))
			factors.RecentYear = true
		case yearDiff <= 5:
			score += scoreYearPeriod
			reasons = append(reasons, fmt.Sprintf("Mismo periodo: ~%d", v.year))
		}
	}

	// Recency bonus for rows published within the last year.
	if v.date != "" {
		if t := parseRowDate(v.date); !t.IsZero() {
			daysAgo := s.now().Sub(t).Hours() / 24
			if daysAgo >= 0 && daysAgo < recencyWindowDays {
				score += (recencyWindowDays - daysAgo) / recencyWindowDays * recencyMaxBonus
			}
		}
	}

	c := &MatchCandidate{
		Index:    index,
		Score:    score,
		Reasons:  reasons,
		Factors:  factors,
		Budget:   v.price,
		Awardee:  v.awardee,
		Locality: v.locality,
		CPV:      v.cpv,
		Subject:  truncate(v.subject, subjectDisplayLimit),
		Date:     v.date,
	}
	c.AwardAmount = v.awardAmount
	c.DiscountPercent = DiscountPercent(v.price, v.awardAmount)
	return c
}

// DiscountPercent computes the award discount over budget as a percentage.
// Absent when either amount is missing or the budget is not positive.
func DiscountPercent(budget, award *float64) *float64 {
	if budget == nil || award == nil || *budget <= 0 {
		return nil
	}
	d := (*budget - *award) / *budget * 100
	return &d
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
