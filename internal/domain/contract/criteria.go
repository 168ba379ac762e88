package contract

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// CriterionCategory buckets an awarding criterion by what it rewards.
type CriterionCategory string

const (
	CategoryPrice     CriterionCategory = "price"
	CategoryTechnical CriterionCategory = "technical"
	CategoryOther     CriterionCategory = "other"
)

// Criterion is one awarding criterion of a notice.
type Criterion struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Weight      *float64          `json:"weight,omitempty"`
	Type        string            `json:"type,omitempty"`
	Subtype     string            `json:"subtype,omitempty"`
	Category    CriterionCategory `json:"category"`
}

// CriteriaSet aggregates the awarding criteria of a notice. PricePoints and
// TechnicalPoints are the weights summed per category and rescaled so their
// total is 100 when the document uses another base.
type CriteriaSet struct {
	PricePoints     *float64    `json:"price_points,omitempty"`
	TechnicalPoints *float64    `json:"technical_points,omitempty"`
	TotalPoints     float64     `json:"total_points"`
	Items           []Criterion `json:"items,omitempty"`
}

var priceWords = []string{"precio", "económic", "ofertas", "coste", "importe"}
var technicalWords = []string{"técnic", "calidad", "memoria", "propuesta", "valor", "cualitativ"}

// ClassifyCriterion buckets a criterion by keyword search over its name,
// description, and subtype. Price keywords win over technical ones.
func ClassifyCriterion(name, description, subtype string) CriterionCategory {
	haystack := strings.ToLower(name) + strings.ToLower(description) + strings.ToLower(subtype)
	for _, w := range priceWords {
		if strings.Contains(haystack, w) {
			return CategoryPrice
		}
	}
	for _, w := range technicalWords {
		if strings.Contains(haystack, w) {
			return CategoryTechnical
		}
	}
	return CategoryOther
}

// BuildCriteriaSet assembles a CriteriaSet from individual criteria, keeping
// only those with a name or description, summing weights per category, and
// rescaling both sums to a 100-point base when the document totals something
// else.
func BuildCriteriaSet(items []Criterion) CriteriaSet {
	set := CriteriaSet{TotalPoints: 100}
	for _, c := range items {
		if c.Name == "" && c.Description == "" {
			continue
		}
		set.Items = append(set.Items, c)
	}

	var priceTotal, technicalTotal float64
	for _, c := range set.Items {
		if c.Weight == nil {
			continue
		}
		switch c.Category {
		case CategoryPrice:
			priceTotal += *c.Weight
		case CategoryTechnical:
			technicalTotal += *c.Weight
		}
	}

	if priceTotal > 0 || technicalTotal > 0 {
		total := priceTotal + technicalTotal
		if total != 100 && total > 0 {
			factor := 100 / total
			priceTotal = round2(priceTotal * factor)
			technicalTotal = round2(technicalTotal * factor)
		}
		set.PricePoints = &priceTotal
		set.TechnicalPoints = &technicalTotal
		set.TotalPoints = 100
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// extractCriteria pulls the awarding criteria out of a parsed notice.
func extractCriteria(root *etree.Element) CriteriaSet {
	elems := findAll(root, path("AwardingTerms", "AwardingCriteria"))
	if len(elems) == 0 {
		elems = findAll(root, path("AwardingCriteria"))
	}

	items := make([]Criterion, 0, len(elems))
	for _, e := range elems {
		c := Criterion{}
		if id := childText(e, "ID"); id != "" {
			c.ID = id
		}
		if desc := childText(e, "Description"); desc != "" {
			c.Description = desc
			c.Name = desc
		}
		if w := childText(e, "WeightNumeric"); w != "" {
			if v, err := strconv.ParseFloat(w, 64); err == nil {
				c.Weight = &v
			}
		}
		if t := e.SelectElement("AwardingCriteriaTypeCode"); t != nil {
			c.Type = attrOrText(t, "name")
		}
		if st := e.SelectElement("AwardingCriteriaSubTypeCode"); st != nil {
			c.Subtype = attrOrText(st, "name")
		}
		c.Category = ClassifyCriterion(c.Name, c.Description, c.Subtype)
		items = append(items, c)
	}
	return BuildCriteriaSet(items)
}

func childText(e *etree.Element, tag string) string {
	return trimText(e.SelectElement(tag))
}
