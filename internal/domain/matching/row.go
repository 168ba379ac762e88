// Package matching scores historical contract rows against a target notice.
// Historical tables come from heterogeneous scrapes with no fixed schema, so
// fields are located by column-name synonyms and values are parsed
// defensively from free text.
package matching

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Row is one record of a historical contract table. Columns preserves the
// table's column order so synonym resolution is deterministic.
type Row struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value of a column, "" when absent.
func (r Row) Get(col string) string {
	return r.Values[col]
}

// Column-name synonym lists. A field resolves to the first column, in table
// order, whose lowercased name contains a synonym and whose value passes the
// field's plausibility check.
var (
	priceColumns    = []string{"precio", "importe", "valor", "presupuesto", "pbl"}
	localityColumns = []string{"provincia", "ubicacion", "lugar", "localidad", "ciudad"}
	subjectColumns  = []string{"objeto", "descripcion", "servicio", "titulo"}
	dateColumns     = []string{"fecha", "publicacion", "year", "año"}
	awardColumns    = []string{"adjudicacion", "adjudicado"}
	awardeeColumns  = []string{"empresa", "adjudicatario"}
)

// rowView is the resolved, typed projection of a Row that scoring works on.
type rowView struct {
	price        *float64
	locality     string
	cpv          string
	subject      string
	date         string
	year         int // 0 when unknown
	awardAmount  *float64
	awardee      string
	contractType string
}

var yearRe = regexp.MustCompile(`20\d{2}`)

// resolveRow projects a loosely-typed row onto the fields scoring needs.
func resolveRow(r Row) rowView {
	var v rowView

	for _, col := range r.Columns {
		cl := strings.ToLower(col)
		if containsAny(cl, priceColumns) {
			if p := PriceFromText(r.Get(col)); p != nil && *p > 1000 {
				v.price = p
				break
			}
		}
	}

	for _, col := range r.Columns {
		cl := strings.ToLower(col)
		if containsAny(cl, localityColumns) {
			loc := strings.TrimSpace(r.Get(col))
			if utf8.RuneCountInString(loc) > 2 {
				v.locality = loc
				break
			}
		}
	}

	for _, col := range r.Columns {
		if strings.Contains(strings.ToLower(col), "cpv") {
			v.cpv = r.Get(col)
			break
		}
	}

	for _, col := range r.Columns {
		cl := strings.ToLower(col)
		if containsAny(cl, subjectColumns) {
			subj := r.Get(col)
			if utf8.RuneCountInString(subj) > 20 {
				v.subject = subj
				break
			}
		}
	}

	for _, col := range r.Columns {
		cl := strings.ToLower(col)
		if containsAny(cl, dateColumns) {
			v.date = r.Get(col)
			break
		}
	}
	if v.date != "" {
		if m := yearRe.FindString(v.date); m != "" {
			v.year, _ = strconv.Atoi(m)
		}
	}

	for _, col := range r.Columns {
		cl := strings.ToLower(col)
		if containsAny(cl, awardColumns) {
			v.awardAmount = PriceFromText(r.Get(col))
		} else if containsAny(cl, awardeeColumns) {
			v.awardee = strings.TrimSpace(r.Get(col))
		}
	}

	for _, col := range r.Columns {
		if strings.Contains(strings.ToLower(col), "tipo") {
			v.contractType = r.Get(col)
			break
		}
	}

	return v
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// pricePatterns try euro-suffixed amounts first, then a bare number.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*€`),
	regexp.MustCompile(`(?i)€\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*euros?`),
	regexp.MustCompile(`(\d{1,10}(?:\.\d{1,2})?)`),
}

// PriceFromText parses a monetary amount from free text in Spanish number
// format ("1.234.567,89 €"). Thousands separators are stripped and the
// decimal comma converted before matching. Values at or below 100 are
// rejected as implausible. Returns nil when nothing usable is found.
func PriceFromText(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v > 100 {
			return &v
		}
	}
	return nil
}

// rowDateLayouts are the date shapes seen in scraped tables.
var rowDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2006",
}

// parseRowDate attempts to interpret a scraped date string. Returns the zero
// time when no layout matches.
func parseRowDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if i := strings.IndexByte(s, '+'); i > 0 {
		s = s[:i]
	}
	for _, layout := range rowDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
