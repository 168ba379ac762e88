// Package contract models Spanish procurement notices and extracts them from
// UBL/CODICE XML documents. Notice documents vary wildly across contracting
// platforms, so every field is located through an ordered list of candidate
// paths and extraction is best-effort per field: a missing budget or locality
// leaves the field unset, it never fails the document.
package contract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// CPVCode is a Common Procurement Vocabulary classification: an 8-digit code
// plus the optional human-readable name carried in the notice.
type CPVCode struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// LotRecord describes one lot of a notice divided into lots. Award fields are
// only present in award-phase documents.
type LotRecord struct {
	Number      int       `json:"number"`
	ID          string    `json:"id,omitempty"`
	Description string    `json:"description,omitempty"`
	Budget      *float64  `json:"budget,omitempty"`
	CPV         []CPVCode `json:"cpv,omitempty"`
	AwardAmount *float64  `json:"award_amount,omitempty"`
	Awardee     string    `json:"awardee,omitempty"`
	BidderCount *int      `json:"bidder_count,omitempty"`
}

// ContractRecord is the structured view of a procurement notice. Pointer
// fields distinguish "absent in the document" from zero values.
type ContractRecord struct {
	SourceURL       string      `json:"source_url,omitempty"`
	PublicationDate string      `json:"publication_date,omitempty"` // YYYY-MM-DD
	ContractType    string      `json:"contract_type,omitempty"`
	Budget          *float64    `json:"budget,omitempty"` // tax-exclusive base budget
	Subject         string      `json:"subject,omitempty"`
	CPV             []CPVCode   `json:"cpv,omitempty"`
	Locality        string      `json:"locality,omitempty"`
	Procedure       string      `json:"procedure,omitempty"`
	ExecutionPeriod string      `json:"execution_period,omitempty"`
	Criteria        CriteriaSet `json:"criteria"`
	HasLots         bool        `json:"has_lots"`
	Lots            []LotRecord `json:"lots,omitempty"`
	AwardAmount     *float64    `json:"award_amount,omitempty"`
	Awardee         string      `json:"awardee,omitempty"`
	BidderCount     *int        `json:"bidder_count,omitempty"`
}

// CPVCodes returns just the codes, in document order.
func (c *ContractRecord) CPVCodes() []string {
	out := make([]string, 0, len(c.CPV))
	for _, cpv := range c.CPV {
		out = append(out, cpv.Code)
	}
	return out
}

// Year returns the publication year, 0 when the date is absent or malformed.
func (c *ContractRecord) Year() int {
	if len(c.PublicationDate) < 4 {
		return 0
	}
	y := 0
	for _, r := range c.PublicationDate[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		y = y*10 + int(r-'0')
	}
	return y
}

// contractTypeNames maps CODICE ContractCode values to display names.
var contractTypeNames = map[string]string{
	"1": "Obras",
	"2": "Servicios",
	"3": "Suministros",
	"7": "Administrativo especial",
	"8": "Privado",
}

// ContractTypeName resolves a contract type from a code element. The name
// attribute wins when present; otherwise the code is mapped, falling back to
// "Tipo <code>" for values outside the table.
func ContractTypeName(code, name string) string {
	if name != "" {
		return name
	}
	if mapped, ok := contractTypeNames[code]; ok {
		return mapped
	}
	return "Tipo " + code
}

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// NormalizeCPV strips non-digits and truncates to 8 digits. Returns ok=false
// when fewer than 8 digits remain; partial codes are useless for prefix
// matching.
func NormalizeCPV(raw string) (string, bool) {
	clean := nonDigitRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(clean) > 8 {
		clean = clean[:8]
	}
	return clean, len(clean) == 8
}

// NormalizeDate reduces an ISO timestamp to its date part, dropping time and
// timezone suffixes ("2024-03-01T00:00:00+02:00" -> "2024-03-01").
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return s
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
