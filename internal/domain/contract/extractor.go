package contract

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// minBudget filters out element values that parse as numbers but cannot be a
// base budget (lot counts, percentages, document ids).
const minBudget = 100

// DefaultAuthorityBlocklist lists words that, in a short candidate subject,
// indicate the text names the contracting body rather than the works.
var DefaultAuthorityBlocklist = []string{"instituto", "ministerio", "ayuntamiento"}

// datePaths through executionEndPath are the ordered candidate locations per
// field. Earlier entries are the canonical CODICE placements; later ones are
// fallbacks seen on regional platforms.
var (
	datePaths = []fieldPath{
		path("IssueDate"),
		path("PublicationDate"),
		path("CallForTenders", "IssueDate"),
	}

	typePaths = []fieldPath{
		path("ProcurementProject", "TypeCode"),
		path("TypeCode"),
	}

	budgetPaths = []fieldPath{
		path("ProcurementProject", "BudgetAmount", "TaxExclusiveAmount"),
		path("BudgetAmount", "TaxExclusiveAmount"),
		path("ProcurementProject", "BudgetAmount", "EstimatedOverallContractAmount"),
		path("EstimatedOverallContractAmount"),
		path("RequestedTenderTotal", "EstimatedOverallContractAmount"),
		path("BudgetAmount", "TotalAmount"),
	}

	subjectPaths = []fieldPath{
		path("ProcurementProject", "Name"),
		path("ProcurementProject", "Description"),
		path("Name").notUnder("ContractingParty"),
		path("Description").notUnder("ContractingParty"),
	}

	cpvPaths = []fieldPath{
		path("ProcurementProject", "RequiredCommodityClassification", "ItemClassificationCode"),
		path("RequiredCommodityClassification", "ItemClassificationCode"),
		path("AdditionalCommodityClassification", "ItemClassificationCode"),
		path("CommodityClassification", "ItemClassificationCode"),
		path("ItemClassificationCode"),
	}

	localityPaths = []fieldPath{
		path("RealizedLocation", "Address", "CountrySubentity"),
		path("RealizedLocation", "CountrySubentity"),
		path("ProcurementProject", "RealizedLocation", "Address", "CountrySubentity"),
		path("Address", "CountrySubentity"),
		path("RealizedLocation", "Address", "CityName"),
		path("Address", "CityName"),
	}

	procedurePath      = path("TenderingProcess", "ProcedureCode")
	executionStartPath = path("PlannedPeriod", "StartDate")
	executionEndPath   = path("PlannedPeriod", "EndDate")
)

// ExtractorOptions tunes extraction behavior.
type ExtractorOptions struct {
	// AuthorityBlocklist overrides DefaultAuthorityBlocklist when non-nil.
	AuthorityBlocklist []string

	Logger logging.Logger
}

// Extractor parses UBL/CODICE notice XML into ContractRecords.
type Extractor struct {
	blocklist []string
	log       logging.Logger
}

// NewExtractor builds an Extractor. Zero-value options give the default
// blocklist and a nop logger.
func NewExtractor(opts ExtractorOptions) *Extractor {
	blocklist := opts.AuthorityBlocklist
	if blocklist == nil {
		blocklist = DefaultAuthorityBlocklist
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Extractor{blocklist: blocklist, log: log.Named("extractor")}
}

// Extract parses a notice document. Parse failures are fatal and return nil
// with an EXT error; per-field misses only leave the field unset.
func (x *Extractor) Extract(data []byte, sourceURL string) (*ContractRecord, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeExtractEmptyDoc, "empty notice document")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExtractParse, "malformed notice XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeExtractEmptyDoc, "notice document has no root element")
	}

	rec := &ContractRecord{SourceURL: sourceURL}

	if raw := firstText(root, datePaths); raw != "" {
		rec.PublicationDate = NormalizeDate(raw)
	}
	x.extractType(root, rec)
	x.extractBudget(root, rec)
	x.extractSubject(root, rec)
	x.extractCPV(root, rec)
	x.extractLocality(root, rec)

	if proc := findFirst(root, procedurePath); proc != nil {
		rec.Procedure = attrOrText(proc, "name")
	}

	start := trimText(findFirst(root, executionStartPath))
	end := trimText(findFirst(root, executionEndPath))
	if start != "" && end != "" {
		rec.ExecutionPeriod = NormalizeDate(start) + " a " + NormalizeDate(end)
	}

	rec.Criteria = extractCriteria(root)
	x.extractLots(root, rec)
	x.extractAward(root, rec)

	x.log.Debug("notice extracted",
		logging.String("date", rec.PublicationDate),
		logging.Int("cpv_codes", len(rec.CPV)),
		logging.Bool("has_lots", rec.HasLots),
		logging.Bool("has_budget", rec.Budget != nil),
	)
	return rec, nil
}

func (x *Extractor) extractType(root *etree.Element, rec *ContractRecord) {
	for _, p := range typePaths {
		e := findFirst(root, p)
		if e == nil {
			continue
		}
		rec.ContractType = ContractTypeName(trimText(e), e.SelectAttrValue("name", ""))
		return
	}
}

func (x *Extractor) extractBudget(root *etree.Element, rec *ContractRecord) {
	for _, p := range budgetPaths {
		e := findFirst(root, p)
		if e == nil {
			continue
		}
		v, err := strconv.ParseFloat(trimText(e), 64)
		if err != nil || v <= minBudget {
			continue
		}
		rec.Budget = &v
		return
	}
}

// extractSubject looks for a descriptive subject. Candidates must exceed 20
// characters, and short ones (under 80) are rejected when they contain an
// authority word since those are almost always the body's own name.
func (x *Extractor) extractSubject(root *etree.Element, rec *ContractRecord) {
	for _, p := range subjectPaths {
		for _, e := range findAll(root, p) {
			text := trimText(e)
			if runeLen(text) <= 20 {
				continue
			}
			if runeLen(text) < 80 && x.blockedSubject(text) {
				continue
			}
			rec.Subject = text
			return
		}
	}
}

func (x *Extractor) blockedSubject(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range x.blocklist {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (x *Extractor) extractCPV(root *etree.Element, rec *ContractRecord) {
	seen := make(map[CPVCode]struct{})
	for _, p := range cpvPaths {
		for _, e := range findAll(root, p) {
			code, ok := NormalizeCPV(trimText(e))
			if !ok {
				continue
			}
			cpv := CPVCode{Code: code, Name: e.SelectAttrValue("name", "")}
			if _, dup := seen[cpv]; dup {
				continue
			}
			seen[cpv] = struct{}{}
			rec.CPV = append(rec.CPV, cpv)
		}
	}
}

func (x *Extractor) extractLocality(root *etree.Element, rec *ContractRecord) {
	for _, p := range localityPaths {
		text := trimText(findFirst(root, p))
		if runeLen(text) > 2 {
			rec.Locality = text
			return
		}
	}
}

// extractLots detects lot division. When no lot elements exist, a project
// description stating "no ... lotes" confirms an undivided notice.
func (x *Extractor) extractLots(root *etree.Element, rec *ContractRecord) {
	lotElems := findAll(root, path("ProcurementProjectLot"))
	if len(lotElems) == 0 {
		rec.HasLots = false
		desc := strings.ToLower(trimText(findFirst(root, path("ProcurementProject", "Description"))))
		if strings.Contains(desc, "no") && strings.Contains(desc, "lote") {
			x.log.Debug("notice states it is not divided into lots")
		}
		return
	}

	rec.HasLots = true
	for i, lotElem := range lotElems {
		lot := LotRecord{Number: i + 1}

		lot.ID = trimText(findFirst(lotElem, path("ID")))
		lot.Description = firstText(lotElem, []fieldPath{
			path("ProcurementProject", "Name"),
			path("ProcurementProject", "Description"),
			path("Description"),
		})

		for _, p := range []fieldPath{
			path("ProcurementProject", "BudgetAmount", "TaxExclusiveAmount"),
			path("BudgetAmount", "TaxExclusiveAmount"),
		} {
			if v, err := strconv.ParseFloat(trimText(findFirst(lotElem, p)), 64); err == nil {
				lot.Budget = &v
				break
			}
		}

		for _, e := range findAll(lotElem, path("RequiredCommodityClassification", "ItemClassificationCode")) {
			if code, ok := NormalizeCPV(trimText(e)); ok {
				lot.CPV = append(lot.CPV, CPVCode{Code: code, Name: e.SelectAttrValue("name", "")})
			}
		}

		if result := findFirst(lotElem, path("TenderResult")); result != nil {
			if v, err := strconv.ParseFloat(trimText(findFirst(result, path("LegalMonetaryTotal", "PayableAmount"))), 64); err == nil {
				lot.AwardAmount = &v
			}
			lot.Awardee = trimText(findFirst(result, path("WinningParty", "PartyName", "Name")))
			if n := len(findAll(result, path("TendererParty"))); n > 0 {
				lot.BidderCount = &n
			}
		}

		rec.Lots = append(rec.Lots, lot)
	}
}

// extractAward pulls notice-level award data, present only in award-phase
// documents.
func (x *Extractor) extractAward(root *etree.Element, rec *ContractRecord) {
	awarded := findFirst(root, path("AwardedTenderedProject"))
	if awarded != nil {
		if v, err := strconv.ParseFloat(trimText(findFirst(awarded, path("PayableAmount"))), 64); err == nil {
			rec.AwardAmount = &v
		}
		rec.Awardee = trimText(findFirst(awarded, path("Party", "PartyName", "Name")))
	}
	if rec.Awardee == "" {
		rec.Awardee = trimText(findFirst(root, path("WinningParty", "PartyName", "Name")))
	}
	if n := len(findAll(root, path("TendererParty"))); n > 0 {
		rec.BidderCount = &n
	}
}
