package matching

// MatchFactors flags which similarity criteria a candidate satisfied. Used
// for prioritized ordering and for match statistics in reports.
type MatchFactors struct {
	CPV        bool `json:"cpv"`
	Location   bool `json:"location"`
	Price      bool `json:"price"`
	Keyword    bool `json:"keyword"`
	SameType   bool `json:"same_type"`
	RecentYear bool `json:"recent_year"`
}

// MatchCandidate is a historical contract judged similar to the target.
type MatchCandidate struct {
	// Index is the candidate's position in the source dataset.
	Index int `json:"index"`

	Score   float64      `json:"score"`
	Reasons []string     `json:"reasons"`
	Factors MatchFactors `json:"factors"`

	Budget      *float64 `json:"budget,omitempty"`
	AwardAmount *float64 `json:"award_amount,omitempty"`

	// DiscountPercent is the award discount over budget, present only when
	// both amounts are known and the budget is positive.
	DiscountPercent *float64 `json:"discount_percent,omitempty"`

	Awardee  string `json:"awardee,omitempty"`
	Locality string `json:"locality,omitempty"`
	CPV      string `json:"cpv,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Date     string `json:"date,omitempty"`
}

// priority ranks candidates for ordering: factor flags dominate the raw
// score, CPV above location above price above keywords.
func (c MatchCandidate) priority() float64 {
	p := c.Score
	if c.Factors.CPV {
		p += 10000
	}
	if c.Factors.Location {
		p += 1000
	}
	if c.Factors.Price {
		p += 100
	}
	if c.Factors.Keyword {
		p += 10
	}
	return p
}
