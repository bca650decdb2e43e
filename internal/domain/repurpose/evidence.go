package repurpose

// EvidenceBundle is the transient input to the confidence scorer.  It is
// assembled on demand from corpus fields, hero-case data, and any live
// external contributions; the scorer treats it as a value.
type EvidenceBundle struct {
	Phase         string   `json:"phase"`
	TrialCount    int      `json:"trial_count"`
	CitationCount int      `json:"citation_count"`
	Sources       []string `json:"sources"`
	Pathways      []string `json:"pathways"`
}

// Tier is the human-readable confidence band of a scored match.
type Tier string

const (
	TierVeryHigh Tier = "Very High"
	TierHigh     Tier = "High"
	TierModerate Tier = "Moderate"
	TierLow      Tier = "Low"
	TierVeryLow  Tier = "Very Low"
)

// Origin records which path produced a match.
type Origin string

const (
	OriginHero         Origin = "hero"
	OriginCorpus       Origin = "corpus"
	OriginExternalOnly Origin = "external_only"
)

// FactorContribution is one row of the scorer's explanation: the raw
// sub-score, its weight, and the resulting contribution, each rounded to two
// decimals.
type FactorContribution struct {
	Factor       string  `json:"factor"`
	SubScore     float64 `json:"sub_score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoredMatch is one ranked drug to cancer opportunity in a search response.
type ScoredMatch struct {
	DrugID     string  `json:"drug_id"`
	DrugName   string  `json:"drug_name"`
	CancerType string  `json:"cancer_type"`
	Confidence float64 `json:"confidence"`
	Tier       Tier    `json:"tier"`

	Explanation      []FactorContribution `json:"explanation"`
	EvidenceSnapshot EvidenceBundle       `json:"evidence_snapshot"`
	SourceOrigin     Origin               `json:"source_origin"`

	// Internal ranking inputs, not part of the wire contract.
	Primary      bool `json:"-"`
	DemoPriority int  `json:"-"`
}
