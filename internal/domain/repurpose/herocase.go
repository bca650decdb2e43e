package repurpose

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EvidenceLevel is the curated strength classification of a hero case.
type EvidenceLevel string

const (
	EvidenceLow      EvidenceLevel = "low"
	EvidenceModerate EvidenceLevel = "moderate"
	EvidenceHigh     EvidenceLevel = "high"
	EvidenceVeryHigh EvidenceLevel = "very_high"
)

// HeroCase is a curated, ground-truth repurposing success story.  Hero cases
// always rank above corpus-derived matches for the same drug and cancer pair.
type HeroCase struct {
	DrugName           string        `json:"drug_name"`
	OriginalIndication string        `json:"original_indication"`
	RepurposedCancers  CancerList    `json:"repurposed_cancer"`
	Phase              string        `json:"phase"`
	ConfidenceScore    float64       `json:"confidence_score"`
	TrialCount         int           `json:"trial_count"`
	CitationCount      int           `json:"citations"`
	Mechanism          string        `json:"mechanism"`
	Pathways           []string      `json:"pathways"`
	EvidenceLevel      EvidenceLevel `json:"evidence_level"`
}

// DrugID returns the stable identifier used to key a hero case against the
// corpus, which is the normalized drug name.
func (h *HeroCase) DrugID() string {
	return NormalizeName(h.DrugName)
}

// Matches reports whether the normalized query term appears in the hero
// case's drug name, any repurposed cancer, the mechanism, or any pathway.
func (h *HeroCase) Matches(normalizedQuery string) bool {
	if normalizedQuery == "" {
		return false
	}
	if strings.Contains(NormalizeName(h.DrugName), normalizedQuery) {
		return true
	}
	for _, c := range h.RepurposedCancers {
		if strings.Contains(strings.ToLower(c), normalizedQuery) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(h.Mechanism), normalizedQuery) {
		return true
	}
	for _, p := range h.Pathways {
		if strings.Contains(strings.ToLower(p), normalizedQuery) {
			return true
		}
	}
	return false
}

// CancerList is a list of cancer-type strings that tolerates the two shapes
// the curated dataset uses for the repurposed_cancer field: a single string
// or an array of strings.
type CancerList []string

// UnmarshalJSON accepts either "melanoma" or ["melanoma", "colorectal cancer"].
func (c *CancerList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*c = nil
			return nil
		}
		*c = CancerList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("repurposed_cancer: expected string or array of strings: %w", err)
	}
	out := make(CancerList, 0, len(many))
	for _, v := range many {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	*c = out
	return nil
}
