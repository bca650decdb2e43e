// Package repurpose defines the core domain model of the OncoPurpose
// platform: drugs, curated repurposing cases, evidence bundles, and scored
// matches.  Everything in this package is a plain value type; persistence and
// transport concerns live in the infrastructure and interfaces layers.
package repurpose

import (
	"strings"
)

// Phase is the clinical development phase of a drug.
type Phase string

const (
	PhaseApproved    Phase = "Approved"
	Phase3           Phase = "Phase 3"
	Phase2           Phase = "Phase 2"
	Phase1           Phase = "Phase 1"
	PhasePreclinical Phase = "Preclinical"
	PhaseUnknown     Phase = "Unknown"
)

// phaseRules pairs a lowercase needle with the Phase it identifies.  Order
// matters: the earliest matching rule wins, so "approved" is tested before
// the numbered phases and "phase 3" before "phase 2".
var phaseRules = []struct {
	needle string
	phase  Phase
}{
	{"approved", PhaseApproved},
	{"phase 3", Phase3},
	{"phase 2", Phase2},
	{"phase 1", Phase1},
	{"preclinical", PhasePreclinical},
}

// ParsePhase maps a free-text phase description to the Phase enumeration
// using case-insensitive substring matching.  Unrecognized inputs map to
// PhaseUnknown.
func ParsePhase(s string) Phase {
	lower := strings.ToLower(s)
	for _, r := range phaseRules {
		if strings.Contains(lower, r.needle) {
			return r.phase
		}
	}
	return PhaseUnknown
}

// AllPhases lists every Phase in descending order of development maturity.
func AllPhases() []Phase {
	return []Phase{PhaseApproved, Phase3, Phase2, Phase1, PhasePreclinical, PhaseUnknown}
}

// Source identifies where a Drug record originated.
type Source string

const (
	SourceBroadHub Source = "broad_hub"
	SourceRepoDB   Source = "repodb"
	SourceCurated  Source = "curated"
	SourceExternal Source = "external"
)

// Drug is an immutable corpus record.  Instances are created by the corpus
// loader at startup and shared read-only thereafter.
type Drug struct {
	ID            string   `json:"drug_id"`
	Name          string   `json:"name"`
	ClinicalPhase Phase    `json:"clinical_phase"`
	Mechanism     string   `json:"mechanism_of_action"`
	Targets       []string `json:"targets"`
	DiseaseArea   string   `json:"disease_area"`
	Indication    string   `json:"indication"`
	Source        Source   `json:"source"`
	// DemoPriority is a curated ordering hint; lower sorts earlier among
	// equal-confidence matches.  Zero means unranked.
	DemoPriority int `json:"demo_priority,omitempty"`
}

// NormalizeName lowercases and trims a drug name for index keys and lookups.
// The canonical display form is kept on the Drug itself.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTarget uppercases and trims a gene symbol.
func NormalizeTarget(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// SplitTargets splits a pipe-separated target string into normalized gene
// symbols, dropping empties.
func SplitTargets(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := NormalizeTarget(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// oncologyTerms are the disease-area markers used by the oncology_only filter.
var oncologyTerms = []string{
	"cancer", "tumor", "oncology", "carcinoma", "leukemia", "lymphoma",
	"melanoma", "sarcoma", "glioma", "myeloma", "blastoma", "neoplasm",
	"malignant", "metastatic",
}

// IsOncology reports whether the drug's disease area or indication mentions
// an oncology term.
func (d *Drug) IsOncology() bool {
	haystack := strings.ToLower(d.DiseaseArea + " " + d.Indication)
	for _, term := range oncologyTerms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
