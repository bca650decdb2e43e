// Package external implements the outbound biomedical data-source clients:
// PubMed, ClinicalTrials.gov, and DrugBank.  Each client is stateless apart
// from its admission guard and returns provider-neutral records together with
// an explicit ok-or-degraded outcome, so the orchestrator can reason about
// partial success without inspecting errors.
package external

import (
	"time"
)

// Source names, used in outcomes, metrics labels, and response envelopes.
const (
	SourcePubMed         = "pubmed"
	SourceClinicalTrials = "clinicaltrials"
	SourceDrugBank       = "drugbank"
)

// Status is the result variant of a fetch.
type Status string

const (
	// StatusOK means the provider answered and all parseable records were
	// returned.
	StatusOK Status = "ok"
	// StatusDegraded means a transient failure (timeout, 5xx, connection
	// reset, open breaker) produced an empty or partial result.
	StatusDegraded Status = "degraded"
)

// Outcome describes how a fetch concluded.  Degraded outcomes carry a short
// machine-readable reason.
type Outcome struct {
	Source  string        `json:"source"`
	Status  Status        `json:"status"`
	Reason  string        `json:"reason,omitempty"`
	Elapsed time.Duration `json:"-"`
}

func ok(source string, elapsed time.Duration) Outcome {
	return Outcome{Source: source, Status: StatusOK, Elapsed: elapsed}
}

func degraded(source, reason string, elapsed time.Duration) Outcome {
	return Outcome{Source: source, Status: StatusDegraded, Reason: reason, Elapsed: elapsed}
}

// Paper is a provider-neutral publication record.
type Paper struct {
	PMID            string    `json:"pmid"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Journal         string    `json:"journal"`
	PublicationDate time.Time `json:"publication_date,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	Abstract        string    `json:"abstract,omitempty"`
	CitationCount   int       `json:"citation_count"`
}

// Trial is a provider-neutral clinical study record.  Records missing an
// identifier or title are dropped at parse time.
type Trial struct {
	NCTID           string     `json:"nct_id"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	Phase           string     `json:"phase"`
	Sponsor         string     `json:"sponsor"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	CompletionDate  *time.Time `json:"completion_date,omitempty"`
	EnrollmentCount int        `json:"enrollment_count,omitempty"`
	PrimaryOutcome  string     `json:"primary_outcome,omitempty"`
	URL             string     `json:"url"`
}

// DrugRecord is a provider-neutral drug profile.
type DrugRecord struct {
	Name              string   `json:"name"`
	DrugBankID        string   `json:"drugbank_id"`
	MolecularWeight   float64  `json:"molecular_weight,omitempty"`
	Structure         string   `json:"structure,omitempty"`
	ApprovalStatus    string   `json:"approval_status"`
	Manufacturer      string   `json:"manufacturer,omitempty"`
	Mechanism         string   `json:"mechanism,omitempty"`
	DrugClass         string   `json:"drug_class,omitempty"`
	AdverseEvents     []string `json:"adverse_events"`
	Contraindications []string `json:"contraindications"`
	Interactions      []string `json:"interactions"`
}
