// Package search implements the in-memory search engine: multi-field fuzzy
// matching over the corpus indexes, hero-case fusion, scoring, filtering,
// ranking, and pagination.  The engine never blocks; all data it touches is
// published read-only at startup.
package search

import (
	"sort"
	"strings"

	"github.com/trovesx/OncoPurpose/internal/corpus"
	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	"github.com/trovesx/OncoPurpose/internal/scoring"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
	"github.com/trovesx/OncoPurpose/pkg/types/common"
)

// Filters narrows a search.  The zero value applies no filtering.
type Filters struct {
	// OncologyOnly restricts results to drugs with an oncology disease area
	// or indication.  Hero cases always pass this filter.
	OncologyOnly bool `json:"oncology_only,omitempty"`

	// MinConfidence drops matches scoring below the threshold.
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// PhaseIn restricts results to the listed clinical phases.
	PhaseIn []repurpose.Phase `json:"phase_in,omitempty"`
}

// Query is one search invocation.
type Query struct {
	Terms   string
	Filters Filters
	Offset  int
	// Limit caps the returned page.  Zero yields an empty page; values above
	// common.MaxPageLimit are rejected.
	Limit int
}

// Result is a ranked, paginated search response.
type Result struct {
	Matches []repurpose.ScoredMatch `json:"matches"`
	Total   int                     `json:"total"`
	// NormalizedQuery is the query after normalization, echoed for clients.
	NormalizedQuery string `json:"normalized_query"`
}

// Engine runs searches against a built corpus index.
type Engine struct {
	idx    *corpus.Index
	scorer *scoring.Scorer
	log    logging.Logger
}

// New creates an Engine over the given index.
func New(idx *corpus.Index, scorer *scoring.Scorer, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Engine{idx: idx, scorer: scorer, log: log.Named("search")}
}

// Normalize lowercases, collapses internal whitespace, and strips leading and
// trailing punctuation from a query string.
func Normalize(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.Trim(q, ".,;:!?'\"()[]{}")
	return strings.Join(strings.Fields(q), " ")
}

// Search executes the query.  Validation failures (empty query, limit out of
// range) return immediately; everything else is a total function over the
// corpus.
func (e *Engine) Search(q Query) (*Result, error) {
	normalized := Normalize(q.Terms)
	if normalized == "" {
		return nil, apperrors.Validation("q", "query must not be empty")
	}
	if q.Limit < 0 || q.Limit > common.MaxPageLimit {
		return nil, apperrors.Validation("limit", "limit out of range")
	}
	if q.Offset < 0 {
		return nil, apperrors.Validation("offset", "offset must be non-negative")
	}

	heroes := e.searchHeroes(normalized, q.Filters)
	drugs := e.searchCorpus(normalized, q.Filters)

	// One entry per (drug_id, cancer_type); hero entries claim the pair first.
	type pairKey struct{ drug, cancer string }
	seen := make(map[pairKey]struct{}, len(heroes)+len(drugs))
	merged := make([]repurpose.ScoredMatch, 0, len(heroes)+len(drugs))
	for _, m := range append(heroes, drugs...) {
		key := pairKey{m.DrugID, strings.ToLower(m.CancerType)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, m)
	}

	Rank(merged)

	total := len(merged)
	page := paginate(merged, q.Offset, q.Limit)
	return &Result{Matches: page, Total: total, NormalizedQuery: normalized}, nil
}

// searchHeroes returns scored matches for every hero case matching the query,
// one per repurposed cancer, ordered by curated confidence descending with a
// stable insertion-order tie-break.
func (e *Engine) searchHeroes(normalized string, f Filters) []repurpose.ScoredMatch {
	var hits []*repurpose.HeroCase
	for _, h := range e.idx.HeroCases() {
		if h.Matches(normalized) {
			hits = append(hits, h)
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].ConfidenceScore > hits[b].ConfidenceScore
	})

	var out []repurpose.ScoredMatch
	for _, h := range hits {
		bundle := repurpose.EvidenceBundle{
			Phase:         h.Phase,
			TrialCount:    h.TrialCount,
			CitationCount: h.CitationCount,
			Sources:       []string{"ReDO", "ClinicalTrials"},
			Pathways:      h.Pathways,
		}
		scored := e.scorer.Score(bundle)
		for _, cancer := range h.RepurposedCancers {
			m := repurpose.ScoredMatch{
				DrugID:           h.DrugID(),
				DrugName:         h.DrugName,
				CancerType:       cancer,
				Confidence:       h.ConfidenceScore, // curated ground truth wins
				Tier:             scoring.TierFor(h.ConfidenceScore),
				Explanation:      scored.Explanation,
				EvidenceSnapshot: bundle,
				SourceOrigin:     repurpose.OriginHero,
				Primary:          true,
			}
			if m.Confidence < f.MinConfidence {
				continue
			}
			if len(f.PhaseIn) > 0 && !phaseAllowed(repurpose.ParsePhase(h.Phase), f.PhaseIn) {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// searchCorpus runs the five corpus strategies in order.  The first strategy
// with results claims the primary tier; later strategies append secondary
// matches.
func (e *Engine) searchCorpus(normalized string, f Filters) []repurpose.ScoredMatch {
	strategies := [][]*repurpose.Drug{
		exactNameHit(e.idx, normalized),
		e.idx.DrugsByNameSubstring(normalized),
		e.idx.DrugsByMechanismSubstring(normalized),
		e.idx.DrugsByTargetSubstring(normalized),
		fieldScan(e.idx, normalized),
	}

	var out []repurpose.ScoredMatch
	seen := make(map[string]struct{})
	primaryClaimed := false
	for _, candidates := range strategies {
		strategyAdded := false
		for _, d := range candidates {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			if !e.passes(d, f) {
				continue
			}
			m := e.scoreDrug(d)
			m.Primary = !primaryClaimed
			if m.Confidence < f.MinConfidence {
				continue
			}
			out = append(out, m)
			strategyAdded = true
		}
		if strategyAdded && !primaryClaimed {
			primaryClaimed = true
		}
	}
	return out
}

func exactNameHit(idx *corpus.Index, normalized string) []*repurpose.Drug {
	if d := idx.DrugByName(normalized); d != nil {
		return []*repurpose.Drug{d}
	}
	return nil
}

// fieldScan matches the query against disease_area and indication across the
// whole corpus.
func fieldScan(idx *corpus.Index, normalized string) []*repurpose.Drug {
	var out []*repurpose.Drug
	for _, d := range idx.AllDrugs() {
		if strings.Contains(strings.ToLower(d.DiseaseArea), normalized) ||
			strings.Contains(strings.ToLower(d.Indication), normalized) {
			out = append(out, d)
		}
	}
	return out
}

func (e *Engine) passes(d *repurpose.Drug, f Filters) bool {
	if f.OncologyOnly && !d.IsOncology() {
		return false
	}
	if len(f.PhaseIn) > 0 && !phaseAllowed(d.ClinicalPhase, f.PhaseIn) {
		return false
	}
	return true
}

func phaseAllowed(p repurpose.Phase, allowed []repurpose.Phase) bool {
	for _, a := range allowed {
		if p == a {
			return true
		}
	}
	return false
}

// scoreDrug synthesizes an evidence bundle from curated fields and scores it.
// Trial and citation counts are unknown at the corpus level and default to
// zero.
func (e *Engine) scoreDrug(d *repurpose.Drug) repurpose.ScoredMatch {
	bundle := repurpose.EvidenceBundle{
		Phase:    string(d.ClinicalPhase),
		Sources:  []string{string(d.Source)},
		Pathways: ParsePathways(d.Mechanism),
	}
	scored := e.scorer.Score(bundle)

	cancer := ""
	if d.IsOncology() {
		cancer = d.Indication
	}
	return repurpose.ScoredMatch{
		DrugID:           d.ID,
		DrugName:         d.Name,
		CancerType:       cancer,
		Confidence:       scored.Confidence,
		Tier:             scored.Tier,
		Explanation:      scored.Explanation,
		EvidenceSnapshot: bundle,
		SourceOrigin:     repurpose.OriginCorpus,
		DemoPriority:     d.DemoPriority,
	}
}

// ParsePathways splits a mechanism string into pathway-like terms on commas
// and semicolons.  A free-text mechanism with no separators yields a single
// pathway entry.
func ParsePathways(moa string) []string {
	moa = strings.TrimSpace(moa)
	if moa == "" {
		return nil
	}
	parts := strings.FieldsFunc(moa, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Rank sorts matches by (primary, hero, confidence desc, demo priority asc,
// name asc).  Zero demo priority means unranked and sorts after any ranked
// value.  Exposed so the orchestrator can re-rank after live-evidence
// rescoring.
func Rank(matches []repurpose.ScoredMatch) {
	sort.SliceStable(matches, func(a, b int) bool {
		ma, mb := matches[a], matches[b]
		if ma.Primary != mb.Primary {
			return ma.Primary
		}
		heroA := ma.SourceOrigin == repurpose.OriginHero
		heroB := mb.SourceOrigin == repurpose.OriginHero
		if heroA != heroB {
			return heroA
		}
		if ma.Confidence != mb.Confidence {
			return ma.Confidence > mb.Confidence
		}
		if pa, pb := rankPriority(ma.DemoPriority), rankPriority(mb.DemoPriority); pa != pb {
			return pa < pb
		}
		return ma.DrugName < mb.DrugName
	})
}

func rankPriority(p int) int {
	if p <= 0 {
		return int(^uint(0) >> 1) // unranked sorts last
	}
	return p
}

func paginate(matches []repurpose.ScoredMatch, offset, limit int) []repurpose.ScoredMatch {
	if limit == 0 || offset >= len(matches) {
		return []repurpose.ScoredMatch{}
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end]
}
