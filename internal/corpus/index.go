package corpus

import (
	"strings"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
)

// Index holds the lookup structures built over an immutable Corpus.  Exact
// lookups are O(1); substring scans iterate the preserved insertion order so
// ties break stably across invocations.
type Index struct {
	corpus *Corpus

	byName      map[string]*repurpose.Drug
	byMechanism map[string][]*repurpose.Drug
	byTarget    map[string][]*repurpose.Drug
	byPhase     map[repurpose.Phase][]*repurpose.Drug

	// token inverted index over name and mechanism terms
	byToken map[string][]*repurpose.Drug

	// key slices in first-seen order for deterministic substring scans
	nameKeys      []string
	mechanismKeys []string
	targetKeys    []string
}

// BuildIndex constructs all indexes from the corpus.  Called once at startup
// before the corpus is published to readers.
func BuildIndex(c *Corpus) *Index {
	idx := &Index{
		corpus:      c,
		byName:      make(map[string]*repurpose.Drug, len(c.Drugs)),
		byMechanism: make(map[string][]*repurpose.Drug),
		byTarget:    make(map[string][]*repurpose.Drug),
		byPhase:     make(map[repurpose.Phase][]*repurpose.Drug),
		byToken:     make(map[string][]*repurpose.Drug),
	}

	for _, d := range c.Drugs {
		key := repurpose.NormalizeName(d.Name)
		if key == "" {
			continue
		}
		if _, dup := idx.byName[key]; !dup {
			idx.byName[key] = d
			idx.nameKeys = append(idx.nameKeys, key)
		}

		if d.Mechanism != "" {
			if _, seen := idx.byMechanism[d.Mechanism]; !seen {
				idx.mechanismKeys = append(idx.mechanismKeys, d.Mechanism)
			}
			idx.byMechanism[d.Mechanism] = appendUnique(idx.byMechanism[d.Mechanism], d)
		}

		for _, t := range d.Targets {
			if _, seen := idx.byTarget[t]; !seen {
				idx.targetKeys = append(idx.targetKeys, t)
			}
			idx.byTarget[t] = appendUnique(idx.byTarget[t], d)
		}

		idx.byPhase[d.ClinicalPhase] = append(idx.byPhase[d.ClinicalPhase], d)

		for _, tok := range tokenize(d.Name + " " + d.Mechanism) {
			idx.byToken[tok] = appendUnique(idx.byToken[tok], d)
		}
	}
	return idx
}

// appendUnique appends d unless it is already the last occurrence in the
// slice.  Records arrive grouped per drug, so a linear suffix check is enough
// to keep each key's list duplicate-free.
func appendUnique(list []*repurpose.Drug, d *repurpose.Drug) []*repurpose.Drug {
	for _, existing := range list {
		if existing == d {
			return list
		}
	}
	return append(list, d)
}

// tokenize splits text into lowercase alphanumeric terms.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Corpus returns the underlying corpus.
func (i *Index) Corpus() *Corpus { return i.corpus }

// DrugByName returns the drug for an exact normalized name, or nil.
func (i *Index) DrugByName(name string) *repurpose.Drug {
	return i.byName[repurpose.NormalizeName(name)]
}

// DrugsByNameSubstring returns drugs whose normalized name contains the
// normalized query, in insertion order.
func (i *Index) DrugsByNameSubstring(query string) []*repurpose.Drug {
	q := repurpose.NormalizeName(query)
	if q == "" {
		return nil
	}
	var out []*repurpose.Drug
	for _, key := range i.nameKeys {
		if strings.Contains(key, q) {
			out = append(out, i.byName[key])
		}
	}
	return out
}

// DrugsByMechanism returns the drugs sharing an exact mechanism string.
func (i *Index) DrugsByMechanism(moa string) []*repurpose.Drug {
	return i.byMechanism[moa]
}

// DrugsByMechanismSubstring returns drugs whose mechanism contains the query
// (case-insensitive), in mechanism insertion order.
func (i *Index) DrugsByMechanismSubstring(query string) []*repurpose.Drug {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*repurpose.Drug
	for _, key := range i.mechanismKeys {
		if strings.Contains(strings.ToLower(key), q) {
			for _, d := range i.byMechanism[key] {
				out = appendUnique(out, d)
			}
		}
	}
	return out
}

// DrugsByTarget returns the drugs listing an exact uppercase gene symbol.
func (i *Index) DrugsByTarget(symbol string) []*repurpose.Drug {
	return i.byTarget[repurpose.NormalizeTarget(symbol)]
}

// DrugsByTargetSubstring returns drugs with a target containing the
// uppercased query, in target insertion order.
func (i *Index) DrugsByTargetSubstring(query string) []*repurpose.Drug {
	q := repurpose.NormalizeTarget(query)
	if q == "" {
		return nil
	}
	var out []*repurpose.Drug
	for _, key := range i.targetKeys {
		if strings.Contains(key, q) {
			for _, d := range i.byTarget[key] {
				out = appendUnique(out, d)
			}
		}
	}
	return out
}

// DrugsByPhase returns all drugs in a clinical phase.
func (i *Index) DrugsByPhase(phase repurpose.Phase) []*repurpose.Drug {
	return i.byPhase[phase]
}

// DrugsByToken returns drugs whose name or mechanism contains the exact
// token.
func (i *Index) DrugsByToken(token string) []*repurpose.Drug {
	return i.byToken[strings.ToLower(token)]
}

// AllDrugs returns the full drug list in corpus order.
func (i *Index) AllDrugs() []*repurpose.Drug { return i.corpus.Drugs }

// HeroCases returns the curated hero cases in corpus order.
func (i *Index) HeroCases() []*repurpose.HeroCase { return i.corpus.HeroCases }

// Stats summarizes the corpus for the statistics endpoint.
type Stats struct {
	TotalDrugs int                      `json:"total_drugs"`
	HeroCases  int                      `json:"hero_cases"`
	Oncology   int                      `json:"oncology_compounds"`
	Mechanisms int                      `json:"mechanisms"`
	Targets    int                      `json:"targets"`
	ByPhase    map[repurpose.Phase]int  `json:"by_phase"`
	BySource   map[repurpose.Source]int `json:"by_source"`
}

// Stats computes corpus aggregates.
func (i *Index) Stats() Stats {
	s := Stats{
		TotalDrugs: len(i.corpus.Drugs),
		HeroCases:  len(i.corpus.HeroCases),
		Oncology:   i.corpus.OncologyCount,
		Mechanisms: len(i.byMechanism),
		Targets:    len(i.byTarget),
		ByPhase:    make(map[repurpose.Phase]int),
		BySource:   make(map[repurpose.Source]int),
	}
	for _, d := range i.corpus.Drugs {
		s.ByPhase[d.ClinicalPhase]++
		s.BySource[d.Source]++
	}
	return s
}
