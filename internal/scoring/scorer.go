// Package scoring implements the deterministic confidence scorer.  The
// scorer is a pure function over an evidence bundle: identical inputs always
// produce identical outputs, which keeps search results stable and cacheable.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
)

// Factor weights.  They sum to 1.0 so the weighted sum is already in [0,1]
// before the final clamp.
const (
	WeightPhase     = 0.40
	WeightTrials    = 0.20
	WeightCitations = 0.15
	WeightSources   = 0.15
	WeightMechanism = 0.10
)

// Tier thresholds, lower-inclusive.
const (
	ThresholdVeryHigh = 0.85
	ThresholdHigh     = 0.70
	ThresholdModerate = 0.55
	ThresholdLow      = 0.40
)

// phaseScores pairs a lowercase needle with its sub-score.  Earliest match
// wins, mirroring repurpose.ParsePhase ordering.
var phaseScores = []struct {
	needle string
	score  float64
}{
	{"approved", 1.0},
	{"phase 3", 0.85},
	{"phase 2", 0.65},
	{"phase 1", 0.45},
	{"preclinical", 0.25},
}

// sourceScores maps known evidence sources to their reliability weight.
// Lookup is case-insensitive substring; unrecognized sources score 0.50.
var sourceScores = []struct {
	needle string
	score  float64
}{
	{"fda", 1.0},
	{"repodb", 0.95},
	{"clinicaltrials", 0.90},
	{"redo", 0.85},
	{"broad", 0.80},
	{"pubmed", 0.75},
}

const unknownSourceScore = 0.50

// Result carries the scored confidence, its tier, and the per-factor
// explanation.
type Result struct {
	Confidence  float64
	Tier        repurpose.Tier
	Explanation []repurpose.FactorContribution
}

// Scorer computes confidence scores.  The zero value is ready to use; the
// struct exists so callers depend on an injectable value rather than package
// functions.
type Scorer struct{}

// New returns a ready Scorer.
func New() *Scorer { return &Scorer{} }

// Score computes the weighted confidence for the bundle.  It is total: every
// input, including the zero bundle, yields a valid result.
func (s *Scorer) Score(bundle repurpose.EvidenceBundle) Result {
	phase := phaseScore(bundle.Phase)
	trials := countScore(bundle.TrialCount, trialCutoffs)
	citations := countScore(bundle.CitationCount, citationCutoffs)
	sources := sourceScore(bundle.Sources)
	mechanism := mechanismScore(len(bundle.Pathways))

	confidence := phase*WeightPhase +
		trials*WeightTrials +
		citations*WeightCitations +
		sources*WeightSources +
		mechanism*WeightMechanism
	confidence = clamp01(confidence)

	return Result{
		Confidence: confidence,
		Tier:       TierFor(confidence),
		Explanation: []repurpose.FactorContribution{
			contribution("phase", phase, WeightPhase),
			contribution("trial_count", trials, WeightTrials),
			contribution("citations", citations, WeightCitations),
			contribution("sources", sources, WeightSources),
			contribution("mechanism", mechanism, WeightMechanism),
		},
	}
}

// TierFor maps a confidence value to its tier band.
func TierFor(confidence float64) repurpose.Tier {
	switch {
	case confidence >= ThresholdVeryHigh:
		return repurpose.TierVeryHigh
	case confidence >= ThresholdHigh:
		return repurpose.TierHigh
	case confidence >= ThresholdModerate:
		return repurpose.TierModerate
	case confidence >= ThresholdLow:
		return repurpose.TierLow
	default:
		return repurpose.TierVeryLow
	}
}

func phaseScore(phase string) float64 {
	lower := strings.ToLower(phase)
	for _, r := range phaseScores {
		if strings.Contains(lower, r.needle) {
			return r.score
		}
	}
	return 0.10
}

// cutoff pairs a lower-inclusive count threshold with its sub-score.
type cutoff struct {
	min   int
	score float64
}

var trialCutoffs = []cutoff{
	{100, 1.0}, {50, 0.85}, {20, 0.70}, {10, 0.55}, {5, 0.40}, {1, 0.25},
}

var citationCutoffs = []cutoff{
	{300, 1.0}, {150, 0.85}, {75, 0.70}, {30, 0.55}, {10, 0.40}, {1, 0.25},
}

func countScore(n int, cutoffs []cutoff) float64 {
	for _, c := range cutoffs {
		if n >= c.min {
			return c.score
		}
	}
	return 0
}

// sourceScore averages the top three source reliability weights.
func sourceScore(sources []string) float64 {
	if len(sources) == 0 {
		return 0
	}
	scores := make([]float64, 0, len(sources))
	for _, src := range sources {
		scores = append(scores, scoreOneSource(src))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	top := scores
	if len(top) > 3 {
		top = top[:3]
	}
	var sum float64
	for _, v := range top {
		sum += v
	}
	return sum / float64(len(top))
}

func scoreOneSource(src string) float64 {
	lower := strings.ToLower(src)
	for _, r := range sourceScores {
		if strings.Contains(lower, r.needle) {
			return r.score
		}
	}
	return unknownSourceScore
}

func mechanismScore(pathwayCount int) float64 {
	switch {
	case pathwayCount >= 4:
		return 1.0
	case pathwayCount == 3:
		return 0.85
	case pathwayCount == 2:
		return 0.70
	case pathwayCount == 1:
		return 0.55
	default:
		return 0.30
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round2 rounds to two decimal places for explanation output only; the
// confidence itself is never rounded.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func contribution(factor string, sub, weight float64) repurpose.FactorContribution {
	return repurpose.FactorContribution{
		Factor:       factor,
		SubScore:     round2(sub),
		Weight:       weight,
		Contribution: round2(sub * weight),
	}
}
