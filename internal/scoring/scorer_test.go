package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
)

func TestScore_ApprovedPhaseOnly(t *testing.T) {
	s := New()
	r := s.Score(repurpose.EvidenceBundle{Phase: "Approved"})

	// 0.40*1.0 + 0.10*0.30 = 0.43
	assert.InDelta(t, 0.43, r.Confidence, 1e-9)
	assert.Equal(t, repurpose.TierLow, r.Tier)
}

func TestScore_SourceAveraging(t *testing.T) {
	s := New()
	r := s.Score(repurpose.EvidenceBundle{
		Phase:         "Phase 2",
		TrialCount:    20,
		CitationCount: 30,
		Sources:       []string{"repoDB", "ClinicalTrials.gov", "ReDO_DB"},
		Pathways:      []string{"A", "B", "C"},
	})

	// 0.40*0.65 + 0.20*0.70 + 0.15*0.55 + 0.15*avg(0.95,0.90,0.85) + 0.10*0.85
	assert.InDelta(t, 0.7025, r.Confidence, 1e-9)
	assert.Equal(t, repurpose.TierHigh, r.Tier)
}

func TestScore_Deterministic(t *testing.T) {
	s := New()
	bundle := repurpose.EvidenceBundle{
		Phase:         "Phase 3",
		TrialCount:    55,
		CitationCount: 160,
		Sources:       []string{"PubMed", "FDA", "unknown-source", "Broad"},
		Pathways:      []string{"mTOR", "AMPK"},
	}
	first := s.Score(bundle)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score(bundle))
	}
}

func TestScore_ZeroBundle(t *testing.T) {
	s := New()
	r := s.Score(repurpose.EvidenceBundle{})

	// Unknown phase 0.10*0.40 + empty pathways 0.30*0.10 = 0.07
	assert.InDelta(t, 0.07, r.Confidence, 1e-9)
	assert.Equal(t, repurpose.TierVeryLow, r.Tier)
	assert.GreaterOrEqual(t, r.Confidence, 0.0)
	assert.LessOrEqual(t, r.Confidence, 1.0)
}

func TestScore_MaximumBundle(t *testing.T) {
	s := New()
	r := s.Score(repurpose.EvidenceBundle{
		Phase:         "Approved",
		TrialCount:    500,
		CitationCount: 1000,
		Sources:       []string{"FDA", "repoDB", "ClinicalTrials.gov", "PubMed"},
		Pathways:      []string{"a", "b", "c", "d", "e"},
	})

	// Sources take the top 3: avg(1.0, 0.95, 0.90) = 0.95.
	expected := 0.40*1.0 + 0.20*1.0 + 0.15*1.0 + 0.15*0.95 + 0.10*1.0
	assert.InDelta(t, expected, r.Confidence, 1e-9)
	assert.Equal(t, repurpose.TierVeryHigh, r.Tier)
}

func TestPhaseScore_SubstringOrder(t *testing.T) {
	tests := []struct {
		phase    string
		expected float64
	}{
		{"FDA Approved", 1.0},
		{"Approved/Phase 3", 1.0}, // approved rule listed first
		{"Phase 3 recruiting", 0.85},
		{"phase 2", 0.65},
		{"PHASE 1", 0.45},
		{"preclinical studies", 0.25},
		{"withdrawn", 0.10},
		{"", 0.10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, phaseScore(tt.phase), "phase=%q", tt.phase)
	}
}

func TestCountScore_Cutoffs(t *testing.T) {
	tests := []struct {
		n        int
		expected float64
	}{
		{150, 1.0}, {100, 1.0}, {99, 0.85}, {50, 0.85}, {49, 0.70},
		{20, 0.70}, {19, 0.55}, {10, 0.55}, {9, 0.40}, {5, 0.40},
		{4, 0.25}, {1, 0.25}, {0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, countScore(tt.n, trialCutoffs), "n=%d", tt.n)
	}
}

func TestSourceScore(t *testing.T) {
	assert.Equal(t, 0.0, sourceScore(nil))
	assert.InDelta(t, 0.50, sourceScore([]string{"some blog"}), 1e-9)
	assert.InDelta(t, 1.0, sourceScore([]string{"FDA"}), 1e-9)
	// More than three sources: only the top three count.
	got := sourceScore([]string{"PubMed", "FDA", "repoDB", "ClinicalTrials"})
	assert.InDelta(t, (1.0+0.95+0.90)/3, got, 1e-9)
}

func TestTierFor_Boundaries(t *testing.T) {
	assert.Equal(t, repurpose.TierVeryHigh, TierFor(0.85))
	assert.Equal(t, repurpose.TierHigh, TierFor(0.84))
	assert.Equal(t, repurpose.TierHigh, TierFor(0.70))
	assert.Equal(t, repurpose.TierModerate, TierFor(0.69))
	assert.Equal(t, repurpose.TierModerate, TierFor(0.55))
	assert.Equal(t, repurpose.TierLow, TierFor(0.54))
	assert.Equal(t, repurpose.TierLow, TierFor(0.40))
	assert.Equal(t, repurpose.TierVeryLow, TierFor(0.39))
}

func TestScore_ExplanationRounding(t *testing.T) {
	s := New()
	r := s.Score(repurpose.EvidenceBundle{
		Phase:   "Phase 2",
		Sources: []string{"repoDB", "ClinicalTrials.gov", "ReDO_DB"},
	})

	require.Len(t, r.Explanation, 5)
	byFactor := map[string]repurpose.FactorContribution{}
	for _, fc := range r.Explanation {
		byFactor[fc.Factor] = fc
	}

	phase := byFactor["phase"]
	assert.Equal(t, 0.65, phase.SubScore)
	assert.Equal(t, WeightPhase, phase.Weight)
	assert.Equal(t, 0.26, phase.Contribution)

	sources := byFactor["sources"]
	assert.Equal(t, 0.90, sources.SubScore)
	// avg 0.90 * 0.15 = 0.135, rounded to 0.14
	assert.Equal(t, 0.14, sources.Contribution)
}
