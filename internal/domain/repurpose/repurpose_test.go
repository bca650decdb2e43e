package repurpose

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		input    string
		expected Phase
	}{
		{"Approved", PhaseApproved},
		{"FDA approved since 1994", PhaseApproved},
		{"Phase 3", Phase3},
		{"phase 3/phase 2", Phase3},
		{"Phase 2", Phase2},
		{"Phase 1", Phase1},
		{"Preclinical", PhasePreclinical},
		{"Withdrawn", PhaseUnknown},
		{"", PhaseUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParsePhase(tt.input), "input=%q", tt.input)
	}
}

func TestSplitTargets(t *testing.T) {
	assert.Equal(t, []string{"PRKAA1", "PRKAA2"}, SplitTargets("PRKAA1|prkaa2"))
	assert.Equal(t, []string{"EGFR"}, SplitTargets(" egfr "))
	assert.Nil(t, SplitTargets(""))
	assert.Nil(t, SplitTargets("   "))
	assert.Equal(t, []string{"A", "B"}, SplitTargets("A||B"))
}

func TestDrug_IsOncology(t *testing.T) {
	onc := &Drug{DiseaseArea: "oncology", Indication: "non-small cell lung cancer"}
	assert.True(t, onc.IsOncology())

	metastatic := &Drug{Indication: "metastatic disease"}
	assert.True(t, metastatic.IsOncology())

	cardio := &Drug{DiseaseArea: "cardiology", Indication: "hypertension"}
	assert.False(t, cardio.IsOncology())
}

func TestCancerList_UnmarshalJSON(t *testing.T) {
	var single CancerList
	require.NoError(t, json.Unmarshal([]byte(`"melanoma"`), &single))
	assert.Equal(t, CancerList{"melanoma"}, single)

	var many CancerList
	require.NoError(t, json.Unmarshal([]byte(`["melanoma","colorectal cancer"]`), &many))
	assert.Equal(t, CancerList{"melanoma", "colorectal cancer"}, many)

	var empty CancerList
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)

	var bad CancerList
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestHeroCase_Matches(t *testing.T) {
	h := &HeroCase{
		DrugName:          "Metformin",
		RepurposedCancers: CancerList{"breast cancer", "colorectal cancer"},
		Mechanism:         "AMPK activation",
		Pathways:          []string{"mTOR inhibition", "AMPK"},
	}

	assert.True(t, h.Matches("metformin"))
	assert.True(t, h.Matches("breast"))
	assert.True(t, h.Matches("ampk"))
	assert.True(t, h.Matches("mtor"))
	assert.False(t, h.Matches("aspirin"))
	assert.False(t, h.Matches(""))
}

func TestHeroCase_UnmarshalFromDataset(t *testing.T) {
	raw := `{
		"drug_name": "Thalidomide",
		"original_indication": "Morning sickness",
		"repurposed_cancer": "multiple myeloma",
		"confidence_score": 0.97,
		"trial_count": 120,
		"citations": 450,
		"mechanism": "Anti-angiogenic, immunomodulatory",
		"pathways": ["TNF-alpha", "VEGF"],
		"evidence_level": "very_high"
	}`
	var h HeroCase
	require.NoError(t, json.Unmarshal([]byte(raw), &h))
	assert.Equal(t, "thalidomide", h.DrugID())
	assert.Equal(t, CancerList{"multiple myeloma"}, h.RepurposedCancers)
	assert.Equal(t, EvidenceVeryHigh, h.EvidenceLevel)
	assert.Equal(t, 120, h.TrialCount)
}
