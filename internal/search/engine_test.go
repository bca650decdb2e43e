package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovesx/OncoPurpose/internal/corpus"
	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	"github.com/trovesx/OncoPurpose/internal/scoring"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	c := &corpus.Corpus{
		Drugs: []*repurpose.Drug{
			{
				ID: "aspirin", Name: "Aspirin", ClinicalPhase: repurpose.PhaseApproved,
				Mechanism: "COX inhibitor", Targets: []string{"PTGS1", "PTGS2"},
				DiseaseArea: "cardiology", Indication: "pain, cardiovascular prevention",
				Source: repurpose.SourceBroadHub, DemoPriority: 1,
			},
			{
				ID: "imatinib", Name: "Imatinib", ClinicalPhase: repurpose.PhaseApproved,
				Mechanism: "BCR-ABL kinase inhibitor", Targets: []string{"ABL1", "KIT"},
				DiseaseArea: "oncology", Indication: "chronic myeloid leukemia",
				Source: repurpose.SourceBroadHub, DemoPriority: 2,
			},
			{
				ID: "experimentanib", Name: "Experimentanib", ClinicalPhase: repurpose.Phase2,
				Mechanism: "EGFR kinase inhibitor", Targets: []string{"EGFR"},
				DiseaseArea: "oncology", Indication: "lung cancer",
				Source: repurpose.SourceBroadHub, DemoPriority: 3,
			},
			{
				ID: "cardiol", Name: "Cardiol", ClinicalPhase: repurpose.Phase1,
				Mechanism: "beta blocker", Targets: []string{"ADRB1"},
				DiseaseArea: "cardiology", Indication: "hypertension",
				Source: repurpose.SourceBroadHub,
			},
		},
		HeroCases: []*repurpose.HeroCase{
			{
				DrugName: "Aspirin", OriginalIndication: "Pain",
				RepurposedCancers: repurpose.CancerList{"colorectal cancer"},
				Phase:             "Approved/Ongoing",
				ConfidenceScore:   0.92, TrialCount: 90, CitationCount: 400,
				Mechanism: "COX-2 inhibition", Pathways: []string{"COX-2", "Wnt"},
				EvidenceLevel: repurpose.EvidenceVeryHigh,
			},
			{
				DrugName: "Metformin", OriginalIndication: "Type 2 diabetes",
				RepurposedCancers: repurpose.CancerList{"breast cancer", "colorectal cancer"},
				Phase:             "Phase 3",
				ConfidenceScore:   0.85, TrialCount: 60, CitationCount: 300,
				Mechanism: "AMPK activation", Pathways: []string{"AMPK", "mTOR"},
				EvidenceLevel: repurpose.EvidenceHigh,
			},
		},
	}
	return New(corpus.BuildIndex(c), scoring.New(), logging.NewNopLogger())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "aspirin", Normalize("  Aspirin. "))
	assert.Equal(t, "breast cancer", Normalize("Breast   Cancer"))
	assert.Equal(t, "egfr", Normalize("(EGFR)"))
	assert.Equal(t, "", Normalize("   "))
}

func TestSearch_EmptyQueryIsValidation(t *testing.T) {
	_, err := testEngine(t).Search(Query{Terms: "  ", Limit: 50})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSearch_LimitBounds(t *testing.T) {
	e := testEngine(t)

	_, err := e.Search(Query{Terms: "aspirin", Limit: 201})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = e.Search(Query{Terms: "aspirin", Limit: -1})
	assert.Error(t, err)

	res, err := e.Search(Query{Terms: "aspirin", Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Greater(t, res.Total, 0)
}

func TestSearch_HeroDominates(t *testing.T) {
	res, err := testEngine(t).Search(Query{Terms: "Aspirin", Limit: 50})
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)

	first := res.Matches[0]
	assert.Equal(t, "aspirin", first.DrugID)
	assert.Equal(t, "colorectal cancer", first.CancerType)
	assert.Equal(t, repurpose.OriginHero, first.SourceOrigin)
	assert.Equal(t, repurpose.TierVeryHigh, first.Tier)
	assert.GreaterOrEqual(t, first.Confidence, 0.90)

	// Every hero match precedes every non-hero match.
	lastHero, firstCorpus := -1, len(res.Matches)
	for i, m := range res.Matches {
		if m.SourceOrigin == repurpose.OriginHero {
			lastHero = i
		} else if i < firstCorpus {
			firstCorpus = i
		}
	}
	assert.Less(t, lastHero, firstCorpus)
}

func TestSearch_HeroOrderedByConfidence(t *testing.T) {
	// "colorectal" matches both hero cases via repurposed cancers.
	res, err := testEngine(t).Search(Query{Terms: "colorectal", Limit: 50})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res.Matches), 2)
	assert.Equal(t, "Aspirin", res.Matches[0].DrugName)
	assert.Equal(t, "Metformin", res.Matches[1].DrugName)
}

func TestSearch_DedupPerDrugCancerPair(t *testing.T) {
	// Metformin's hero case lists two cancers; both survive as distinct pairs.
	res, err := testEngine(t).Search(Query{Terms: "metformin", Limit: 50})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.NotEqual(t, res.Matches[0].CancerType, res.Matches[1].CancerType)
}

func TestSearch_MechanismStrategy(t *testing.T) {
	res, err := testEngine(t).Search(Query{Terms: "kinase inhibitor", Limit: 50})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	names := []string{res.Matches[0].DrugName, res.Matches[1].DrugName}
	assert.Contains(t, names, "Imatinib")
	assert.Contains(t, names, "Experimentanib")
}

func TestSearch_TargetStrategy(t *testing.T) {
	res, err := testEngine(t).Search(Query{Terms: "egfr", Limit: 50})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Experimentanib", res.Matches[0].DrugName)
}

func TestSearch_DiseaseAreaStrategy(t *testing.T) {
	res, err := testEngine(t).Search(Query{Terms: "hypertension", Limit: 50})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Cardiol", res.Matches[0].DrugName)
}

func TestSearch_OncologyOnlyFilter(t *testing.T) {
	res, err := testEngine(t).Search(Query{
		Terms:   "inhibitor",
		Filters: Filters{OncologyOnly: true},
		Limit:   50,
	})
	require.NoError(t, err)
	for _, m := range res.Matches {
		assert.NotEqual(t, "Cardiol", m.DrugName)
		assert.NotEqual(t, "Aspirin", m.DrugName)
	}
}

func TestSearch_MinConfidenceFilter(t *testing.T) {
	res, err := testEngine(t).Search(Query{
		Terms:   "colorectal",
		Filters: Filters{MinConfidence: 0.90},
		Limit:   50,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Aspirin", res.Matches[0].DrugName)
}

func TestSearch_PhaseFilter(t *testing.T) {
	res, err := testEngine(t).Search(Query{
		Terms:   "inhibitor",
		Filters: Filters{PhaseIn: []repurpose.Phase{repurpose.Phase2}},
		Limit:   50,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Experimentanib", res.Matches[0].DrugName)
}

func TestSearch_Pagination(t *testing.T) {
	e := testEngine(t)
	all, err := e.Search(Query{Terms: "inhibitor", Limit: 50})
	require.NoError(t, err)
	require.GreaterOrEqual(t, all.Total, 2)

	page, err := e.Search(Query{Terms: "inhibitor", Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Matches, 1)
	assert.Equal(t, all.Matches[1].DrugID, page.Matches[0].DrugID)
	assert.Equal(t, all.Total, page.Total)

	beyond, err := e.Search(Query{Terms: "inhibitor", Offset: 100, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Matches)
}

func TestSearch_Stable(t *testing.T) {
	e := testEngine(t)
	first, err := e.Search(Query{Terms: "inhibitor", Limit: 50})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Search(Query{Terms: "inhibitor", Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestParsePathways(t *testing.T) {
	assert.Equal(t, []string{"COX inhibitor"}, ParsePathways("COX inhibitor"))
	assert.Equal(t, []string{"AMPK activation", "mTOR inhibition"},
		ParsePathways("AMPK activation, mTOR inhibition"))
	assert.Nil(t, ParsePathways("  "))
}
