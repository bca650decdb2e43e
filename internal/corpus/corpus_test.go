package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

const broadFixture = `{
	"all_drugs": [
		{"pert_iname": "Metformin", "clinical_phase": "Launched", "moa": "AMPK activator", "target": "PRKAA1|PRKAA2", "disease_area": "endocrinology", "indication": "type 2 diabetes"},
		{"pert_iname": "Imatinib", "clinical_phase": "Approved", "moa": "BCR-ABL inhibitor", "target": "ABL1|KIT", "disease_area": "oncology", "indication": "chronic myeloid leukemia"},
		{"pert_iname": "Experimentanib", "clinical_phase": "Phase 2", "moa": "EGFR inhibitor", "target": "EGFR", "disease_area": "oncology", "indication": "NSCLC"},
		{"pert_iname": "  ", "clinical_phase": "", "moa": "", "target": "", "disease_area": "", "indication": ""}
	]
}`

const heroFixture = `[
	{"drug_name": "Metformin", "original_indication": "Type 2 diabetes", "repurposed_cancer": ["breast cancer", "colorectal cancer"], "confidence_score": 0.89, "trial_count": 80, "citations": 350, "mechanism": "AMPK activation", "pathways": ["AMPK", "mTOR"], "evidence_level": "high"},
	{"drug_name": "Thalidomide", "original_indication": "Morning sickness", "repurposed_cancer": "multiple myeloma", "confidence_score": 0.97, "trial_count": 120, "citations": 450, "mechanism": "Immunomodulatory", "pathways": ["TNF-alpha"], "evidence_level": "very_high"}
]`

const oncologyFixture = `{
	"oncology_drugs": [
		{"pert_iname": "Imatinib", "clinical_phase": "Approved", "moa": "BCR-ABL inhibitor", "target": "ABL1", "disease_area": "oncology", "indication": "CML"},
		{"pert_iname": "Novelumab", "clinical_phase": "Phase 1", "moa": "PD-1 inhibitor", "target": "PDCD1", "disease_area": "oncology", "indication": "melanoma"}
	]
}`

func writeFixtures(t *testing.T, broad, hero, oncology string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broad"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hero_cases"), 0o755))
	if broad != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, broadCompleteJSON), []byte(broad), 0o600))
	}
	if hero != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, heroCasesJSON), []byte(hero), 0o600))
	}
	if oncology != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, broadOncologyJSON), []byte(oncology), 0o600))
	}
	return dir
}

func TestLoad_FullDatasets(t *testing.T) {
	dir := writeFixtures(t, broadFixture, heroFixture, oncologyFixture)
	c, err := NewLoader(dir, logging.NewNopLogger()).Load()
	require.NoError(t, err)

	// Blank-name record dropped; Novelumab merged from the overlay.
	require.Len(t, c.Drugs, 4)
	assert.Equal(t, 2, c.OncologyCount)
	require.Len(t, c.HeroCases, 2)

	metformin := c.Drugs[0]
	assert.Equal(t, "metformin", metformin.ID)
	assert.Equal(t, "Metformin", metformin.Name)
	assert.Equal(t, []string{"PRKAA1", "PRKAA2"}, metformin.Targets)
	assert.Equal(t, repurpose.SourceBroadHub, metformin.Source)
	assert.Equal(t, 1, metformin.DemoPriority)

	novelumab := c.Drugs[3]
	assert.Equal(t, repurpose.SourceCurated, novelumab.Source)
	assert.Equal(t, repurpose.Phase1, novelumab.ClinicalPhase)

	assert.Equal(t, repurpose.CancerList{"multiple myeloma"}, c.HeroCases[1].RepurposedCancers)
}

func TestLoad_MissingFilesAreNotFatal(t *testing.T) {
	c, err := NewLoader(t.TempDir(), logging.NewNopLogger()).Load()
	require.NoError(t, err)
	assert.Empty(t, c.Drugs)
	assert.Empty(t, c.HeroCases)
}

func TestLoad_InvalidBroadFile(t *testing.T) {
	dir := writeFixtures(t, `{"all_drugs": "not-an-array"}`, "", "")
	_, err := NewLoader(dir, logging.NewNopLogger()).Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCorpusParseFailed, apperrors.GetCode(err))
}

func TestLoad_InvalidHeroFile(t *testing.T) {
	dir := writeFixtures(t, broadFixture, `{"broken": true}`, "")
	_, err := NewLoader(dir, logging.NewNopLogger()).Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCorpusParseFailed, apperrors.GetCode(err))
}

func TestLoad_TSVFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broad"), 0o755))
	tsv := "pert_iname\tclinical_phase\tmoa\ttarget\tdisease_area\tindication\n" +
		"Aspirin\tLaunched\tCOX inhibitor\tPTGS1|PTGS2\tcardiology\tpain\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, broadCompleteTSV), []byte(tsv), 0o600))

	c, err := NewLoader(dir, logging.NewNopLogger()).Load()
	require.NoError(t, err)
	require.Len(t, c.Drugs, 1)
	assert.Equal(t, "Aspirin", c.Drugs[0].Name)
	assert.Equal(t, []string{"PTGS1", "PTGS2"}, c.Drugs[0].Targets)
}

func TestBuildIndex_Lookups(t *testing.T) {
	dir := writeFixtures(t, broadFixture, heroFixture, oncologyFixture)
	c, err := NewLoader(dir, logging.NewNopLogger()).Load()
	require.NoError(t, err)
	idx := BuildIndex(c)

	// Exact name, case-insensitive.
	assert.Equal(t, "Metformin", idx.DrugByName("METFORMIN").Name)
	assert.Nil(t, idx.DrugByName("nope"))

	// Name substring preserves insertion order.
	byNib := idx.DrugsByNameSubstring("nib")
	require.Len(t, byNib, 2)
	assert.Equal(t, "Imatinib", byNib[0].Name)
	assert.Equal(t, "Experimentanib", byNib[1].Name)

	// Mechanism exact and substring.
	assert.Len(t, idx.DrugsByMechanism("AMPK activator"), 1)
	assert.Len(t, idx.DrugsByMechanismSubstring("inhibitor"), 3)

	// Target lookups normalize case.
	assert.Len(t, idx.DrugsByTarget("kit"), 1)
	assert.Len(t, idx.DrugsByTargetSubstring("prkaa"), 1)

	// Phase buckets.
	assert.Len(t, idx.DrugsByPhase(repurpose.PhaseApproved), 1)
	assert.Len(t, idx.DrugsByPhase(repurpose.Phase2), 1)

	// Token index covers mechanism terms.
	assert.NotEmpty(t, idx.DrugsByToken("ampk"))
}

func TestIndex_Stats(t *testing.T) {
	dir := writeFixtures(t, broadFixture, heroFixture, oncologyFixture)
	c, err := NewLoader(dir, logging.NewNopLogger()).Load()
	require.NoError(t, err)

	s := BuildIndex(c).Stats()
	assert.Equal(t, 4, s.TotalDrugs)
	assert.Equal(t, 2, s.HeroCases)
	assert.Equal(t, 2, s.Oncology)
	assert.Equal(t, 1, s.ByPhase[repurpose.PhaseApproved])
	assert.Equal(t, 3, s.BySource[repurpose.SourceBroadHub])
	assert.Equal(t, 1, s.BySource[repurpose.SourceCurated])
}
