package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trovesx/OncoPurpose/internal/corpus"
	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	"github.com/trovesx/OncoPurpose/internal/scoring"
	"github.com/trovesx/OncoPurpose/internal/search"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// DrugDetail is the full profile for one drug: the corpus record, any curated
// repurposing cases, and the evidence-based score.
type DrugDetail struct {
	Drug        *repurpose.Drug                `json:"drug"`
	HeroCases   []*repurpose.HeroCase          `json:"hero_cases,omitempty"`
	Confidence  float64                        `json:"confidence"`
	Tier        repurpose.Tier                 `json:"tier"`
	Explanation []repurpose.FactorContribution `json:"explanation"`
}

// DrugHandler serves drug and mechanism lookups.
type DrugHandler struct {
	idx     *corpus.Index
	scorer  *scoring.Scorer
	cache   *redis.Cache
	drugTTL time.Duration
	log     logging.Logger
}

// NewDrug creates a DrugHandler.
func NewDrug(idx *corpus.Index, scorer *scoring.Scorer, cache *redis.Cache, drugTTL time.Duration, log logging.Logger) *DrugHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DrugHandler{idx: idx, scorer: scorer, cache: cache, drugTTL: drugTTL, log: log.Named("drugs")}
}

// Get handles GET /api/v1/drugs/{name}.
func (h *DrugHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := repurpose.NormalizeName(chi.URLParam(r, "name"))
	if name == "" {
		writeAppError(w, apperrors.Validation("name", "drug name must not be empty"))
		return
	}

	cacheKey := fmt.Sprintf(redis.KeyDrug, name)
	var detail DrugDetail
	if hit, err := h.cache.GetJSON(r.Context(), cacheKey, &detail); err == nil && hit {
		writeJSON(w, http.StatusOK, &detail)
		return
	}

	drug := h.idx.DrugByName(name)
	if drug == nil {
		writeAppError(w, apperrors.New(apperrors.ErrCodeDrugNotFound,
			fmt.Sprintf("drug %q not found", name)))
		return
	}

	bundle := repurpose.EvidenceBundle{
		Phase:    string(drug.ClinicalPhase),
		Sources:  []string{string(drug.Source)},
		Pathways: search.ParsePathways(drug.Mechanism),
	}
	scored := h.scorer.Score(bundle)

	detail = DrugDetail{
		Drug:        drug,
		HeroCases:   h.heroCasesFor(name),
		Confidence:  scored.Confidence,
		Tier:        scored.Tier,
		Explanation: scored.Explanation,
	}

	if err := h.cache.Set(r.Context(), cacheKey, &detail, h.drugTTL); err != nil {
		h.log.Warn("drug cache write failed", logging.Err(err))
	}
	writeJSON(w, http.StatusOK, &detail)
}

func (h *DrugHandler) heroCasesFor(normalizedName string) []*repurpose.HeroCase {
	var out []*repurpose.HeroCase
	for _, hc := range h.idx.HeroCases() {
		if hc.DrugID() == normalizedName {
			out = append(out, hc)
		}
	}
	return out
}

// GetByMechanism handles GET /api/v1/mechanisms/{moa}.
func (h *DrugHandler) GetByMechanism(w http.ResponseWriter, r *http.Request) {
	moa := chi.URLParam(r, "moa")
	drugs := h.idx.DrugsByMechanismSubstring(search.Normalize(moa))
	if len(drugs) == 0 {
		writeAppError(w, apperrors.New(apperrors.ErrCodeMechanismNotFound,
			fmt.Sprintf("no drugs with mechanism matching %q", moa)))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mechanism": moa,
		"count":     len(drugs),
		"drugs":     drugs,
	})
}
