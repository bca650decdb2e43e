package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/external"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
	"github.com/trovesx/OncoPurpose/internal/scoring"
	"github.com/trovesx/OncoPurpose/internal/search"
	"github.com/trovesx/OncoPurpose/internal/store"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
	"github.com/trovesx/OncoPurpose/pkg/types/common"
)

// PaperSearcher is the PubMed contract the orchestrator depends on.
type PaperSearcher interface {
	SearchPapers(ctx context.Context, query string, max int) ([]external.Paper, external.Outcome)
}

// TrialSearcher is the ClinicalTrials.gov contract.
type TrialSearcher interface {
	SearchTrials(ctx context.Context, drugName, cancerType string, max int) ([]external.Trial, external.Outcome)
}

// DrugSearcher is the DrugBank contract.
type DrugSearcher interface {
	SearchDrugs(ctx context.Context, name string, max int) ([]external.DrugRecord, external.Outcome, error)
}

// Request is one search invocation entering the orchestrator.
type Request struct {
	Q       string         `json:"q"`
	Filters search.Filters `json:"filters"`
	Offset  int            `json:"offset"`
	Limit   int            `json:"limit"`

	// WantLiveEvidence triggers the bounded external fan-out.
	WantLiveEvidence bool `json:"want_live_evidence,omitempty"`
	// Persist records the search as an analysis artifact.
	Persist bool `json:"persist,omitempty"`

	Subject   string `json:"-"`
	SessionID string `json:"-"`
}

// Response is the shaped search result.
type Response struct {
	Matches         []repurpose.ScoredMatch `json:"matches"`
	Total           int                     `json:"total"`
	NormalizedQuery string                  `json:"normalized_query"`
	ExecutionTimeMS int64                   `json:"execution_time_ms"`
	CacheHit        bool                    `json:"cache_hit"`
	// DataSources lists every source consulted with its outcome, so clients
	// can see which contributions were degraded.
	DataSources []external.Outcome `json:"data_sources"`
	Degraded    bool               `json:"degraded"`
	ArtifactID  string             `json:"artifact_id,omitempty"`
}

// Orchestrator wires the full search path.
type Orchestrator struct {
	engine *search.Engine
	scorer *scoring.Scorer
	cache  *redis.Cache
	store  *store.Store

	papers PaperSearcher
	trials TrialSearcher
	drugs  DrugSearcher

	searchTTL            time.Duration
	liveEvidenceDeadline time.Duration

	group   singleflight.Group
	log     logging.Logger
	metrics *prommetrics.Metrics
}

// Config bundles the orchestrator dependencies.
type Config struct {
	Engine  *search.Engine
	Scorer  *scoring.Scorer
	Cache   *redis.Cache
	Store   *store.Store
	Papers  PaperSearcher
	Trials  TrialSearcher
	Drugs   DrugSearcher
	Cfg     config.Config
	Log     logging.Logger
	Metrics *prommetrics.Metrics
}

// New creates an Orchestrator.
func New(c Config) *Orchestrator {
	log := c.Log
	if log == nil {
		log = logging.NewNopLogger()
	}
	deadline := c.Cfg.External.LiveEvidenceDeadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	return &Orchestrator{
		engine:               c.Engine,
		scorer:               c.Scorer,
		cache:                c.Cache,
		store:                c.Store,
		papers:               c.Papers,
		trials:               c.Trials,
		drugs:                c.Drugs,
		searchTTL:            c.Cfg.Cache.SearchTTL,
		liveEvidenceDeadline: deadline,
		log:                  log.Named("query"),
		metrics:              c.Metrics,
	}
}

// Search runs the full path: cache probe, corpus search, optional live
// evidence fan-out, rescoring, cache fill, and optional artifact persistence.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	fingerprint := Fingerprint(req.Q, req.Filters, req.Offset, req.Limit)
	cacheKey := fmt.Sprintf(redis.KeySearch, fingerprint)

	var cached Response
	if hit, err := o.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		o.log.Warn("search cache read failed", logging.Err(err))
	} else if hit {
		cached.CacheHit = true
		cached.ExecutionTimeMS = time.Since(start).Milliseconds()
		o.observeSearch("hit", len(cached.Matches), start)
		if o.metrics != nil {
			o.metrics.CacheHits.WithLabelValues("search").Inc()
		}
		return &cached, nil
	}
	if o.metrics != nil {
		o.metrics.CacheMisses.WithLabelValues("search").Inc()
	}

	// Identical concurrent misses collapse into one computation.
	v, err, _ := o.group.Do(fingerprint, func() (interface{}, error) {
		return o.execute(ctx, req)
	})
	if err != nil {
		o.observeSearch("error", 0, start)
		return nil, err
	}
	// Copy the shared singleflight result before per-caller mutation.
	shared := v.(*Response)
	respCopy := *shared
	resp := &respCopy

	if err := o.cache.Set(ctx, cacheKey, resp, o.searchTTL); err != nil {
		o.log.Warn("search cache write failed", logging.Err(err))
	}

	if req.Persist {
		resp.ArtifactID = o.persist(ctx, req, resp)
	}

	resp.ExecutionTimeMS = time.Since(start).Milliseconds()
	o.observeSearch("miss", len(resp.Matches), start)
	return resp, nil
}

// execute runs the uncached path.
func (o *Orchestrator) execute(ctx context.Context, req Request) (*Response, error) {
	if req.Limit < 0 || req.Limit > common.MaxPageLimit {
		return nil, apperrors.Validation("limit", "limit out of range")
	}
	if req.Offset < 0 {
		return nil, apperrors.Validation("offset", "offset must be non-negative")
	}

	// When live evidence may reorder results, search the widest window and
	// re-slice after rescoring.
	engineQuery := search.Query{Terms: req.Q, Filters: req.Filters, Offset: req.Offset, Limit: req.Limit}
	if req.WantLiveEvidence {
		engineQuery.Offset = 0
		engineQuery.Limit = common.MaxPageLimit
	}

	result, err := o.engine.Search(engineQuery)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Matches:         result.Matches,
		Total:           result.Total,
		NormalizedQuery: result.NormalizedQuery,
		DataSources: []external.Outcome{
			{Source: "corpus", Status: external.StatusOK},
		},
	}

	if req.WantLiveEvidence {
		outcomes := o.fuseLiveEvidence(ctx, resp)
		resp.DataSources = append(resp.DataSources, outcomes...)
		for _, out := range outcomes {
			if out.Status == external.StatusDegraded {
				resp.Degraded = true
			}
		}
		search.Rank(resp.Matches)
		resp.Matches = window(resp.Matches, req.Offset, req.Limit)
	}
	return resp, nil
}

// fuseLiveEvidence fans out to the external sources under the shared
// deadline and folds the contributions into matching evidence bundles.
// Missing contributions never penalize a match.
func (o *Orchestrator) fuseLiveEvidence(ctx context.Context, resp *Response) []external.Outcome {
	fanCtx, cancel := context.WithTimeout(ctx, o.liveEvidenceDeadline)
	defer cancel()

	var (
		papers      []external.Paper
		trials      []external.Trial
		drugRecords []external.DrugRecord
		outcomes    = make([]external.Outcome, 0, 3)
	)

	g, gctx := errgroup.WithContext(fanCtx)
	var paperOut, trialOut, drugOut *external.Outcome

	if o.papers != nil {
		g.Go(func() error {
			p, out := o.papers.SearchPapers(gctx, resp.NormalizedQuery+" cancer", 50)
			papers, paperOut = p, &out
			return nil
		})
	}
	if o.trials != nil {
		g.Go(func() error {
			t, out := o.trials.SearchTrials(gctx, resp.NormalizedQuery, "", 50)
			trials, trialOut = t, &out
			return nil
		})
	}
	if o.drugs != nil {
		g.Go(func() error {
			d, out, err := o.drugs.SearchDrugs(gctx, resp.NormalizedQuery, 10)
			if err != nil {
				// Configuration failure: the provider is unavailable, not the
				// query.
				out = external.Outcome{
					Source: external.SourceDrugBank,
					Status: external.StatusDegraded,
					Reason: err.Error(),
				}
			}
			drugRecords, drugOut = d, &out
			return nil
		})
	}
	_ = g.Wait() // fetchers never return errors, only outcomes

	for _, out := range []*external.Outcome{paperOut, trialOut, drugOut} {
		if out != nil {
			outcomes = append(outcomes, *out)
		}
	}

	for i := range resp.Matches {
		o.fuseMatch(&resp.Matches[i], papers, trials, drugRecords)
	}
	return outcomes
}

// fuseMatch augments one match's evidence bundle with fetched records whose
// title or name mentions the drug, then rescores.  The curated confidence of
// hero matches is preserved.
func (o *Orchestrator) fuseMatch(m *repurpose.ScoredMatch, papers []external.Paper, trials []external.Trial, drugRecords []external.DrugRecord) {
	name := strings.ToLower(m.DrugName)
	bundle := m.EvidenceSnapshot
	touched := false

	for _, p := range papers {
		if strings.Contains(strings.ToLower(p.Title), name) {
			bundle.CitationCount += maxInt(p.CitationCount, 1)
			touched = true
		}
	}
	if touched {
		bundle.Sources = appendSource(bundle.Sources, "PubMed")
	}

	trialHits := 0
	for _, t := range trials {
		if strings.Contains(strings.ToLower(t.Title), name) {
			trialHits++
		}
	}
	if trialHits > 0 {
		bundle.TrialCount += trialHits
		bundle.Sources = appendSource(bundle.Sources, "ClinicalTrials")
		touched = true
	}

	for _, d := range drugRecords {
		if strings.Contains(strings.ToLower(d.Name), name) {
			if d.ApprovalStatus == "Approved" && bundle.Phase == "" {
				bundle.Phase = "Approved"
			}
			bundle.Sources = appendSource(bundle.Sources, "FDA")
			touched = true
			break
		}
	}

	if !touched {
		return
	}

	scored := o.scorer.Score(bundle)
	m.EvidenceSnapshot = bundle
	m.Explanation = scored.Explanation
	if m.SourceOrigin != repurpose.OriginHero {
		m.Confidence = scored.Confidence
		m.Tier = scored.Tier
	}
}

// persist writes the search artifact; failures degrade silently inside the
// store.
func (o *Orchestrator) persist(ctx context.Context, req Request, resp *Response) string {
	topConfidence := 0.0
	if len(resp.Matches) > 0 {
		topConfidence = resp.Matches[0].Confidence
	}
	artifact := &store.AnalysisArtifact{
		Kind:       store.KindSearch,
		Subject:    req.Subject,
		SessionID:  req.SessionID,
		Inputs:     store.MarshalInputs(req),
		Outputs:    store.MarshalInputs(map[string]interface{}{"total": resp.Total, "degraded": resp.Degraded}),
		Confidence: &topConfidence,
	}
	if err := o.store.Insert(ctx, artifact); err != nil {
		o.log.Warn("failed to persist search artifact", logging.Err(err))
		return ""
	}
	return artifact.ID
}

func (o *Orchestrator) observeSearch(outcome string, size int, start time.Time) {
	if o.metrics != nil {
		o.metrics.ObserveSearch(outcome, size, time.Since(start))
	}
}

func appendSource(sources []string, src string) []string {
	for _, s := range sources {
		if s == src {
			return sources
		}
	}
	return append(sources, src)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func window(matches []repurpose.ScoredMatch, offset, limit int) []repurpose.ScoredMatch {
	if limit == 0 || offset >= len(matches) {
		return []repurpose.ScoredMatch{}
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end]
}
