package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
)

// PubMedClient talks to the NCBI E-utilities endpoints: esearch for PMIDs,
// efetch for record details.
type PubMedClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	guard   *guard
	log     logging.Logger
	metrics *prommetrics.Metrics
}

// NewPubMed creates a PubMed client from configuration.
func NewPubMed(cfg config.SourceConfig, timeout time.Duration, log logging.Logger, metrics *prommetrics.Metrics) *PubMedClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PubMedClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{},
		guard:   newGuard(SourcePubMed, cfg.MaxConcurrent, cfg.RatePerSecond, timeout),
		log:     log.Named("pubmed"),
		metrics: metrics,
	}
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// SearchPapers searches PubMed and fetches record details for up to max
// results.  Transient failures yield an empty slice with a degraded outcome.
func (c *PubMedClient) SearchPapers(ctx context.Context, query string, max int) ([]Paper, Outcome) {
	if max <= 0 {
		max = 20
	}
	start := time.Now()

	var papers []Paper
	err := c.guard.do(ctx, func(ctx context.Context) error {
		params := url.Values{
			"db":      {"pubmed"},
			"term":    {query},
			"retmax":  {fmt.Sprintf("%d", max)},
			"retmode": {"json"},
			"sort":    {"relevance"},
		}
		if c.apiKey != "" {
			params.Set("api_key", c.apiKey)
		}

		var search esearchResponse
		if err := getJSON(ctx, c.http, c.baseURL+"/esearch.fcgi?"+params.Encode(), nil, &search); err != nil {
			return err
		}
		pmids := search.ESearchResult.IDList
		if len(pmids) == 0 {
			return nil
		}

		fetched, err := c.fetchDetails(ctx, pmids)
		if err != nil {
			return err
		}
		papers = fetched
		return nil
	})

	elapsed := time.Since(start)
	out := c.outcome(err, elapsed)
	if out.Status == StatusDegraded {
		c.log.Warn("pubmed search degraded",
			logging.String("query", query),
			logging.String("reason", out.Reason))
		return nil, out
	}
	return papers, out
}

// fetchDetails retrieves record summaries for the given PMIDs.
func (c *PubMedClient) fetchDetails(ctx context.Context, pmids []string) ([]Paper, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"json"},
		"rettype": {"abstract"},
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var raw struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := getJSON(ctx, c.http, c.baseURL+"/efetch.fcgi?"+params.Encode(), nil, &raw); err != nil {
		return nil, err
	}

	uids, _ := raw.Result["uids"].([]interface{})
	papers := make([]Paper, 0, len(uids))
	for _, u := range uids {
		uid, _ := u.(string)
		rec, okRec := raw.Result[uid].(map[string]interface{})
		if !okRec {
			continue // skip malformed records without aborting the batch
		}
		papers = append(papers, parsePaper(uid, rec))
	}
	return papers, nil
}

func parsePaper(uid string, rec map[string]interface{}) Paper {
	p := Paper{PMID: uid}
	p.Title, _ = rec["title"].(string)
	p.Journal, _ = rec["source"].(string)
	p.Abstract, _ = rec["abstract"].(string)

	if n, okN := rec["pmcrefcount"].(float64); okN {
		p.CitationCount = int(n)
	}

	if authors, okA := rec["authors"].([]interface{}); okA {
		for _, a := range authors {
			if m, okM := a.(map[string]interface{}); okM {
				if name, okName := m["name"].(string); okName && name != "" {
					p.Authors = append(p.Authors, name)
				}
			}
		}
	}

	if ids, okI := rec["articleids"].([]interface{}); okI {
		for _, a := range ids {
			m, okM := a.(map[string]interface{})
			if !okM {
				continue
			}
			if t, _ := m["idtype"].(string); t == "doi" {
				p.DOI, _ = m["value"].(string)
			}
		}
	}

	if pubdate, okD := rec["pubdate"].(string); okD {
		p.PublicationDate = parsePubDate(pubdate)
	}
	return p
}

// parsePubDate accepts the three layouts PubMed emits: "2006 Jan 2",
// "2006 Jan", and "2006".  Unparseable dates are left zero.
func parsePubDate(s string) time.Time {
	for _, layout := range []string{"2006 Jan 2", "2006 Jan", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (c *PubMedClient) outcome(err error, elapsed time.Duration) Outcome {
	if c.metrics != nil {
		status := string(StatusOK)
		if err != nil {
			status = string(StatusDegraded)
		}
		c.metrics.ObserveFetch(SourcePubMed, status, elapsed)
	}
	if err != nil {
		return degraded(SourcePubMed, err.Error(), elapsed)
	}
	return ok(SourcePubMed, elapsed)
}
