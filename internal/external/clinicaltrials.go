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

// ClinicalTrialsClient talks to the ClinicalTrials.gov studies API v2.
type ClinicalTrialsClient struct {
	baseURL string
	http    *http.Client
	guard   *guard
	log     logging.Logger
	metrics *prommetrics.Metrics
}

// NewClinicalTrials creates a ClinicalTrials.gov client from configuration.
func NewClinicalTrials(cfg config.SourceConfig, timeout time.Duration, log logging.Logger, metrics *prommetrics.Metrics) *ClinicalTrialsClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ClinicalTrialsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{},
		guard:   newGuard(SourceClinicalTrials, cfg.MaxConcurrent, cfg.RatePerSecond, timeout),
		log:     log.Named("clinicaltrials"),
		metrics: metrics,
	}
}

// studiesResponse mirrors the v2 API envelope, decoding only the modules the
// trial record needs.
type studiesResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus   string      `json:"overallStatus"`
				StartDateStruct *dateStruct `json:"startDateStruct"`
				CompletionDate  *dateStruct `json:"completionDateStruct"`
			} `json:"statusModule"`
			DesignModule struct {
				Phases         []string `json:"phases"`
				EnrollmentInfo struct {
					Count int `json:"count"`
				} `json:"enrollmentInfo"`
			} `json:"designModule"`
			SponsorModule struct {
				LeadSponsor struct {
					Name string `json:"name"`
				} `json:"leadSponsor"`
			} `json:"sponsorCollaboratorsModule"`
			OutcomesModule struct {
				PrimaryOutcomes []struct {
					Measure string `json:"measure"`
				} `json:"primaryOutcomes"`
			} `json:"outcomesModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

type dateStruct struct {
	Date string `json:"date"`
}

func (d *dateStruct) parse() *time.Time {
	if d == nil || d.Date == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, d.Date); err == nil {
			return &t
		}
	}
	return nil
}

// SearchTrials finds studies mentioning the drug, optionally narrowed by a
// cancer type.  Records missing an NCT id or title are dropped; transient
// failures yield an empty slice with a degraded outcome.
func (c *ClinicalTrialsClient) SearchTrials(ctx context.Context, drugName, cancerType string, max int) ([]Trial, Outcome) {
	if max <= 0 {
		max = 50
	}
	start := time.Now()

	terms := []string{drugName}
	if cancerType != "" {
		terms = append(terms, cancerType)
	}

	var trials []Trial
	err := c.guard.do(ctx, func(ctx context.Context) error {
		params := url.Values{
			"query.term": {strings.Join(terms, " AND ")},
			"pageSize":   {fmt.Sprintf("%d", max)},
			"format":     {"json"},
		}

		var resp studiesResponse
		if err := getJSON(ctx, c.http, c.baseURL+"/studies?"+params.Encode(), nil, &resp); err != nil {
			return err
		}

		for _, s := range resp.Studies {
			p := s.ProtocolSection
			if p.IdentificationModule.NCTID == "" || p.IdentificationModule.BriefTitle == "" {
				continue
			}
			t := Trial{
				NCTID:           p.IdentificationModule.NCTID,
				Title:           p.IdentificationModule.BriefTitle,
				Status:          p.StatusModule.OverallStatus,
				Sponsor:         p.SponsorModule.LeadSponsor.Name,
				StartDate:       p.StatusModule.StartDateStruct.parse(),
				CompletionDate:  p.StatusModule.CompletionDate.parse(),
				EnrollmentCount: p.DesignModule.EnrollmentInfo.Count,
				URL:             "https://clinicaltrials.gov/study/" + p.IdentificationModule.NCTID,
			}
			if len(p.DesignModule.Phases) > 0 {
				t.Phase = p.DesignModule.Phases[0]
			}
			if len(p.OutcomesModule.PrimaryOutcomes) > 0 {
				t.PrimaryOutcome = p.OutcomesModule.PrimaryOutcomes[0].Measure
			}
			trials = append(trials, t)
		}
		return nil
	})

	elapsed := time.Since(start)
	if c.metrics != nil {
		status := string(StatusOK)
		if err != nil {
			status = string(StatusDegraded)
		}
		c.metrics.ObserveFetch(SourceClinicalTrials, status, elapsed)
	}
	if err != nil {
		c.log.Warn("clinicaltrials search degraded",
			logging.String("drug", drugName),
			logging.Err(err))
		return nil, degraded(SourceClinicalTrials, err.Error(), elapsed)
	}
	return trials, ok(SourceClinicalTrials, elapsed)
}
