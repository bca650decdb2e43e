package external

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// DrugBankClient talks to the DrugBank REST API.  An API key is mandatory;
// requests short-circuit with a configuration error before any network call
// when it is absent.
type DrugBankClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	guard   *guard
	log     logging.Logger
	metrics *prommetrics.Metrics
}

// NewDrugBank creates a DrugBank client from configuration.  A missing API
// key is tolerated here so the process can start; every fetch then fails with
// a configuration error.
func NewDrugBank(cfg config.SourceConfig, timeout time.Duration, log logging.Logger, metrics *prommetrics.Metrics) *DrugBankClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DrugBankClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{},
		guard:   newGuard(SourceDrugBank, cfg.MaxConcurrent, cfg.RatePerSecond, timeout),
		log:     log.Named("drugbank"),
		metrics: metrics,
	}
}

// drugResponse mirrors the subset of the DrugBank drug document we consume.
type drugResponse struct {
	Name       string   `json:"name"`
	DrugBankID string   `json:"drugbank_id"`
	SMILES     string   `json:"smiles"`
	Groups     []string `json:"groups"`
	Mechanism  string   `json:"mechanism_of_action"`
	DrugClass  string   `json:"drug_class"`
	Properties struct {
		MolecularWeight float64 `json:"molecular_weight"`
	} `json:"properties"`
	Manufacturer      string   `json:"manufacturer"`
	AdverseEvents     []string `json:"adverse_events"`
	Contraindications []string `json:"contraindications"`
	Interactions      []string `json:"drug_interactions"`
}

func (r *drugResponse) toRecord() DrugRecord {
	status := "Not Approved"
	for _, g := range r.Groups {
		if strings.EqualFold(g, "approved") {
			status = "Approved"
			break
		}
	}
	rec := DrugRecord{
		Name:              r.Name,
		DrugBankID:        r.DrugBankID,
		MolecularWeight:   r.Properties.MolecularWeight,
		Structure:         r.SMILES,
		ApprovalStatus:    status,
		Manufacturer:      r.Manufacturer,
		Mechanism:         r.Mechanism,
		DrugClass:         r.DrugClass,
		AdverseEvents:     r.AdverseEvents,
		Contraindications: r.Contraindications,
		Interactions:      r.Interactions,
	}
	if rec.AdverseEvents == nil {
		rec.AdverseEvents = []string{}
	}
	if rec.Contraindications == nil {
		rec.Contraindications = []string{}
	}
	if rec.Interactions == nil {
		rec.Interactions = []string{}
	}
	return rec
}

// SearchDrugs looks up drug records by name.  A missing API key returns a
// configuration error without touching the network; transient failures yield
// a degraded outcome with a nil error.
func (c *DrugBankClient) SearchDrugs(ctx context.Context, name string, max int) ([]DrugRecord, Outcome, error) {
	start := time.Now()
	if c.apiKey == "" {
		return nil, degraded(SourceDrugBank, "missing api key", 0),
			apperrors.Configuration("drugbank api key not configured")
	}
	if max <= 0 {
		max = 10
	}

	var records []DrugRecord
	err := c.guard.do(ctx, func(ctx context.Context) error {
		params := url.Values{"q": {name}}
		headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

		var resp struct {
			Drugs []drugResponse `json:"drugs"`
		}
		if err := getJSON(ctx, c.http, c.baseURL+"/drugs?"+params.Encode(), headers, &resp); err != nil {
			return err
		}
		for i, d := range resp.Drugs {
			if i >= max {
				break
			}
			if d.Name == "" {
				continue
			}
			records = append(records, d.toRecord())
		}
		return nil
	})

	elapsed := time.Since(start)
	if c.metrics != nil {
		status := string(StatusOK)
		if err != nil {
			status = string(StatusDegraded)
		}
		c.metrics.ObserveFetch(SourceDrugBank, status, elapsed)
	}
	if err != nil {
		c.log.Warn("drugbank search degraded",
			logging.String("drug", name),
			logging.Err(err))
		return nil, degraded(SourceDrugBank, err.Error(), elapsed), nil
	}
	return records, ok(SourceDrugBank, elapsed), nil
}

// GetDrug fetches a single drug document by its DrugBank identifier.
func (c *DrugBankClient) GetDrug(ctx context.Context, drugbankID string) (*DrugRecord, Outcome, error) {
	start := time.Now()
	if c.apiKey == "" {
		return nil, degraded(SourceDrugBank, "missing api key", 0),
			apperrors.Configuration("drugbank api key not configured")
	}

	var record *DrugRecord
	err := c.guard.do(ctx, func(ctx context.Context) error {
		headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
		var resp drugResponse
		if err := getJSON(ctx, c.http, c.baseURL+"/drugs/"+url.PathEscape(drugbankID), headers, &resp); err != nil {
			return err
		}
		rec := resp.toRecord()
		record = &rec
		return nil
	})

	elapsed := time.Since(start)
	if err != nil {
		return nil, degraded(SourceDrugBank, err.Error(), elapsed), nil
	}
	return record, ok(SourceDrugBank, elapsed), nil
}
