// Package corpus loads the curated datasets from disk at startup and builds
// the in-memory indexes the search engine runs against.  The corpus is
// immutable after Load returns; no synchronization is needed for readers.
package corpus

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// Dataset file locations relative to the corpus directory.
const (
	broadCompleteJSON = "broad/broad_complete.json"
	broadCompleteTSV  = "broad/broad_complete.tsv"
	broadOncologyJSON = "broad/broad_oncology_compounds.json"
	heroCasesJSON     = "hero_cases/hero_repurposing_cases.json"
)

// broadRecord is the raw on-disk shape of one broad-hub drug entry.
type broadRecord struct {
	PertIname     string `json:"pert_iname"`
	ClinicalPhase string `json:"clinical_phase"`
	MOA           string `json:"moa"`
	Target        string `json:"target"`
	DiseaseArea   string `json:"disease_area"`
	Indication    string `json:"indication"`
}

// broadFile is the envelope of broad_complete.json.
type broadFile struct {
	AllDrugs []broadRecord `json:"all_drugs"`
}

// oncologyFile is the envelope of broad_oncology_compounds.json.
type oncologyFile struct {
	OncologyDrugs []broadRecord `json:"oncology_drugs"`
}

// Corpus holds the loaded, immutable dataset collections.
type Corpus struct {
	Drugs     []*repurpose.Drug
	HeroCases []*repurpose.HeroCase

	// OncologyCount is the number of drugs present in the curated oncology
	// overlay, kept for the statistics endpoint.
	OncologyCount int
}

// Loader reads the curated datasets from a directory.
type Loader struct {
	dir string
	log logging.Logger
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, log logging.Logger) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Loader{dir: dir, log: log.Named("corpus")}
}

// Load reads all datasets.  Missing files yield empty collections and a
// warning; a present but structurally invalid file fails the load with a
// corpus parse error.
func (l *Loader) Load() (*Corpus, error) {
	c := &Corpus{}

	records, err := l.loadBroad()
	if err != nil {
		return nil, err
	}

	overlay, err := l.loadOncologyOverlay()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]*repurpose.Drug, len(records))
	for i, rec := range records {
		drug := toDrug(rec, repurpose.SourceBroadHub, i+1)
		if drug == nil {
			continue
		}
		if _, dup := seen[drug.ID]; dup {
			continue
		}
		seen[drug.ID] = drug
		c.Drugs = append(c.Drugs, drug)
	}

	// The overlay marks cancer-relevant compounds; entries absent from the
	// main dataset are merged in as curated records.
	for _, rec := range overlay {
		id := repurpose.NormalizeName(rec.PertIname)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			drug := toDrug(rec, repurpose.SourceCurated, 0)
			seen[id] = drug
			c.Drugs = append(c.Drugs, drug)
		}
		c.OncologyCount++
	}

	heroes, err := l.loadHeroCases()
	if err != nil {
		return nil, err
	}
	c.HeroCases = heroes

	l.log.Info("corpus loaded",
		logging.Int("drugs", len(c.Drugs)),
		logging.Int("hero_cases", len(c.HeroCases)),
		logging.Int("oncology_compounds", c.OncologyCount))
	return c, nil
}

func toDrug(rec broadRecord, source repurpose.Source, priority int) *repurpose.Drug {
	name := strings.TrimSpace(rec.PertIname)
	if name == "" {
		return nil
	}
	return &repurpose.Drug{
		ID:            repurpose.NormalizeName(name),
		Name:          name,
		ClinicalPhase: repurpose.ParsePhase(rec.ClinicalPhase),
		Mechanism:     strings.TrimSpace(rec.MOA),
		Targets:       repurpose.SplitTargets(rec.Target),
		DiseaseArea:   strings.TrimSpace(rec.DiseaseArea),
		Indication:    strings.TrimSpace(rec.Indication),
		Source:        source,
		DemoPriority:  priority,
	}
}

// loadBroad reads the main drug dataset, preferring the JSON form and
// falling back to the TSV form when only that is present.
func (l *Loader) loadBroad() ([]broadRecord, error) {
	jsonPath := filepath.Join(l.dir, broadCompleteJSON)
	if data, err := os.ReadFile(jsonPath); err == nil {
		var f broadFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusParseFailed,
				"invalid broad dataset").WithDetail("path=" + jsonPath)
		}
		return f.AllDrugs, nil
	}

	tsvPath := filepath.Join(l.dir, broadCompleteTSV)
	if f, err := os.Open(tsvPath); err == nil {
		defer f.Close()
		records, err := parseBroadTSV(f)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusParseFailed,
				"invalid broad TSV dataset").WithDetail("path=" + tsvPath)
		}
		return records, nil
	}

	l.log.Warn("broad dataset not found, starting with empty corpus",
		logging.String("dir", l.dir))
	return nil, nil
}

// parseBroadTSV reads a tab-separated broad dataset.  The first row is a
// header naming the columns; unknown columns are ignored.
func parseBroadTSV(r interface{ Read([]byte) (int, error) }) ([]broadRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["pert_iname"]; !ok {
		return nil, fmt.Errorf("missing pert_iname column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]broadRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, broadRecord{
			PertIname:     field(row, "pert_iname"),
			ClinicalPhase: field(row, "clinical_phase"),
			MOA:           field(row, "moa"),
			Target:        field(row, "target"),
			DiseaseArea:   field(row, "disease_area"),
			Indication:    field(row, "indication"),
		})
	}
	return out, nil
}

func (l *Loader) loadOncologyOverlay() ([]broadRecord, error) {
	path := filepath.Join(l.dir, broadOncologyJSON)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil // overlay is optional, no warning needed
	}
	var f oncologyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusParseFailed,
			"invalid oncology overlay").WithDetail("path=" + path)
	}
	return f.OncologyDrugs, nil
}

func (l *Loader) loadHeroCases() ([]*repurpose.HeroCase, error) {
	path := filepath.Join(l.dir, heroCasesJSON)
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("hero cases not found", logging.String("path", path))
		return nil, nil
	}
	var heroes []*repurpose.HeroCase
	if err := json.Unmarshal(data, &heroes); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusParseFailed,
			"invalid hero cases dataset").WithDetail("path=" + path)
	}
	return heroes, nil
}
