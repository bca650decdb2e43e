// Package query composes the corpus search engine, the scorer, the cache,
// the external fetchers, and the analysis store into one request path.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/trovesx/OncoPurpose/internal/search"
)

// Fingerprint derives the stable cache key component for a search request:
// a hash of the normalized query, the sorted filters, and the pagination
// window.  Identical requests always produce identical fingerprints.
func Fingerprint(q string, f search.Filters, offset, limit int) string {
	phases := make([]string, 0, len(f.PhaseIn))
	for _, p := range f.PhaseIn {
		phases = append(phases, string(p))
	}
	sort.Strings(phases)

	canonical := strings.Join([]string{
		search.Normalize(q),
		fmt.Sprintf("oncology=%t", f.OncologyOnly),
		fmt.Sprintf("min=%.4f", f.MinConfidence),
		"phases=" + strings.Join(phases, ","),
		fmt.Sprintf("offset=%d", offset),
		fmt.Sprintf("limit=%d", limit),
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}
