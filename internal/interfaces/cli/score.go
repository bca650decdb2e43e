package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

func newScoreCmd(e *env) *cobra.Command {
	var (
		phase     string
		trials    int
		citations int
		sources   []string
		pathways  []string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an evidence bundle",
		Long: `Compute the confidence score for a hand-assembled evidence bundle.
Useful for checking how a candidate would rank before it enters the corpus.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if phase == "" && trials == 0 && citations == 0 && len(sources) == 0 && len(pathways) == 0 {
				return apperrors.InvalidParam("provide at least one evidence flag")
			}

			bundle := repurpose.EvidenceBundle{
				Phase:         phase,
				TrialCount:    trials,
				CitationCount: citations,
				Sources:       sources,
				Pathways:      pathways,
			}
			result := e.scorer.Score(bundle)

			if e.opts.output == "json" {
				return e.printJSON(map[string]interface{}{
					"confidence":  result.Confidence,
					"tier":        result.Tier,
					"explanation": result.Explanation,
				})
			}

			fmt.Fprintf(e.out, "Confidence: %.4f (%s)\n\n", result.Confidence, result.Tier)
			table := tablewriter.NewWriter(e.out)
			table.SetHeader([]string{"Factor", "Sub-score", "Weight", "Contribution"})
			table.SetBorder(false)
			for _, f := range result.Explanation {
				table.Append([]string{
					f.Factor,
					strconv.FormatFloat(f.SubScore, 'f', 2, 64),
					strconv.FormatFloat(f.Weight, 'f', 2, 64),
					strconv.FormatFloat(f.Contribution, 'f', 2, 64),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "", "clinical phase (e.g. \"Phase 2\", \"Approved\")")
	cmd.Flags().IntVar(&trials, "trials", 0, "number of clinical trials")
	cmd.Flags().IntVar(&citations, "citations", 0, "number of supporting citations")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "evidence source (repeatable)")
	cmd.Flags().StringSliceVar(&pathways, "pathway", nil, "affected pathway (repeatable)")

	return cmd
}
