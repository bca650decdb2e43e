package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/search"
)

func newSearchCmd(e *env) *cobra.Command {
	var (
		limit         int
		offset        int
		oncologyOnly  bool
		minConfidence float64
		phases        []string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the corpus for repurposing opportunities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := search.Query{
				Terms: strings.Join(args, " "),
				Filters: search.Filters{
					OncologyOnly:  oncologyOnly,
					MinConfidence: minConfidence,
					PhaseIn:       toPhases(phases),
				},
				Offset: offset,
				Limit:  limit,
			}

			result, err := e.engine.Search(q)
			if err != nil {
				return err
			}

			if e.opts.output == "json" {
				return e.printJSON(result)
			}
			renderMatches(e, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results to return (1-200)")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	cmd.Flags().BoolVar(&oncologyOnly, "oncology-only", false, "restrict to oncology compounds")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "minimum confidence score")
	cmd.Flags().StringSliceVar(&phases, "phase", nil, "restrict to clinical phases (repeatable)")

	return cmd
}

func toPhases(raw []string) []repurpose.Phase {
	var out []repurpose.Phase
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, repurpose.ParsePhase(p))
		}
	}
	return out
}

func renderMatches(e *env, result *search.Result) {
	if len(result.Matches) == 0 {
		fmt.Fprintf(e.out, "No matches for %q\n", result.NormalizedQuery)
		return
	}

	table := tablewriter.NewWriter(e.out)
	table.SetHeader([]string{"Drug", "Cancer Type", "Confidence", "Tier", "Origin"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, m := range result.Matches {
		table.Append([]string{
			m.DrugName,
			m.CancerType,
			strconv.FormatFloat(m.Confidence, 'f', 2, 64),
			colorTier(m.Tier),
			string(m.SourceOrigin),
		})
	}
	table.Render()
	fmt.Fprintf(e.out, "\n%d of %d matches for %q\n", len(result.Matches), result.Total, result.NormalizedQuery)
}

func colorTier(tier repurpose.Tier) string {
	switch tier {
	case repurpose.TierVeryHigh:
		return color.GreenString(string(tier))
	case repurpose.TierHigh:
		return color.HiGreenString(string(tier))
	case repurpose.TierModerate:
		return color.YellowString(string(tier))
	default:
		return color.RedString(string(tier))
	}
}
