package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
)

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus composition statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats := e.idx.Stats()

			if e.opts.output == "json" {
				return e.printJSON(stats)
			}

			fmt.Fprintf(e.out, "Drugs:        %d\n", stats.TotalDrugs)
			fmt.Fprintf(e.out, "Hero cases:   %d\n", stats.HeroCases)
			fmt.Fprintf(e.out, "Oncology:     %d\n", stats.Oncology)
			fmt.Fprintf(e.out, "Mechanisms:   %d\n", stats.Mechanisms)
			fmt.Fprintf(e.out, "Targets:      %d\n\n", stats.Targets)

			table := tablewriter.NewWriter(e.out)
			table.SetHeader([]string{"Phase", "Drugs"})
			table.SetBorder(false)

			phases := make([]string, 0, len(stats.ByPhase))
			for p := range stats.ByPhase {
				phases = append(phases, string(p))
			}
			sort.Strings(phases)
			for _, p := range phases {
				table.Append([]string{p, strconv.Itoa(stats.ByPhase[repurpose.Phase(p)])})
			}
			table.Render()
			return nil
		},
	}
}
