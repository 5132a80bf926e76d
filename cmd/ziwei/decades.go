package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ziwei/internal/decade"
	"ziwei/internal/view"
)

func decadesCmd() *cobra.Command {
	var flags birthFlags
	var year int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "decades",
		Short: "List the decade cycles of a chart and the flow year palace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := flags.resolve(context.Background())
			if err != nil {
				return err
			}
			cycles, err := decade.Compute(c)
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}
			current, hasCurrent, err := decade.CurrentCycle(c, year)
			if err != nil {
				return err
			}
			flow := decade.FlowYearPalace(year)
			out := view.FromCycles(c, cycles)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"forward":           decade.Forward(c),
					"cycles":            out,
					"year":              year,
					"nominal_age":       decade.NominalAge(c, year),
					"flow_year_palace":  flow,
					"flow_year_name":    c.Palaces[flow].Name,
					"has_current_cycle": hasCurrent,
				})
			}

			w := cmd.OutOrStdout()
			direction := "forward"
			if !decade.Forward(c) {
				direction = "backward"
			}
			fmt.Fprintf(w, "Cycles move %s. %d: nominal age %d, flow year in %s (%d).\n\n",
				direction, year, decade.NominalAge(c, year), c.Palaces[flow].Name, flow)

			tw := newTable(w)
			fmt.Fprintln(tw, "AGES\tIDX\tGANZHI\tPALACE\t")
			for i, cycle := range out {
				marker := ""
				if hasCurrent && cycles[i] == current {
					marker = "<- current"
				}
				fmt.Fprintf(tw, "%d-%d\t%d\t%s\t%s\t%s\n",
					cycle.AgeStart, cycle.AgeEnd, cycle.PalaceIndex, cycle.StemBranch, cycle.PalaceName, marker)
			}
			return tw.Flush()
		},
	}
	flags.registerProfile(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "Gregorian year for the current cycle (default this year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
