package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ziwei/internal/view"
)

func chartCmd() *cobra.Command {
	var flags birthFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute a natal chart",
		Example: "  ziwei chart --date 1990-01-27 --hour 0 --gender male\n" +
			"  ziwei chart --date 2023-02-01 --lunar --leap --time 10:30 --gender female\n" +
			"  ziwei chart --profile \"Lin Mei\" --json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := flags.resolve(context.Background())
			if err != nil {
				return err
			}
			out := view.FromChart(c)
			out.Name = name
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return printChart(cmd.OutOrStdout(), out)
		},
	}
	flags.registerProfile(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the chart as JSON")
	return cmd
}

func printChart(w io.Writer, c view.Chart) error {
	if c.Name != "" {
		fmt.Fprintln(w, c.Name)
	}
	fmt.Fprintf(w, "Solar %s  Lunar %s  %s (%s)  %s, %s hour\n",
		c.Birth.Solar, c.Birth.Lunar, c.Birth.YearStemBranch, c.Birth.Zodiac, c.Birth.Gender, c.Birth.HourBranch)
	fmt.Fprintf(w, "%s  life palace %d  body palace %d\n\n", c.Bureau, c.LifePalace, c.BodyPalace)

	tw := newTable(w)
	fmt.Fprintln(tw, "IDX\tGANZHI\tPALACE\tMAIN\tAUXILIARY\tTEMPORAL")
	for _, p := range c.Palaces {
		name := p.Name
		if p.IsBodyPalace {
			name += " [身]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.Index, p.StemBranch, name, starNames(p.MainStars), starNames(p.AuxiliaryStars), starNames(p.TemporalStars))
	}
	return tw.Flush()
}
