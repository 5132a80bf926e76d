package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ziwei/internal/activation"
	"ziwei/internal/chart"
	"ziwei/internal/decade"
	"ziwei/internal/view"
)

func activationsCmd() *cobra.Command {
	var flags birthFlags
	var palace, year int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "activations",
		Short: "Show where a decade palace's four transformations land",
		Long: "Resolves the 化禄 化权 化科 化忌 of a decade palace's stem to the palaces\n" +
			"holding the transformed stars and prints the meaning text for each.\n" +
			"Without --palace the decade current in --year is used.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, _, err := flags.resolve(ctx)
			if err != nil {
				return err
			}
			cfg, err := loadOptionalConfig()
			if err != nil {
				return err
			}
			kb, err := loadKnowledgeBase(cfg)
			if err != nil {
				return err
			}

			if palace < 0 {
				if year == 0 {
					year = time.Now().Year()
				}
				cycle, ok, err := decade.CurrentCycle(c, year)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no decade cycle covers %d", year)
				}
				palace = cycle.PalaceIndex
			}

			resolver := activation.NewResolver(kb, activation.WithLogger(logger))
			results, err := resolver.CycleActivations(c, palace)
			if err != nil {
				return err
			}
			out := view.FromActivations(results)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return printActivations(cmd, c, palace, out)
		},
	}
	flags.registerProfile(cmd)
	cmd.Flags().IntVar(&palace, "palace", -1, "Decade palace index 0-11")
	cmd.Flags().IntVar(&year, "year", 0, "Gregorian year used when --palace is not set (default this year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func printActivations(cmd *cobra.Command, c *chart.Chart, palace int, results []view.Activation) error {
	w := cmd.OutOrStdout()
	source, err := c.Palace(palace)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Decade palace %s\n", source.Label())
	if len(results) == 0 {
		fmt.Fprintln(w, "No meanings found.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(w, "\n%s %s -> %s (%d)\n", r.Star, r.Transformation, r.PalaceName, r.PalaceIndex)
		for _, p := range r.Paragraphs {
			fmt.Fprintf(w, "  %s\n", p)
		}
		for _, t := range r.Takeaways {
			fmt.Fprintf(w, "  * %s\n", t)
		}
	}
	return nil
}
