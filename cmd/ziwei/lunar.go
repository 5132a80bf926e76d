package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ziwei/internal/lunar"
	"ziwei/internal/profile"
	"ziwei/internal/view"
)

func lunarCmd() *cobra.Command {
	var from string
	var leap, asJSON bool
	cmd := &cobra.Command{
		Use:   "lunar <YYYY-MM-DD>",
		Short: "Convert a date between the Gregorian and lunar calendars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, day, err := profile.ParseDate(args[0])
			if err != nil {
				return err
			}

			var out view.LunarDate
			switch strings.ToLower(from) {
			case "solar":
				if leap {
					return fmt.Errorf("--leap needs --from lunar")
				}
				ld, err := lunar.SolarToLunar(year, month, day)
				if err != nil {
					return err
				}
				out = view.FromLunar(lunar.Solar{Year: year, Month: month, Day: day}, ld)
			case "lunar":
				solar, err := lunar.LunarToSolar(year, month, day, leap)
				if err != nil {
					return err
				}
				out = view.FromLunar(solar, lunar.Date{Year: year, Month: month, Day: day, IsLeapMonth: leap})
			default:
				return fmt.Errorf("--from must be solar or lunar")
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "solar %s  lunar %s  %s (%s)\n", out.Solar, out.Lunar, out.YearStemBranch, out.Zodiac)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "solar", "Calendar of the given date: solar or lunar")
	cmd.Flags().BoolVar(&leap, "leap", false, "Lunar date falls in the leap month")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
