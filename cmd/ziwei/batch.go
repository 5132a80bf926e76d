package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ziwei/internal/activation"
	"ziwei/internal/batch"
	"ziwei/internal/view"
)

func batchCmd() *cobra.Command {
	var tag string
	var year, concurrency int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute charts and current decades for every stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			kb, err := loadKnowledgeBase(cfg)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if concurrency == 0 {
				concurrency = cfg.Batch.Concurrency
			}
			result, err := batch.Run(ctx, newEngine(cfg), db, batch.Options{
				Tag:         tag,
				Year:        year,
				Concurrency: concurrency,
				Resolver:    activation.NewResolver(kb, activation.WithLogger(logger)),
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), batchView(result))
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tLIFE\tBUREAU\tDECADE\tACTIVATIONS\tERROR")
			for _, item := range result.Items {
				if item.Err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%v\n", item.Name, item.Err)
					continue
				}
				life := item.Chart.LifePalace()
				decadeCol, acts := "-", "-"
				if item.Cycle != nil {
					p := item.Chart.Palaces[item.Cycle.PalaceIndex]
					decadeCol = fmt.Sprintf("%d-%d %s", item.Cycle.AgeStart, item.Cycle.AgeEnd, p.Name)
					parts := make([]string, 0, len(item.Activations))
					for _, a := range item.Activations {
						parts = append(parts, string(a.Transformation.Key)+"→"+string(a.TargetPalace.Name))
					}
					acts = orDash(strings.Join(parts, " "))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t-\n", item.Name, life.Label(), item.Chart.Bureau, decadeCol, acts)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d profiles failed", result.Failed, len(result.Items))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only process profiles with this tag")
	cmd.Flags().IntVar(&year, "year", 0, "Gregorian year for the current decade (default this year)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Charts computed in parallel (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

type batchItemView struct {
	Name        string            `json:"name"`
	Chart       *view.Chart       `json:"chart,omitempty"`
	Cycle       *view.Cycle       `json:"cycle,omitempty"`
	Activations []view.Activation `json:"activations,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func batchView(result *batch.Result) []batchItemView {
	out := make([]batchItemView, 0, len(result.Items))
	for _, item := range result.Items {
		v := batchItemView{Name: item.Name}
		if item.Err != nil {
			v.Error = item.Err.Error()
		}
		if item.Chart != nil {
			c := view.FromChart(item.Chart)
			c.Name = item.Name
			v.Chart = &c
			if item.Cycle != nil {
				cycle := view.FromCycle(item.Chart, *item.Cycle)
				v.Cycle = &cycle
			}
		}
		v.Activations = view.FromActivations(item.Activations)
		out = append(out, v)
	}
	return out
}
