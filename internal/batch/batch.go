// Package batch computes charts for every stored profile concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ziwei/internal/activation"
	"ziwei/internal/chart"
	"ziwei/internal/decade"
	"ziwei/internal/metrics"
	"ziwei/internal/profile"
	"ziwei/internal/store"
)

const DefaultConcurrency = 4

type ProfileSource interface {
	ListProfiles(ctx context.Context, tag string) ([]store.ProfileSummary, error)
	GetProfile(ctx context.Context, name string) (*store.Profile, error)
}

type Options struct {
	Tag         string
	Year        int
	Concurrency int
	// Resolver is optional; without it no activations are resolved.
	Resolver *activation.Resolver
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// Item is the outcome for one profile. Err is set when the chart failed;
// Cycle and Activations are empty when no decade covers Year.
type Item struct {
	Name        string
	Chart       *chart.Chart
	Cycle       *decade.Cycle
	Activations []activation.Result
	Err         error
}

type Result struct {
	Items  []Item
	Failed int
}

// Run loads every profile matching opts.Tag and computes its chart, current
// decade and activations. Per-profile failures are reported in the items;
// only store errors and cancellation stop the run. Items keep list order.
func Run(ctx context.Context, engine *chart.Engine, db ProfileSource, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}

	summaries, err := db.ListProfiles(ctx, opts.Tag)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	items := make([]Item, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, summary := range summaries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := db.GetProfile(gctx, summary.Name)
			if errors.Is(err, store.ErrNotFound) {
				items[i] = Item{Name: summary.Name, Err: err}
				return nil
			}
			if err != nil {
				return fmt.Errorf("get profile %s: %w", summary.Name, err)
			}
			items[i] = compute(engine, p, year, opts)
			if items[i].Err != nil {
				logger.Warn("chart failed", zap.String("profile", p.Name), zap.Error(items[i].Err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Items: items}
	for _, item := range items {
		if item.Err != nil {
			result.Failed++
		}
	}
	logger.Info("batch complete",
		zap.Int("profiles", len(items)),
		zap.Int("failed", result.Failed),
		zap.Int("year", year))
	return result, nil
}

func compute(engine *chart.Engine, p *store.Profile, year int, opts Options) Item {
	item := Item{Name: p.Name}

	start := time.Now()
	c, err := profile.Chart(engine, p.Birth)
	opts.Metrics.ObserveChart("batch", start, err)
	if err != nil {
		item.Err = err
		return item
	}
	item.Chart = c

	cycle, ok, err := decade.CurrentCycle(c, year)
	if err != nil {
		item.Err = err
		return item
	}
	if !ok {
		return item
	}
	item.Cycle = &cycle

	if opts.Resolver != nil {
		item.Activations, err = opts.Resolver.CycleActivations(c, cycle.PalaceIndex)
		if err != nil {
			item.Err = err
		}
	}
	return item
}
