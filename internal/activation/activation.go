// Package activation resolves which palaces a decade cycle's four
// transformations land in and attaches their meaning text.
package activation

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ziwei/internal/chart"
	"ziwei/internal/meaning"
)

// MaxResults bounds the output of CycleActivations.
const MaxResults = len(chart.TransformationKeys)

var ErrInvalidPalace = errors.New("invalid decade palace index")

// Meanings looks up meaning text. A miss must wrap meaning.ErrLookupMiss.
type Meanings interface {
	Lookup(key chart.TransformationKey, palace chart.PalaceName) (meaning.Entry, error)
}

type TargetPalace struct {
	Index int
	Name  chart.PalaceName
}

type Result struct {
	Transformation    chart.Transformation
	TargetPalace      TargetPalace
	MeaningParagraphs []string
	KeyTakeaways      []string
}

type Resolver struct {
	meanings Meanings
	logger   *zap.Logger
}

type Option func(*Resolver)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(meanings Meanings, opts ...Option) *Resolver {
	r := &Resolver{meanings: meanings, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CycleActivations maps the stem of the palace at palaceIndex to its four
// transformations, finds the palace holding each transformed star and looks
// up the meaning for that palace. Pairs with no meaning text are left out.
// Results keep the order 禄 权 科 忌.
func (r *Resolver) CycleActivations(c *chart.Chart, palaceIndex int) ([]Result, error) {
	if palaceIndex < 0 || palaceIndex >= chart.PalaceCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPalace, palaceIndex)
	}
	source := &c.Palaces[palaceIndex]

	transformations, err := chart.TransformationsForStem(source.Stem)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, MaxResults)
	for _, tr := range transformations {
		target, ok := c.FindStar(tr.StarName)
		if !ok {
			r.logger.Debug("transformed star not in chart",
				zap.String("transformation", tr.Key.Label()),
				zap.String("star", tr.StarName))
			continue
		}

		entry, err := r.meanings.Lookup(tr.Key, target.Name)
		if errors.Is(err, meaning.ErrLookupMiss) {
			r.logger.Debug("meaning lookup miss",
				zap.String("transformation", tr.Key.Label()),
				zap.String("palace", string(target.Name)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("looking up %s in %s: %w", tr.Key.Label(), target.Name, err)
		}

		results = append(results, Result{
			Transformation:    tr,
			TargetPalace:      TargetPalace{Index: target.Index, Name: target.Name},
			MeaningParagraphs: entry.Paragraphs,
			KeyTakeaways:      entry.Takeaways,
		})
		if len(results) == MaxResults {
			break
		}
	}
	return results, nil
}
