package tsgen

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reloquent/modelts/internal/model"
)

// DefaultWorkers bounds concurrent model transforms when Runner.Workers is unset.
const DefaultWorkers = 4

// Runner transforms every marked model in the registry.
type Runner struct {
	Generator *Generator
	Workers   int
}

// Run transforms all marked model classes concurrently. Results are ordered
// by class name regardless of completion order; marked classes that are not
// models are skipped. The first error cancels the remaining work.
func (r *Runner) Run(ctx context.Context) ([]*TransformedType, error) {
	var models []*model.Class
	for _, c := range r.Generator.Registry.Marked() {
		if c.Kind == model.KindModel {
			models = append(models, c)
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]*TransformedType, len(models))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, c := range models {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tt, err := r.Generator.Transform(ctx, c.Name, "")
			if err != nil {
				return err
			}
			results[i] = tt
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, tt := range results {
		if tt != nil {
			out = append(out, tt)
		}
	}
	r.Generator.Logger.Info("generated model types", "count", len(out))
	return out, nil
}
