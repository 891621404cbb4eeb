// SPDX-License-Identifier: EPL-2.0

package audxtract

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job is one input of ExtractAll.
type Job struct {
	// Name identifies the job in errors and logs.
	Name string
	// Format is the container key; empty means detect it from Data.
	Format string
	Data   []byte
}

// Output is the result of one Job. Exactly one of WAV and Err is set.
type Output struct {
	Name string
	WAV  []byte
	Err  error
}

// ExtractAll converts every job with at most limit running at once; a limit
// below one means one. Outputs keep the order of jobs. A failing job does not
// stop the others; the returned error joins every job failure.
func (e *Extractor) ExtractAll(ctx context.Context, jobs []Job, limit int) ([]Output, error) {
	outs := make([]Output, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for i, job := range jobs {
		outs[i].Name = job.Name

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outs[i].Err = err
				return nil
			}

			var err error
			if job.Format == "" {
				outs[i].WAV, err = e.Extract(ctx, job.Data)
			} else {
				outs[i].WAV, err = e.ExtractFormat(ctx, job.Format, job.Data)
			}
			outs[i].Err = err

			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outs {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Name, o.Err))
		}
	}

	return outs, errors.Join(errs...)
}
