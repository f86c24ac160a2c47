package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cvsim/internal/cardio"
)

// Job is one independent run of an ensemble.
type Job struct {
	Name    string
	Params  cardio.Params
	Config  Config
	Options []cardio.Option
}

// Ensemble runs independent engines concurrently. Engines never share state;
// each job builds its own engine and metrics.
type Ensemble struct {
	limit   int
	metrics func() []Metric
	log     logrus.FieldLogger
}

// NewEnsemble runs at most limit jobs at a time; limit <= 0 means no limit.
// metrics builds a fresh metric set for every job.
func NewEnsemble(limit int, metrics func() []Metric, log logrus.FieldLogger) *Ensemble {
	return &Ensemble{limit: limit, metrics: metrics, log: log}
}

// Run returns one result per job in job order. The first failure cancels the
// remaining jobs.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			opts := job.Options
			if e.log != nil {
				opts = append(opts[:len(opts):len(opts)], cardio.WithLogger(e.log.WithField("job", job.Name)))
			}
			s := New(cardio.New(job.Params, opts...), e.log)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, job.Config)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
