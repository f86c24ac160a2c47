package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/metrics"
	"github.com/san-kum/cvsim/internal/sim"
)

// GridSearch calibrates parameters by running every combination of the
// candidate values and keeping the one whose metric lands closest to a
// target.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Error  float64
}

func NewGridSearch(params []string, ranges [][]float64, workers int) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid needs one value list per parameter, got %d for %d", len(ranges), len(params))
	}
	for i, name := range params {
		if _, err := cardio.ParseParam(name); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%s: no candidate values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: workers}, nil
}

// Points enumerates the grid, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var points []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*points = append(*points, point)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.searchRecursive(depth+1, current, points)
	}
	delete(current, paramName)
}

// Search runs the grid on top of base and returns the trial whose metric is
// closest to target, together with every trial in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, registry *experiment.Registry, metricName string, target float64, log logrus.FieldLogger) (Trial, []Trial, error) {
	points := g.Points()
	jobs := make([]sim.Job, len(points))
	for i, point := range points {
		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(point))
		}
		for k, v := range point {
			cfg.Params[k] = v
		}
		exp, err := experiment.New(cfg, registry, nil)
		if err != nil {
			return Trial{}, nil, fmt.Errorf("grid point %v: %w", point, err)
		}
		jobs[i] = exp.Job(fmt.Sprintf("grid_%d", i))
	}

	runs, err := sim.NewEnsemble(g.workers, metrics.Hemodynamics, log).Run(ctx, jobs)
	if err != nil {
		return Trial{}, nil, err
	}

	best := Trial{Error: math.Inf(1)}
	trials := make([]Trial, len(runs))
	for i, run := range runs {
		val, ok := run.Metrics[metricName]
		if !ok {
			return Trial{}, nil, fmt.Errorf("unknown metric: %s", metricName)
		}
		trials[i] = Trial{Params: points[i], Value: val, Error: math.Abs(val - target)}
		if trials[i].Error < best.Error {
			best = trials[i]
		}
	}
	return best, trials, nil
}
