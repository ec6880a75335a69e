// Package simulate projects displacement trajectories forward with a
// geometric random walk: each period multiplies the prior count by
// exp(drift + volatility*eps), eps drawn from a standard normal.
package simulate

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"displacement-forecast/models"
)

// Sampler yields standard normal draws for one simulation path.
type Sampler func() float64

// SamplerFactory builds the sampler for a given path index. It must be
// deterministic in the path index: a parallel implementation then produces
// the same matrix regardless of which path runs first.
type SamplerFactory func(path int) Sampler

// Weyl-style increment keeps per-path seeds well separated.
const pathSeedGamma uint64 = 0x9e3779b97f4a7c15

// GaussianFactory returns a factory of seeded normal samplers, one
// independent generator per path.
func GaussianFactory(seed int64) SamplerFactory {
	return func(path int) Sampler {
		sub := int64(uint64(seed) + uint64(path)*pathSeedGamma)
		rng := rand.New(rand.NewSource(sub))
		return rng.NormFloat64
	}
}

// Engine runs Monte Carlo projections. Construct with New.
type Engine struct {
	paths   int
	horizon int
	factory SamplerFactory
}

// New validates the run dimensions and returns an engine. factory may be
// nil, in which case each run gets a fresh time-derived seed and results
// differ between runs.
func New(paths, horizon int, factory SamplerFactory) (*Engine, error) {
	if paths <= 0 {
		return nil, fmt.Errorf("simulate: %w: path count must be positive, got %d", models.ErrInvalidParameter, paths)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("simulate: %w: horizon must be positive, got %d", models.ErrInvalidParameter, horizon)
	}
	if factory == nil {
		factory = GaussianFactory(time.Now().UnixNano())
	}
	return &Engine{paths: paths, horizon: horizon, factory: factory}, nil
}

// Run projects every path forward from the last observed count. The result
// has one row per path and one column per forecast period; entry [i][0] is
// the first step after start for every path.
//
// Entries are positive by construction (positive start times exponentials).
// If extreme drift or volatility pushes a value outside the finite float64
// range the run aborts with ErrNumericInstability instead of returning a
// matrix polluted with Inf or NaN.
func (e *Engine) Run(start float64, params models.Parameters) (models.SimulationMatrix, error) {
	if start <= 0 {
		return nil, fmt.Errorf("simulate: %w: starting value must be positive, got %v", models.ErrInvalidParameter, start)
	}

	matrix := make(models.SimulationMatrix, e.paths)
	for i := 0; i < e.paths; i++ {
		sample := e.factory(i)
		row := make([]float64, e.horizon)
		value := start
		for t := 0; t < e.horizon; t++ {
			value *= math.Exp(params.Drift + params.Volatility*sample())
			if math.IsInf(value, 0) || math.IsNaN(value) {
				return nil, fmt.Errorf("simulate: %w: non-finite value on path %d at period %d (drift=%v volatility=%v)",
					models.ErrNumericInstability, i, t, params.Drift, params.Volatility)
			}
			row[t] = value
		}
		matrix[i] = row
	}
	return matrix, nil
}
