package models

import (
	"fmt"
)

// Observation is a single point of the historical series: a period
// identifier (typically a year) and the displaced-population count
// recorded for it.
type Observation struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// HistoricalSeries is an ordered sequence of observations, sorted by
// period. Produced by the data loader; immutable once built.
type HistoricalSeries []Observation

// Validate checks the series invariants: strictly increasing periods and
// non-negative values.
func (s HistoricalSeries) Validate() error {
	for i, obs := range s {
		if obs.Value < 0 {
			return fmt.Errorf("%w: negative value %.2f at period %d", ErrInvalidParameter, obs.Value, obs.Period)
		}
		if i > 0 && obs.Period <= s[i-1].Period {
			return fmt.Errorf("%w: periods not strictly increasing at index %d (%d after %d)", ErrInvalidParameter, i, obs.Period, s[i-1].Period)
		}
	}
	return nil
}

// Last returns the most recent observation. ok is false for an empty series.
func (s HistoricalSeries) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Values returns the counts in period order.
func (s HistoricalSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, obs := range s {
		out[i] = obs.Value
	}
	return out
}

// Parameters holds the estimated drift (mean log-return) and volatility
// (sample standard deviation of log-returns) of the historical series.
type Parameters struct {
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
}

// SimulationMatrix is the output of one simulation run: one row per
// simulated path, one column per forecast period. Every row starts from
// the same last observed value. Read-only after the run.
type SimulationMatrix [][]float64

// Paths returns the number of simulated trajectories.
func (m SimulationMatrix) Paths() int { return len(m) }

// Horizon returns the number of forecast periods, 0 for an empty matrix.
func (m SimulationMatrix) Horizon() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// PeriodForecast summarizes all simulated values at one forecast period.
// CrisisProbability is nil when no capacity limit was supplied.
type PeriodForecast struct {
	Period            int      `json:"period"`
	Mean              float64  `json:"mean"`
	Lower             float64  `json:"lower"`
	Upper             float64  `json:"upper"`
	CrisisProbability *float64 `json:"crisis_probability,omitempty"`
}

// ForecastSummary is the per-period forecast, in period order.
type ForecastSummary []PeriodForecast
