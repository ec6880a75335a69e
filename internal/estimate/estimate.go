// Package estimate derives the drift and volatility of a displacement
// series from its log-returns.
package estimate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"

	"displacement-forecast/models"
)

// Parameters estimates drift (mean log-return) and volatility (sample
// standard deviation of log-returns, N-1 denominator) from the series.
//
// Log-returns are only defined for pairs of positive counts. Pairs where
// either endpoint is zero or negative are skipped with a warning rather
// than failing the whole run; real displacement extracts routinely report
// zeros in early years. If skipping leaves no usable return, the estimate
// fails with ErrInsufficientData.
func Parameters(series models.HistoricalSeries) (models.Parameters, error) {
	if err := series.Validate(); err != nil {
		return models.Parameters{}, fmt.Errorf("estimate: %w", err)
	}
	if len(series) < 2 {
		return models.Parameters{}, fmt.Errorf("estimate: %w: need at least 2 observations, got %d", models.ErrInsufficientData, len(series))
	}

	returns := LogReturns(series)
	if len(returns) == 0 {
		return models.Parameters{}, fmt.Errorf("estimate: %w: no consecutive pair of positive values", models.ErrInsufficientData)
	}

	drift, err := stats.Mean(returns)
	if err != nil {
		return models.Parameters{}, fmt.Errorf("estimate: mean of log-returns: %w", err)
	}

	// Sample standard deviation needs at least two returns; a single
	// return gives zero volatility, which downstream handles as a
	// deterministic walk.
	volatility := 0.0
	if len(returns) >= 2 {
		volatility, err = stats.StandardDeviationSample(returns)
		if err != nil {
			return models.Parameters{}, fmt.Errorf("estimate: stddev of log-returns: %w", err)
		}
	}

	return models.Parameters{Drift: drift, Volatility: volatility}, nil
}

// LogReturns computes ln(v_t / v_{t-1}) for every consecutive pair of
// positive values, skipping pairs that touch a non-positive count.
func LogReturns(series models.HistoricalSeries) []float64 {
	returns := make([]float64, 0, len(series))
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1].Value, series[i].Value
		if prev <= 0 || cur <= 0 {
			log.Warn().
				Int("period", series[i].Period).
				Float64("previous", prev).
				Float64("current", cur).
				Msg("skipping non-positive pair, log-return undefined")
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	return returns
}
