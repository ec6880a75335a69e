// Package aggregate reduces a simulation matrix to a per-period forecast:
// mean, 90% confidence cone, and the probability of exceeding a capacity
// limit.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"displacement-forecast/models"
)

// Percentile bounds of the forecast cone.
const (
	lowerPercentile = 5
	upperPercentile = 95
)

// Summarize reduces the matrix column by column. limit is the optional
// capacity threshold; when nil, crisis probabilities are omitted. The
// first forecast period is numbered firstPeriod.
//
// The matrix is assumed already validated by the engine; only structural
// problems (empty or ragged rows) are rejected here.
func Summarize(matrix models.SimulationMatrix, firstPeriod int, limit *float64) (models.ForecastSummary, error) {
	if matrix.Paths() == 0 || matrix.Horizon() == 0 {
		return nil, fmt.Errorf("aggregate: empty simulation matrix")
	}
	horizon := matrix.Horizon()
	for i, row := range matrix {
		if len(row) != horizon {
			return nil, fmt.Errorf("aggregate: ragged matrix, row %d has %d periods, want %d", i, len(row), horizon)
		}
	}
	if limit != nil && *limit < 0 {
		return nil, fmt.Errorf("aggregate: %w: capacity limit must be non-negative, got %v", models.ErrInvalidParameter, *limit)
	}

	summary := make(models.ForecastSummary, horizon)
	column := make([]float64, matrix.Paths())
	for j := 0; j < horizon; j++ {
		exceeding := 0
		for i, row := range matrix {
			column[i] = row[j]
			if limit != nil && row[j] > *limit {
				exceeding++
			}
		}

		mean, err := stats.Mean(column)
		if err != nil {
			return nil, fmt.Errorf("aggregate: mean at period %d: %w", j, err)
		}

		record := models.PeriodForecast{
			Period: firstPeriod + j,
			Mean:   mean,
			Lower:  percentile(column, lowerPercentile),
			Upper:  percentile(column, upperPercentile),
		}
		if limit != nil {
			p := float64(exceeding) / float64(matrix.Paths())
			record.CrisisProbability = &p
		}
		summary[j] = record
	}
	return summary, nil
}

// percentile linearly interpolates between order statistics (the numpy
// default), which is what defines the cone here; stats.Percentile uses
// nearest-rank and would step instead of interpolating. With a single
// sample the bounds collapse to that value.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
