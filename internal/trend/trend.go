// Package trend fits an ordinary least squares line to the historical
// series and projects it forward. It is the deterministic baseline next to
// the Monte Carlo engine.
package trend

import (
	"fmt"

	"displacement-forecast/models"
)

// Line is a fitted value = Intercept + Slope*period regression with its
// coefficient of determination.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

// Fit performs OLS of value on period.
func Fit(series models.HistoricalSeries) (Line, error) {
	if err := series.Validate(); err != nil {
		return Line{}, fmt.Errorf("trend: %w", err)
	}
	if len(series) < 2 {
		return Line{}, fmt.Errorf("trend: %w: need at least 2 observations, got %d", models.ErrInsufficientData, len(series))
	}

	n := float64(len(series))
	var sumX, sumY float64
	for _, obs := range series {
		sumX += float64(obs.Period)
		sumY += obs.Value
	}
	meanX, meanY := sumX/n, sumY/n

	var covXY, varX, varY float64
	for _, obs := range series {
		dx := float64(obs.Period) - meanX
		dy := obs.Value - meanY
		covXY += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 {
		return Line{}, fmt.Errorf("trend: %w: all observations share one period", models.ErrInvalidParameter)
	}

	slope := covXY / varX
	line := Line{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
	}
	if varY > 0 {
		line.R2 = (covXY * covXY) / (varX * varY)
	} else {
		// Flat series: the fit is exact.
		line.R2 = 1
	}
	return line, nil
}

// At evaluates the fitted line at a period.
func (l Line) At(period int) float64 {
	return l.Intercept + l.Slope*float64(period)
}

// Project extends the line horizon periods past lastPeriod. A point
// forecast has no spread, so the cone collapses onto the mean and the
// crisis probability, when a limit is given, is 0 or 1.
func (l Line) Project(lastPeriod, horizon int, limit *float64) (models.ForecastSummary, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("trend: %w: horizon must be positive, got %d", models.ErrInvalidParameter, horizon)
	}
	if limit != nil && *limit < 0 {
		return nil, fmt.Errorf("trend: %w: capacity limit must be non-negative, got %v", models.ErrInvalidParameter, *limit)
	}

	summary := make(models.ForecastSummary, horizon)
	for t := 1; t <= horizon; t++ {
		period := lastPeriod + t
		value := l.At(period)
		record := models.PeriodForecast{
			Period: period,
			Mean:   value,
			Lower:  value,
			Upper:  value,
		}
		if limit != nil {
			p := 0.0
			if value > *limit {
				p = 1.0
			}
			record.CrisisProbability = &p
		}
		summary[t-1] = record
	}
	return summary, nil
}
