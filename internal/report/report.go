// Package report renders a forecast run for people and for machines. The
// core stays pure data; everything presentation-shaped lives here.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"displacement-forecast/internal/trend"
	"displacement-forecast/models"
)

// A crisis probability at or above this marks the period as a likely breach.
const breachThreshold = 0.5

// Report collects everything one run produced.
type Report struct {
	Method        string                  `json:"method"`
	SourceFile    string                  `json:"source_file,omitempty"`
	History       models.HistoricalSeries `json:"history"`
	Parameters    *models.Parameters      `json:"parameters,omitempty"`
	Trend         *trend.Line             `json:"trend,omitempty"`
	Paths         int                     `json:"paths,omitempty"`
	CapacityLimit *float64                `json:"capacity_limit,omitempty"`
	Forecast      models.ForecastSummary  `json:"forecast"`
}

// WriteJSON emits the report as an indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText prints a human-readable summary: the recent history, the
// fitted parameters, the per-period cone, and the first likely breach of
// the capacity limit if one was given.
func (r *Report) WriteText(w io.Writer) {
	fmt.Fprintf(w, "===== DISPLACEMENT FORECAST (%s) =====\n", r.Method)

	fmt.Fprintf(w, "\nHistorical data (%d periods", len(r.History))
	if last, ok := r.History.Last(); ok {
		fmt.Fprintf(w, ", latest %d: %s", last.Period, formatCount(last.Value))
	}
	fmt.Fprintf(w, "):\n")
	for _, obs := range historyTail(r.History, 5) {
		fmt.Fprintf(w, "  %d  %s\n", obs.Period, formatCount(obs.Value))
	}

	if r.Parameters != nil {
		fmt.Fprintf(w, "\nDrift: %+.4f per period, volatility: %.4f (%d paths)\n",
			r.Parameters.Drift, r.Parameters.Volatility, r.Paths)
	}
	if r.Trend != nil {
		fmt.Fprintf(w, "\nLinear trend: %+.1f per period (R²=%.3f)\n", r.Trend.Slope, r.Trend.R2)
	}

	fmt.Fprintf(w, "\n%-8s %14s %14s %14s", "Period", "Mean", "5th pct", "95th pct")
	if r.CapacityLimit != nil {
		fmt.Fprintf(w, " %10s", "P(>limit)")
	}
	fmt.Fprintln(w)
	for _, p := range r.Forecast {
		fmt.Fprintf(w, "%-8d %14s %14s %14s", p.Period, formatCount(p.Mean), formatCount(p.Lower), formatCount(p.Upper))
		if p.CrisisProbability != nil {
			fmt.Fprintf(w, " %9.1f%%", *p.CrisisProbability*100)
		}
		fmt.Fprintln(w)
	}

	if r.CapacityLimit != nil {
		if breach, ok := r.firstBreach(); ok {
			fmt.Fprintf(w, "\nCapacity %s likely exceeded from period %d (probability %.1f%%)\n",
				formatCount(*r.CapacityLimit), breach.Period, *breach.CrisisProbability*100)
		} else {
			fmt.Fprintf(w, "\nCapacity %s unlikely to be exceeded within the horizon\n", formatCount(*r.CapacityLimit))
		}
	}
}

// firstBreach returns the earliest period whose crisis probability reaches
// the breach threshold.
func (r *Report) firstBreach() (models.PeriodForecast, bool) {
	for _, p := range r.Forecast {
		if p.CrisisProbability != nil && *p.CrisisProbability >= breachThreshold {
			return p, true
		}
	}
	return models.PeriodForecast{}, false
}

func historyTail(series models.HistoricalSeries, n int) models.HistoricalSeries {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

// formatCount renders population counts with the scale people actually
// talk in: millions above 1M, otherwise whole people.
func formatCount(v float64) string {
	if v >= 1e6 || v <= -1e6 {
		return fmt.Sprintf("%.2fM", v/1e6)
	}
	return fmt.Sprintf("%.0f", v)
}
