package models

// SeriesSource produces a cleaned historical series. The core consumes the
// ordered (period, value) sequence only and stays decoupled from the
// concrete tabular format behind it.
type SeriesSource interface {
	LoadSeries() (HistoricalSeries, error)
}
