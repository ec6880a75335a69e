package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"displacement-forecast/config"
	"displacement-forecast/internal/aggregate"
	"displacement-forecast/internal/estimate"
	"displacement-forecast/internal/loader"
	"displacement-forecast/internal/report"
	"displacement-forecast/internal/simulate"
	"displacement-forecast/internal/trend"
	"displacement-forecast/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	source := loader.NewCSV(cfg.InputFile, cfg.TargetColumn)
	if err := run(cfg, source, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("forecast failed")
	}
}

// run executes the full pipeline: load, estimate, project, aggregate,
// render. Any stage failure aborts the run; there is no partial output.
func run(cfg *config.Config, source models.SeriesSource, w io.Writer) error {
	// 1) Load and clean the historical series
	series, err := source.LoadSeries()
	if err != nil {
		return err
	}
	log.Info().Int("periods", len(series)).Str("file", cfg.InputFile).Msg("loaded historical series")

	var limit *float64
	if cfg.HasLimit {
		limit = &cfg.CapacityLimit
	}

	out := &report.Report{
		Method:        cfg.Method,
		SourceFile:    cfg.InputFile,
		History:       series,
		CapacityLimit: limit,
	}

	last, ok := series.Last()
	if !ok {
		return fmt.Errorf("%w: empty series", models.ErrInsufficientData)
	}

	switch cfg.Method {
	case config.MethodLinear:
		// 2) Fit the regression baseline and extend it
		line, err := trend.Fit(series)
		if err != nil {
			return err
		}
		log.Info().Float64("slope", line.Slope).Float64("r2", line.R2).Msg("fitted linear trend")

		out.Trend = &line
		out.Forecast, err = line.Project(last.Period, cfg.Horizon, limit)
		if err != nil {
			return err
		}

	default:
		// 2) Estimate drift and volatility from log-returns
		params, err := estimate.Parameters(series)
		if err != nil {
			return err
		}
		log.Info().Float64("drift", params.Drift).Float64("volatility", params.Volatility).Msg("estimated parameters")

		// 3) Simulate forward trajectories
		var factory simulate.SamplerFactory
		if cfg.HasSeed {
			factory = simulate.GaussianFactory(cfg.Seed)
		}
		engine, err := simulate.New(cfg.PathCount, cfg.Horizon, factory)
		if err != nil {
			return err
		}
		matrix, err := engine.Run(last.Value, params)
		if err != nil {
			return err
		}

		// 4) Aggregate into the forecast cone
		out.Parameters = &params
		out.Paths = cfg.PathCount
		out.Forecast, err = aggregate.Summarize(matrix, last.Period+1, limit)
		if err != nil {
			return err
		}
	}

	// 5) Render
	if cfg.Output == "json" {
		return out.WriteJSON(w)
	}
	out.WriteText(w)
	return nil
}
