package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"displacement-forecast/config"
	"displacement-forecast/internal/loader"
	"displacement-forecast/models"
)

const fixtureCSV = `UNHCR data extract

Year,Country of asylum,Refugees under UNHCR mandate
2019,Kenya,1000
2020,Kenya,1050
2021,Kenya,1100
2022,Kenya,1155
`

type decodedReport struct {
	Method     string                  `json:"method"`
	Parameters *models.Parameters      `json:"parameters"`
	Forecast   models.ForecastSummary  `json:"forecast"`
	History    models.HistoricalSeries `json:"history"`
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "persons_of_concern.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o644))
	return path
}

func runPipeline(t *testing.T, cfg *config.Config) decodedReport {
	t.Helper()
	var buf bytes.Buffer
	source := loader.NewCSV(cfg.InputFile, cfg.TargetColumn)
	require.NoError(t, run(cfg, source, &buf))

	var decoded decodedReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	return decoded
}

func TestRunMonteCarloEndToEnd(t *testing.T) {
	cfg := &config.Config{
		InputFile:     writeFixture(t),
		Method:        config.MethodMonteCarlo,
		PathCount:     500,
		Horizon:       3,
		Seed:          42,
		HasSeed:       true,
		CapacityLimit: 1.2e3,
		HasLimit:      true,
		Output:        "json",
	}

	decoded := runPipeline(t, cfg)
	require.NotNil(t, decoded.Parameters)
	require.Len(t, decoded.Forecast, 3)

	// Drift estimated from the ~5% growth fixture.
	wantDrift := (math.Log(1050.0/1000) + math.Log(1100.0/1050) + math.Log(1155.0/1100)) / 3
	assert.InDelta(t, wantDrift, decoded.Parameters.Drift, 1e-12)

	// The volatility of this fixture is tiny, so the simulated mean at
	// each horizon must sit close to the deterministic drift expectation.
	last := 1155.0
	for i, p := range decoded.Forecast {
		assert.Equal(t, 2023+i, p.Period)
		want := last * math.Exp(wantDrift*float64(i+1))
		assert.InEpsilon(t, want, p.Mean, 0.01, "period %d", p.Period)
		assert.LessOrEqual(t, p.Lower, p.Mean)
		assert.LessOrEqual(t, p.Mean, p.Upper)
		require.NotNil(t, p.CrisisProbability)
	}

	// Growth from 1155 clears the 1200 cap within the horizon.
	assert.Equal(t, 1.0, *decoded.Forecast[2].CrisisProbability)
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	cfg := &config.Config{
		InputFile: writeFixture(t),
		Method:    config.MethodMonteCarlo,
		PathCount: 200,
		Horizon:   6,
		Seed:      42,
		HasSeed:   true,
		Output:    "json",
	}

	first := runPipeline(t, cfg)
	second := runPipeline(t, cfg)
	assert.Equal(t, first, second)
}

func TestRunLinearEndToEnd(t *testing.T) {
	cfg := &config.Config{
		InputFile:     writeFixture(t),
		Method:        config.MethodLinear,
		Horizon:       3,
		CapacityLimit: 1200,
		HasLimit:      true,
		Output:        "json",
	}

	decoded := runPipeline(t, cfg)
	require.Len(t, decoded.Forecast, 3)

	// OLS over the fixture gives slope 51.5 and 1205 at 2023.
	first := decoded.Forecast[0]
	assert.Equal(t, 2023, first.Period)
	assert.InDelta(t, 1205.0, first.Mean, 1e-6)
	require.NotNil(t, first.CrisisProbability)
	assert.Equal(t, 1.0, *first.CrisisProbability)
}

func TestRunTextOutput(t *testing.T) {
	cfg := &config.Config{
		InputFile: writeFixture(t),
		Method:    config.MethodMonteCarlo,
		PathCount: 50,
		Horizon:   2,
		Seed:      1,
		HasSeed:   true,
		Output:    "text",
	}

	var buf bytes.Buffer
	source := loader.NewCSV(cfg.InputFile, cfg.TargetColumn)
	require.NoError(t, run(cfg, source, &buf))
	assert.Contains(t, buf.String(), "DISPLACEMENT FORECAST (montecarlo)")
}

func TestRunFailsOnShortSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(path, []byte("Year,Country,Refugees\n2022,Kenya,100\n"), 0o644))

	cfg := &config.Config{
		InputFile: path,
		Method:    config.MethodMonteCarlo,
		PathCount: 10,
		Horizon:   2,
		Output:    "text",
	}

	var buf bytes.Buffer
	err := run(cfg, loader.NewCSV(path, ""), &buf)
	require.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Zero(t, buf.Len(), "no partial output on failure")
}
