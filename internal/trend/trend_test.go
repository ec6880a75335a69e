package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"displacement-forecast/models"
)

func TestFitPerfectLine(t *testing.T) {
	series := models.HistoricalSeries{
		{Period: 2000, Value: 100},
		{Period: 2001, Value: 110},
		{Period: 2002, Value: 120},
		{Period: 2003, Value: 130},
	}

	line, err := Fit(series)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, line.Slope, 1e-9)
	assert.InDelta(t, 100.0-10.0*2000, line.Intercept, 1e-6)
	assert.InDelta(t, 1.0, line.R2, 1e-12)
	assert.InDelta(t, 150.0, line.At(2005), 1e-6)
}

func TestFitFlatSeries(t *testing.T) {
	series := models.HistoricalSeries{
		{Period: 2000, Value: 500},
		{Period: 2001, Value: 500},
		{Period: 2002, Value: 500},
	}

	line, err := Fit(series)
	require.NoError(t, err)
	assert.Zero(t, line.Slope)
	assert.InDelta(t, 500.0, line.At(2010), 1e-9)
}

func TestFitInsufficientData(t *testing.T) {
	_, err := Fit(models.HistoricalSeries{{Period: 2020, Value: 100}})
	require.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestProject(t *testing.T) {
	line := Line{Slope: 10, Intercept: -19900} // value 100 at period 2000

	limit := 135.0
	summary, err := line.Project(2002, 3, &limit)
	require.NoError(t, err)
	require.Len(t, summary, 3)

	wantValues := []float64{130, 140, 150}
	wantProbs := []float64{0, 1, 1}
	for i, p := range summary {
		assert.Equal(t, 2003+i, p.Period)
		assert.InDelta(t, wantValues[i], p.Mean, 1e-9)
		assert.Equal(t, p.Mean, p.Lower)
		assert.Equal(t, p.Mean, p.Upper)
		require.NotNil(t, p.CrisisProbability)
		assert.Equal(t, wantProbs[i], *p.CrisisProbability)
	}
}

func TestProjectValidation(t *testing.T) {
	line := Line{Slope: 1}

	_, err := line.Project(2020, 0, nil)
	require.ErrorIs(t, err, models.ErrInvalidParameter)

	limit := -5.0
	_, err = line.Project(2020, 3, &limit)
	require.ErrorIs(t, err, models.ErrInvalidParameter)
}
