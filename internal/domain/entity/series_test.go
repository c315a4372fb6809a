package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustPlate(t *testing.T, drug string, conc float64, labels ...GrowthLabel) *Plate {
	t.Helper()
	p, err := NewPlate(drug, conc, "", verdicts(labels...))
	require.NoError(t, err)
	return p
}

func TestSeriesFromPlates_SortsByConcentration(t *testing.T) {
	s, err := SeriesFromPlates(
		mustPlate(t, "ceftazidime", 4, NoGrowth),
		mustPlate(t, "ceftazidime", 0, GoodGrowth),
		mustPlate(t, "ceftazidime", 1, GoodGrowth),
	)
	require.NoError(t, err)
	require.Equal(t, "ceftazidime", s.Drug())
	require.Equal(t, []float64{0, 1, 4}, s.Concentrations())
	require.Equal(t, ConcentrationRange{Min: 0, Max: 4}, s.Range())
	require.Empty(t, s.Missing())
}

func TestSeriesFromPlates_RejectsDuplicates(t *testing.T) {
	_, err := SeriesFromPlates(
		mustPlate(t, "ceftazidime", 1, NoGrowth),
		mustPlate(t, "ceftazidime", 1, GoodGrowth),
	)
	require.ErrorIs(t, err, ErrDuplicateConcentration)
}

func TestSeriesFromPlates_RejectsMixedDrugs(t *testing.T) {
	_, err := SeriesFromPlates(
		mustPlate(t, "ceftazidime", 1, NoGrowth),
		mustPlate(t, "meropenem", 2, GoodGrowth),
	)
	require.ErrorIs(t, err, ErrMixedDrugs)
}

func TestNewConcentrationSeries_KeepsGaps(t *testing.T) {
	decodeErr := errors.New("corrupt")
	s, err := NewConcentrationSeries("ceftazidime", []SeriesEntry{
		{Plate: mustPlate(t, "ceftazidime", 0, GoodGrowth)},
		{Concentration: 2, Source: "2.jpg", Err: decodeErr},
	})
	require.NoError(t, err)

	missing := s.Missing()
	require.Len(t, missing, 1)
	require.Equal(t, 2.0, missing[0].Concentration)
	require.ErrorIs(t, missing[0].Err, decodeErr)
}

func TestNewConcentrationSeries_Empty(t *testing.T) {
	_, err := NewConcentrationSeries("ceftazidime", nil)
	require.ErrorIs(t, err, ErrEmptySeries)
}
