package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMICResultString(t *testing.T) {
	rng := ConcentrationRange{Min: 0.125, Max: 64}

	require.Equal(t, "2", MICResult{Outcome: MICDetermined, MIC: 2, Range: rng}.String())
	require.Equal(t, "<=0.125", MICResult{Outcome: MICBelowRange, MIC: 0.125, Range: rng}.String())
	require.Equal(t, ">64", MICResult{Outcome: MICAboveRange, MIC: 64, Range: rng}.String())
}

func TestMICResultDetermined(t *testing.T) {
	require.True(t, MICResult{Outcome: MICDetermined}.Determined())
	require.False(t, MICResult{Outcome: MICBelowRange}.Determined())
	require.False(t, MICResult{Outcome: MICAboveRange}.Determined())
}
