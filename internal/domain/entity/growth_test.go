package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrowthLabelOrder(t *testing.T) {
	require.Less(t, NoGrowth, PoorGrowth)
	require.Less(t, PoorGrowth, GoodGrowth)
}

func TestParseGrowthLabel(t *testing.T) {
	cases := map[string]GrowthLabel{
		"no_growth":   NoGrowth,
		"No growth":   NoGrowth,
		"poor-growth": PoorGrowth,
		" Good Growth": GoodGrowth,
	}
	for in, want := range cases {
		got, err := ParseGrowthLabel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseGrowthLabel("maybe")
	require.Error(t, err)
}

func TestGrowthLabelText(t *testing.T) {
	var l GrowthLabel
	require.NoError(t, l.UnmarshalText([]byte("poor_growth")))
	require.Equal(t, PoorGrowth, l)

	text, err := GoodGrowth.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "good_growth", string(text))

	_, err = GrowthLabel(7).MarshalText()
	require.Error(t, err)
}
