package onnx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelSpec_Validate(t *testing.T) {
	cases := []struct {
		name string
		spec ModelSpec
		ok   bool
	}{
		{"valid", ModelSpec{Path: "m.onnx", InputShape: []int64{1, 160, 160, 3}, OutputShape: []int64{1, 2}}, true},
		{"no path", ModelSpec{InputShape: []int64{1}, OutputShape: []int64{2}}, false},
		{"no input shape", ModelSpec{Path: "m.onnx", OutputShape: []int64{1, 2}}, false},
		{"zero dim", ModelSpec{Path: "m.onnx", InputShape: []int64{1, 0, 160, 3}, OutputShape: []int64{1, 2}}, false},
		{"negative dim", ModelSpec{Path: "m.onnx", InputShape: []int64{1}, OutputShape: []int64{-1, 2}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestPredictor_ClosedIsError(t *testing.T) {
	p := &Predictor{path: "m.onnx"}
	_, err := p.Predict([]float32{1})
	require.Error(t, err)
	p.Close()
}
