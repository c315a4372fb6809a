package app

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"agar-mic/internal/domain/entity"
)

func growthConfig(threshold float64) BinaryClassifierConfig {
	return BinaryClassifierConfig{
		Width:     4,
		Height:    4,
		Threshold: threshold,
		Key:       [2]string{"No growth", "Growth"},
	}
}

func TestNewBinaryClassifier_Validation(t *testing.T) {
	p := &fakePredictor{scores: []float32{0.5, 0.5}}

	_, err := NewBinaryClassifier(nil, growthConfig(0.5))
	require.Error(t, err)

	cfg := growthConfig(0.5)
	cfg.Width = 0
	_, err = NewBinaryClassifier(p, cfg)
	require.Error(t, err)

	_, err = NewBinaryClassifier(p, growthConfig(1.5))
	require.Error(t, err)

	cfg = growthConfig(0.5)
	cfg.Key[1] = ""
	_, err = NewBinaryClassifier(p, cfg)
	require.Error(t, err)
}

func TestBinaryClassifier_ThresholdRule(t *testing.T) {
	img := uniformImage(8, 8, color.RGBA{R: 200, G: 180, B: 90, A: 255})

	cases := []struct {
		name      string
		scores    []float32
		threshold float64
		wantIndex int
		wantLabel string
	}{
		{"second above threshold", []float32{0.3, 0.7}, 0.5, 1, "Growth"},
		{"second equals threshold", []float32{0.4, 0.6}, 0.6, 1, "Growth"},
		{"second below threshold", []float32{0.4, 0.6}, 0.65, 0, "No growth"},
		{"argmax disagrees with threshold", []float32{0.6, 0.4}, 0.3, 1, "Growth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewBinaryClassifier(&fakePredictor{scores: tc.scores}, growthConfig(tc.threshold))
			require.NoError(t, err)

			res, err := c.Classify(img)
			require.NoError(t, err)
			require.Equal(t, tc.wantIndex, res.Index)
			require.Equal(t, tc.wantLabel, res.Label)
			require.Equal(t, tc.threshold, res.Threshold)
			require.InDelta(t, float64(tc.scores[tc.wantIndex]), res.Confidence, 1e-6)
		})
	}
}

func TestBinaryClassifier_RaisingThresholdNeverPromotes(t *testing.T) {
	img := uniformImage(6, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	thresholds := []float64{0, 0.1, 0.25, 0.4, 0.5, 0.55, 0.7, 0.9, 1}

	for _, score := range []float32{0, 0.2, 0.5, 0.55, 0.9, 1} {
		prev := 1
		for _, th := range thresholds {
			c, err := NewBinaryClassifier(&fakePredictor{scores: []float32{1 - score, score}}, growthConfig(th))
			require.NoError(t, err)

			res, err := c.Classify(img)
			require.NoError(t, err)
			require.LessOrEqual(t, res.Index, prev, "score %v threshold %v", score, th)
			prev = res.Index
		}
	}
}

func TestBinaryClassifier_SoftmaxOnLogits(t *testing.T) {
	cfg := growthConfig(0.5)
	cfg.Logits = true
	c, err := NewBinaryClassifier(&fakePredictor{scores: []float32{0, 2}}, cfg)
	require.NoError(t, err)

	res, err := c.Classify(uniformImage(3, 3, color.RGBA{A: 255}))
	require.NoError(t, err)
	require.Equal(t, 1, res.Index)
	require.InDelta(t, 1.0, res.Scores[0]+res.Scores[1], 1e-9)
	require.InDelta(t, 0.8808, res.Scores[1], 1e-3)
}

func TestBinaryClassifier_EmptyRegion(t *testing.T) {
	c, err := NewBinaryClassifier(&fakePredictor{scores: []float32{0.5, 0.5}}, growthConfig(0.5))
	require.NoError(t, err)

	_, err = c.Classify(image.NewRGBA(image.Rect(5, 5, 5, 9)))
	require.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = c.Classify(nil)
	require.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestBinaryClassifier_PredictorFailures(t *testing.T) {
	img := uniformImage(4, 4, color.RGBA{A: 255})
	boom := errors.New("session closed")

	c, err := NewBinaryClassifier(&fakePredictor{err: boom}, growthConfig(0.5))
	require.NoError(t, err)
	_, err = c.Classify(img)
	require.ErrorIs(t, err, boom)

	c, err = NewBinaryClassifier(&fakePredictor{scores: []float32{0.1, 0.2, 0.7}}, growthConfig(0.5))
	require.NoError(t, err)
	_, err = c.Classify(img)
	require.Error(t, err)
}

func TestBinaryClassifier_Preprocess(t *testing.T) {
	img := uniformImage(8, 8, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	p := &fakePredictor{scores: []float32{1, 0}}
	cfg := growthConfig(0.5)
	cfg.Width, cfg.Height = 2, 2
	c, err := NewBinaryClassifier(p, cfg)
	require.NoError(t, err)
	_, err = c.Classify(img)
	require.NoError(t, err)

	require.Len(t, p.last, 12)
	require.InDelta(t, 200, p.last[0], 2)
	require.InDelta(t, 100, p.last[1], 2)
	require.InDelta(t, 50, p.last[2], 2)

	cfg.ChannelsFirst = true
	cfg.Scale = 1.0 / 255
	c, err = NewBinaryClassifier(p, cfg)
	require.NoError(t, err)
	_, err = c.Classify(img)
	require.NoError(t, err)

	require.InDelta(t, 200.0/255, p.last[0], 0.01)
	require.InDelta(t, 200.0/255, p.last[3], 0.01)
	require.InDelta(t, 100.0/255, p.last[4], 0.01)
	require.InDelta(t, 50.0/255, p.last[8], 0.01)
}
