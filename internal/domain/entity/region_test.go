package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageRegionCenter(t *testing.T) {
	r := ImageRegion{Bounds: image.Rect(10, 20, 18, 26)}
	x, y := r.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
}

func TestImageRegionEmpty(t *testing.T) {
	require.True(t, ImageRegion{}.Empty())
	require.True(t, ImageRegion{Image: image.NewRGBA(image.Rect(0, 0, 0, 5))}.Empty())
	require.False(t, ImageRegion{Image: image.NewRGBA(image.Rect(0, 0, 4, 5))}.Empty())
}
