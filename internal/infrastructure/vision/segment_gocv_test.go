//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"agar-mic/internal/domain/entity"
)

func syntheticPlate(w, h int, blobs []image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	for _, b := range blobs {
		draw.Draw(img, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	}
	return img
}

func TestContourSegmenter_FindsColoniesInRasterOrder(t *testing.T) {
	blobs := []image.Rectangle{
		image.Rect(250, 40, 280, 70), image.Rect(40, 42, 70, 72), image.Rect(150, 38, 180, 68),
		image.Rect(150, 160, 180, 190), image.Rect(250, 158, 280, 188), image.Rect(40, 162, 70, 192),
	}
	s, err := NewContourSegmenter(DefaultSegmenterParams())
	require.NoError(t, err)

	regions, err := s.Segment(context.Background(), syntheticPlate(400, 300, blobs))
	require.NoError(t, err)
	require.Len(t, regions, 6)

	wantX := []int{40, 150, 250, 40, 150, 250}
	for i, r := range regions {
		require.Equal(t, i, r.Index)
		require.InDelta(t, wantX[i], r.Bounds.Min.X, 3)
		require.False(t, r.Empty())
		require.Greater(t, r.Area, 600)
	}
	require.Less(t, regions[0].Bounds.Min.Y, 100)
	require.Greater(t, regions[3].Bounds.Min.Y, 100)
}

func TestContourSegmenter_IsDeterministic(t *testing.T) {
	blobs := []image.Rectangle{image.Rect(20, 20, 50, 50), image.Rect(100, 25, 130, 55), image.Rect(60, 120, 90, 150)}
	photo := syntheticPlate(200, 200, blobs)
	s, err := NewContourSegmenter(DefaultSegmenterParams())
	require.NoError(t, err)

	first, err := s.Segment(context.Background(), photo)
	require.NoError(t, err)
	second, err := s.Segment(context.Background(), photo)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Bounds, second[i].Bounds)
	}
}

func TestContourSegmenter_EmptyPlate(t *testing.T) {
	s, err := NewContourSegmenter(DefaultSegmenterParams())
	require.NoError(t, err)

	regions, err := s.Segment(context.Background(), syntheticPlate(300, 300, nil))
	require.NoError(t, err)
	require.Empty(t, regions)
}

func TestContourSegmenter_RejectsWholePlateContour(t *testing.T) {
	s, err := NewContourSegmenter(DefaultSegmenterParams())
	require.NoError(t, err)

	regions, err := s.Segment(context.Background(), syntheticPlate(300, 300, []image.Rectangle{image.Rect(10, 10, 290, 290)}))
	require.NoError(t, err)
	require.Empty(t, regions)
}

func TestContourSegmenter_DownscaledCoordinates(t *testing.T) {
	params := DefaultSegmenterParams()
	params.MaxSide = 400
	s, err := NewContourSegmenter(params)
	require.NoError(t, err)

	blob := image.Rect(300, 300, 400, 400)
	regions, err := s.Segment(context.Background(), syntheticPlate(800, 800, []image.Rectangle{blob}))
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.InDelta(t, 300, regions[0].Bounds.Min.X, 4)
	require.InDelta(t, 400, regions[0].Bounds.Max.Y, 4)
}

func TestGridSegmenter_SplitsPlate(t *testing.T) {
	params := DefaultSegmenterParams()
	s, err := NewGridSegmenter(params)
	require.NoError(t, err)

	plate := image.Rect(40, 60, 280, 220)
	regions, err := s.Segment(context.Background(), syntheticPlate(320, 280, []image.Rectangle{plate}))
	require.NoError(t, err)
	require.Len(t, regions, params.Rows*params.Cols)
	require.InDelta(t, 40, regions[0].Bounds.Min.X, 3)
	require.InDelta(t, 60, regions[0].Bounds.Min.Y, 3)
	require.Less(t, regions[1].Bounds.Min.X-regions[0].Bounds.Min.X, 25)
}

func TestGridSegmenter_NoPlate(t *testing.T) {
	s, err := NewGridSegmenter(DefaultSegmenterParams())
	require.NoError(t, err)

	regions, err := s.Segment(context.Background(), syntheticPlate(300, 300, []image.Rectangle{image.Rect(5, 5, 15, 15)}))
	require.NoError(t, err)
	require.Empty(t, regions)
}

func TestQualityGate_RejectsSmallPhoto(t *testing.T) {
	mat := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer mat.Close()

	err := NewQualityGate(DefaultQualityParams()).checkMat(mat)
	require.ErrorIs(t, err, entity.ErrPoorPhoto)
}

func TestHighlighter_ProducesJPEG(t *testing.T) {
	photo := syntheticPlate(120, 120, []image.Rectangle{image.Rect(20, 20, 50, 50)})
	plate, err := entity.NewPlate("ceftazidime", 1, "", []entity.RegionVerdict{
		{Bounds: image.Rect(20, 20, 50, 50), Call: entity.GrowthCall{Label: entity.GoodGrowth}},
	})
	require.NoError(t, err)

	out, err := NewHighlighter().HighlightRegions(photo, plate)
	require.NoError(t, err)
	require.Greater(t, len(out), 2)
	require.Equal(t, []byte{0xff, 0xd8}, out[:2])
}

func TestContourSegmenter_QualityGateRejectsSmallPhoto(t *testing.T) {
	params := DefaultSegmenterParams()
	params.Quality.Enabled = true
	s, err := NewContourSegmenter(params)
	require.NoError(t, err)

	_, err = s.Segment(context.Background(), syntheticPlate(120, 120, []image.Rectangle{image.Rect(20, 20, 50, 50)}))
	require.ErrorIs(t, err, entity.ErrPoorPhoto)
}
