//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"

	"agar-mic/internal/domain/entity"
)

var labelColors = map[entity.GrowthLabel]color.RGBA{
	entity.NoGrowth:   {R: 220, G: 40, B: 40, A: 255},
	entity.PoorGrowth: {R: 240, G: 200, B: 0, A: 255},
	entity.GoodGrowth: {G: 200, A: 255},
}

// HighlightRegions рисует прямоугольники областей, окрашенные по метке, и возвращает JPEG.
func (h *Highlighter) HighlightRegions(photo image.Image, plate *entity.Plate) ([]byte, error) {
	if photo == nil || plate == nil {
		return nil, errors.New("nothing to highlight")
	}
	mat, err := gocv.ImageToMatRGB(photo)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	origin := photo.Bounds().Min
	for _, r := range plate.Regions() {
		gocv.Rectangle(&mat, r.Bounds.Sub(origin), labelColors[r.Call.Label], h.Thickness)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: h.Quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
