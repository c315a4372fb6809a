//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"

	"agar-mic/internal/domain/entity"
)

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *ContourSegmenter) Segment(ctx context.Context, photo image.Image) ([]entity.ImageRegion, error) {
	_ = ctx
	_ = photo
	return nil, ErrVisionDisabled
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *GridSegmenter) Segment(ctx context.Context, photo image.Image) ([]entity.ImageRegion, error) {
	_ = ctx
	_ = photo
	return nil, ErrVisionDisabled
}

// HighlightRegions возвращает ошибку, если сборка без тега gocv.
func (h *Highlighter) HighlightRegions(photo image.Image, plate *entity.Plate) ([]byte, error) {
	_ = photo
	_ = plate
	return nil, ErrVisionDisabled
}
