package port

import (
	"context"
	"image"

	"agar-mic/internal/domain/entity"
)

// WellSegmenter интерфейс сегментации снимка планшета
type WellSegmenter interface {
	// Segment возвращает области в детерминированном порядке.
	// Если ни одна область не прошла фильтры, возвращается пустой срез без ошибки.
	Segment(ctx context.Context, photo image.Image) ([]entity.ImageRegion, error)
}

// RegionHighlighter рисует найденные области поверх снимка
type RegionHighlighter interface {
	// HighlightRegions возвращает JPEG с рамками областей, окрашенными по метке
	HighlightRegions(photo image.Image, plate *entity.Plate) ([]byte, error)
}
