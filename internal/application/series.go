package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
)

// PlatePhoto снимок одной концентрации. Если Image пуст, он читается из Source.
type PlatePhoto struct {
	Concentration float64
	Source        string
	Image         image.Image
}

// SeriesService оценивает все планшеты серии разведений.
type SeriesService struct {
	plates  *PlateService
	images  port.ImageSource
	workers int
}

// NewSeriesService создаёт сервис серии; images нужен только для снимков без Image.
func NewSeriesService(plates *PlateService, images port.ImageSource, workers int) *SeriesService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &SeriesService{
		plates:  plates,
		images:  images,
		workers: workers,
	}
}

// Evaluate оценивает планшеты параллельно. Ошибка одного планшета остаётся
// в его точке серии и не мешает остальным; ошибку возвращает только
// нарушение структуры серии (повтор концентрации, пустой препарат).
func (s *SeriesService) Evaluate(ctx context.Context, drug string, photos []PlatePhoto) (*entity.ConcentrationSeries, error) {
	if s.plates == nil {
		return nil, errors.New("plate service is not configured")
	}

	entries := make([]entity.SeriesEntry, len(photos))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, photo := range photos {
		g.Go(func() error {
			entry := entity.SeriesEntry{Concentration: photo.Concentration, Source: photo.Source}
			entry.Plate, entry.Err = s.evaluateOne(ctx, drug, photo)
			if entry.Err != nil {
				entry.Plate = nil
			}
			entries[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	return entity.NewConcentrationSeries(drug, entries)
}

func (s *SeriesService) evaluateOne(ctx context.Context, drug string, photo PlatePhoto) (*entity.Plate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := photo.Image
	if img == nil {
		if s.images == nil {
			return nil, fmt.Errorf("%w: no image source for %s", entity.ErrNotFound, photo.Source)
		}
		loaded, err := s.images.Load(photo.Source)
		if err != nil {
			return nil, err
		}
		img = loaded
	}

	return s.plates.Evaluate(ctx, drug, photo.Concentration, photo.Source, img)
}
