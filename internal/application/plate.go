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

// PlateService превращает снимок планшета в вердикт.
type PlateService struct {
	segmenter  port.WellSegmenter
	classifier port.GrowthClassifier
	workers    int
}

// NewPlateService создаёт сервис оценки планшета; workers <= 0 означает число CPU.
func NewPlateService(segmenter port.WellSegmenter, classifier port.GrowthClassifier, workers int) *PlateService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &PlateService{
		segmenter:  segmenter,
		classifier: classifier,
		workers:    workers,
	}
}

// Evaluate сегментирует снимок, классифицирует области параллельно и
// собирает метки в порядке сегментации перед голосованием.
func (s *PlateService) Evaluate(ctx context.Context, drug string, concentration float64, source string, photo image.Image) (*entity.Plate, error) {
	if s.segmenter == nil || s.classifier == nil {
		return nil, errors.New("plate pipeline is not configured")
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: photo is nil", entity.ErrInvalidInput)
	}

	regions, err := s.segmenter.Segment(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", sourceName(source), err)
	}

	verdicts := make([]entity.RegionVerdict, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, region := range regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			call, err := s.classifier.Classify(region.Image)
			if err != nil {
				return fmt.Errorf("classify region %d of %s: %w", region.Index, sourceName(source), err)
			}
			verdicts[i] = entity.RegionVerdict{
				Index:  region.Index,
				Bounds: region.Bounds,
				Area:   region.Area,
				Call:   call,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entity.NewPlate(drug, concentration, source, verdicts)
}

func sourceName(source string) string {
	if source == "" {
		return "photo"
	}
	return source
}
