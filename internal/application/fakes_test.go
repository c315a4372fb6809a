package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"

	"agar-mic/internal/domain/entity"
)

// fakePredictor возвращает заданные оценки и запоминает последний вход.
type fakePredictor struct {
	mu     sync.Mutex
	scores []float32
	err    error
	last   []float32
}

func (p *fakePredictor) Predict(input []float32) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = append([]float32(nil), input...)
	if p.err != nil {
		return nil, p.err
	}
	return p.scores, nil
}

// fakeClassifier выбирает класс по ширине изображения.
type fakeClassifier struct {
	mu       sync.Mutex
	positive map[int]bool
	err      error
	calls    int
}

func (c *fakeClassifier) Classify(img image.Image) (entity.ClassificationResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return entity.ClassificationResult{}, c.err
	}
	if c.positive[img.Bounds().Dx()] {
		return entity.ClassificationResult{Label: "second", Index: 1, Confidence: 0.9}, nil
	}
	return entity.ClassificationResult{Label: "first", Index: 0, Confidence: 0.7}, nil
}

// labelClassifier отдаёт метку роста по ширине изображения.
type labelClassifier struct {
	labels map[int]entity.GrowthLabel
	errAt  map[int]error
}

func (c labelClassifier) Classify(img image.Image) (entity.GrowthCall, error) {
	w := img.Bounds().Dx()
	if err := c.errAt[w]; err != nil {
		return entity.GrowthCall{}, err
	}
	return entity.GrowthCall{Label: c.labels[w], First: entity.ClassificationResult{Confidence: 1}}, nil
}

// fakeSegmenter режет снимок на области заданной ширины.
type fakeSegmenter struct {
	widths []int
	err    error
}

func (s fakeSegmenter) Segment(ctx context.Context, photo image.Image) ([]entity.ImageRegion, error) {
	if s.err != nil {
		return nil, s.err
	}
	regions := make([]entity.ImageRegion, len(s.widths))
	x := 0
	for i, w := range s.widths {
		rect := image.Rect(x, 0, x+w, 4)
		regions[i] = entity.ImageRegion{Index: i, Bounds: rect, Area: rect.Dx() * rect.Dy(), Image: image.NewRGBA(rect)}
		x += w
	}
	return regions, nil
}

// fakeImages декодирует PNG и отдаёт снимки по пути.
type fakeImages struct {
	byPath map[string]image.Image
}

func (f fakeImages) Load(path string) (image.Image, error) {
	img, ok := f.byPath[path]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return img, nil
}

func (f fakeImages) Decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(entity.ErrDecode, err)
	}
	return img, nil
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
