package app

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/floats"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
)

// BinaryClassifierConfig параметры обученной бинарной модели.
type BinaryClassifierConfig struct {
	Width, Height int       // размер входа, на котором обучалась модель
	Threshold     float64   // порог для второго класса ключа
	Key           [2]string // названия классов по индексам выхода модели
	Logits        bool      // выход модели — логиты, перед порогом применяется softmax
	Scale         float32   // множитель яркости пикселя (0 означает 1: масштабирование внутри модели)
	ChannelsFirst bool      // раскладка CHW вместо HWC
}

// BinaryClassifier приводит область к входу модели и выбирает класс по порогу.
type BinaryClassifier struct {
	predictor port.Predictor
	cfg       BinaryClassifierConfig
}

// NewBinaryClassifier создаёт классификатор поверх обученной модели.
func NewBinaryClassifier(predictor port.Predictor, cfg BinaryClassifierConfig) (*BinaryClassifier, error) {
	if predictor == nil {
		return nil, errors.New("predictor is not configured")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid trained input size %dx%d", cfg.Width, cfg.Height)
	}
	if math.IsNaN(cfg.Threshold) || cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be within [0,1], got %v", cfg.Threshold)
	}
	if cfg.Key[0] == "" || cfg.Key[1] == "" {
		return nil, errors.New("classifier key must name both classes")
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}
	return &BinaryClassifier{predictor: predictor, cfg: cfg}, nil
}

// Threshold порог второго класса.
func (c *BinaryClassifier) Threshold() float64 {
	return c.cfg.Threshold
}

// Classify выбирает второй класс ключа, если его вероятность не ниже порога.
func (c *BinaryClassifier) Classify(img image.Image) (entity.ClassificationResult, error) {
	input, err := c.preprocess(img)
	if err != nil {
		return entity.ClassificationResult{}, err
	}

	out, err := c.predictor.Predict(input)
	if err != nil {
		return entity.ClassificationResult{}, fmt.Errorf("inference failed: %w", err)
	}
	if len(out) != 2 {
		return entity.ClassificationResult{}, fmt.Errorf("expected 2 class scores, got %d", len(out))
	}

	scores := [2]float64{float64(out[0]), float64(out[1])}
	if c.cfg.Logits {
		scores = softmax2(scores)
	}
	return c.decide(scores), nil
}

func (c *BinaryClassifier) decide(scores [2]float64) entity.ClassificationResult {
	idx := 0
	if scores[1] >= c.cfg.Threshold {
		idx = 1
	}
	return entity.ClassificationResult{
		Label:      c.cfg.Key[idx],
		Index:      idx,
		Confidence: scores[idx],
		Threshold:  c.cfg.Threshold,
		Scores:     scores,
	}
}

// preprocess масштабирует область до размера модели и раскладывает RGB в float32.
func (c *BinaryClassifier) preprocess(img image.Image) ([]float32, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: region is empty", entity.ErrInvalidInput)
	}

	resized := resize.Resize(uint(c.cfg.Width), uint(c.cfg.Height), img, resize.Bilinear)
	bounds := resized.Bounds()
	if bounds.Dx() != c.cfg.Width || bounds.Dy() != c.cfg.Height {
		return nil, fmt.Errorf("%w: resized to %dx%d, expected %dx%d",
			entity.ErrInvalidInput, bounds.Dx(), bounds.Dy(), c.cfg.Width, c.cfg.Height)
	}

	w, h := c.cfg.Width, c.cfg.Height
	plane := w * h
	data := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rgb := [3]float32{float32(r >> 8), float32(g >> 8), float32(b >> 8)}
			pixel := y*w + x
			for ch, v := range rgb {
				if c.cfg.ChannelsFirst {
					data[ch*plane+pixel] = v * c.cfg.Scale
				} else {
					data[pixel*3+ch] = v * c.cfg.Scale
				}
			}
		}
	}
	return data, nil
}

func softmax2(logits [2]float64) [2]float64 {
	lse := floats.LogSumExp(logits[:])
	return [2]float64{math.Exp(logits[0] - lse), math.Exp(logits[1] - lse)}
}

var _ port.ImageClassifier = (*BinaryClassifier)(nil)
