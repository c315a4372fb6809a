package app

import (
	"errors"
	"fmt"
	"image"
	"math"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
)

// DefaultAcceptanceThreshold минимальная заявленная точность первой ступени.
const DefaultAcceptanceThreshold = 0.9

// CascadeConfig условия приёмки первой ступени каскада.
type CascadeConfig struct {
	FirstStageAccuracy    float64 // заявленная точность модели «рост / нет роста»
	AcceptanceThreshold   float64 // 0 означает DefaultAcceptanceThreshold
	SuppressAccuracyCheck bool    // явный отказ от проверки точности
}

type cascadeStage int

const (
	stageFirst cascadeStage = iota
	stageSecond
)

// CascadeClassifier двухступенчатое решение: сначала «рост / нет роста»,
// при росте — «хороший / слабый рост».
type CascadeClassifier struct {
	first  port.ImageClassifier
	second port.ImageClassifier
}

// NewCascadeClassifier собирает каскад. Без явного SuppressAccuracyCheck
// первая ступень с точностью ниже порога отклоняется с entity.ErrAcceptance.
func NewCascadeClassifier(first, second port.ImageClassifier, cfg CascadeConfig) (*CascadeClassifier, error) {
	if first == nil || second == nil {
		return nil, errors.New("both cascade stages must be configured")
	}

	if !cfg.SuppressAccuracyCheck {
		threshold := cfg.AcceptanceThreshold
		if threshold == 0 {
			threshold = DefaultAcceptanceThreshold
		}
		if math.IsNaN(cfg.FirstStageAccuracy) || cfg.FirstStageAccuracy < threshold {
			return nil, fmt.Errorf("%w: declared %.3f, required %.3f",
				entity.ErrAcceptance, cfg.FirstStageAccuracy, threshold)
		}
	}

	return &CascadeClassifier{first: first, second: second}, nil
}

// Classify прогоняет область через ступени каскада. Ошибки ступеней
// возвращаются как есть, без запасного решения.
func (c *CascadeClassifier) Classify(img image.Image) (entity.GrowthCall, error) {
	var call entity.GrowthCall
	stage := stageFirst

	for {
		switch stage {
		case stageFirst:
			res, err := c.first.Classify(img)
			if err != nil {
				return entity.GrowthCall{}, err
			}
			call.First = res
			if !res.Positive() {
				call.Label = entity.NoGrowth
				return call, nil
			}
			stage = stageSecond

		case stageSecond:
			res, err := c.second.Classify(img)
			if err != nil {
				return entity.GrowthCall{}, err
			}
			call.Second = &res
			call.Label = entity.PoorGrowth
			if res.Positive() {
				call.Label = entity.GoodGrowth
			}
			return call, nil
		}
	}
}

var _ port.GrowthClassifier = (*CascadeClassifier)(nil)
